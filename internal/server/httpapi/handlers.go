package httpapi

import (
	"math"
	"net/http"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	refreshMessages = messages{common.ErrIncompleteRequest: "Request body incomplete, refresh token required"}
	profileMessages = messages{common.ErrorNotFound: "User not found"}
	peopleMessages  = messages{common.ErrorNotFound: "Person not found"}
)

type credentialsRequest struct {
	Email                   string `json:"email"`
	Password                string `json:"password"`
	BearerExpiresInSeconds  int64  `json:"bearerExpiresInSeconds"`
	RefreshExpiresInSeconds int64  `json:"refreshExpiresInSeconds"`
}

type refreshRequest struct {
	RefreshToken            string `json:"refreshToken"`
	BearerExpiresInSeconds  int64  `json:"bearerExpiresInSeconds"`
	RefreshExpiresInSeconds int64  `json:"refreshExpiresInSeconds"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type tokenPairResponse struct {
	BearerToken  tokenResponse `json:"bearerToken"`
	RefreshToken tokenResponse `json:"refreshToken"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type roleResponse struct {
	MovieName  string   `json:"movieName"`
	MovieID    string   `json:"movieId"`
	Category   string   `json:"category"`
	Characters []string `json:"characters"`
	IMDBRating *float64 `json:"imdbRating"`
}

type personResponse struct {
	Name      string         `json:"name"`
	BirthYear *int           `json:"birthYear"`
	DeathYear *int           `json:"deathYear"`
	Roles     []roleResponse `json:"roles"`
}

// Handlers serves the JSON routes.
type Handlers struct {
	sessions *services.SessionService
	profiles *services.ProfileService
	people   *services.PeopleService
	logger   logging.Logger
}

func NewHandlers(ss *services.SessionService, ps *services.ProfileService, pp *services.PeopleService, l logging.Logger) *Handlers {
	return &Handlers{
		sessions: ss,
		profiles: ps,
		people:   pp,
		logger:   l.With("module", "handlers"),
	}
}

func (h *Handlers) fail(c *gin.Context, err error, overrides messages) {
	status, msg, known := resolve(err, overrides)
	if !known {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	abortWithError(c, status, msg)
}

// maxSeconds is the largest whole-second count a time.Duration can hold.
const maxSeconds = int64(math.MaxInt64 / time.Second)

// seconds converts a requested lifetime. Non-positive values mean "use the
// default"; values past maxSeconds are clamped.
func seconds(n int64) time.Duration {
	if n <= 0 {
		return 0
	}
	if n > maxSeconds {
		n = maxSeconds
	}
	return time.Duration(n) * time.Second
}

func newTokenPairResponse(p *auth.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		BearerToken: tokenResponse{
			Token:     p.AccessToken,
			TokenType: "Bearer",
			ExpiresIn: int64(p.AccessTTL / time.Second),
		},
		RefreshToken: tokenResponse{
			Token:     p.RefreshToken,
			TokenType: "Refresh",
			ExpiresIn: int64(p.RefreshTTL / time.Second),
		},
	}
}

func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.fail(c, common.ErrIncompleteRequest, nil)
		return
	}

	if err := h.sessions.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.fail(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{Success: true, Message: "User created"})
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.fail(c, common.ErrIncompleteRequest, nil)
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, services.TTLs{
		Access:  seconds(req.BearerExpiresInSeconds),
		Refresh: seconds(req.RefreshExpiresInSeconds),
	})
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, newTokenPairResponse(pair))
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.fail(c, common.ErrIncompleteRequest, refreshMessages)
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken, services.TTLs{
		Access:  seconds(req.BearerExpiresInSeconds),
		Refresh: seconds(req.RefreshExpiresInSeconds),
	})
	if err != nil {
		h.fail(c, err, refreshMessages)
		return
	}

	c.JSON(http.StatusOK, newTokenPairResponse(pair))
}

func (h *Handlers) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.fail(c, common.ErrIncompleteRequest, refreshMessages)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, err, refreshMessages)
		return
	}

	c.JSON(http.StatusOK, errorResponse{Error: false, Message: "Token successfully invalidated"})
}

// nullable renders an unset profile column as JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handlers) GetProfile(c *gin.Context) {
	p, owner, err := h.profiles.Get(c.Request.Context(), c.Param("email"), viewerEmail(c))
	if err != nil {
		h.fail(c, err, profileMessages)
		return
	}

	body := gin.H{
		"email":     p.Email,
		"firstName": nullable(p.FirstName),
		"lastName":  nullable(p.LastName),
	}
	if owner {
		body["dob"] = nullable(p.DOB)
		body["address"] = nullable(p.Address)
	}

	c.JSON(http.StatusOK, body)
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.fail(c, common.ErrProfileIncomplete, nil)
		return
	}

	p, err := h.profiles.Update(c.Request.Context(), viewerEmail(c), c.Param("email"), &req)
	if err != nil {
		h.fail(c, err, profileMessages)
		return
	}

	c.JSON(http.StatusOK, profileBody(p))
}

func profileBody(p *models.Profile) gin.H {
	return gin.H{
		"email":     p.Email,
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"dob":       p.DOB,
		"address":   p.Address,
	}
}

func (h *Handlers) GetPerson(c *gin.Context) {
	id := c.Param("id")
	if err := services.ValidatePersonID(id); err != nil {
		h.fail(c, err, peopleMessages)
		return
	}
	if len(c.Request.URL.Query()) > 0 {
		h.fail(c, common.ErrQueryParamsForbidden, peopleMessages)
		return
	}

	p, err := h.people.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, peopleMessages)
		return
	}

	resp := personResponse{
		Name:      p.Name,
		BirthYear: p.BirthYear,
		DeathYear: p.DeathYear,
		Roles:     make([]roleResponse, 0, len(p.Roles)),
	}
	for _, r := range p.Roles {
		chars := r.Characters
		if chars == nil {
			chars = []string{}
		}
		resp.Roles = append(resp.Roles, roleResponse{
			MovieName:  r.MovieName,
			MovieID:    r.MovieID,
			Category:   r.Category,
			Characters: chars,
			IMDBRating: r.IMDBRating,
		})
	}

	c.JSON(http.StatusOK, resp)
}
