package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/revocation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Policy is the authorization requirement a route declares.
type Policy int

const (
	// PolicyNone lets every request through untouched.
	PolicyNone Policy = iota
	// PolicyOptionalBearer accepts anonymous requests, but a presented
	// Authorization header must carry a valid access token.
	PolicyOptionalBearer
	// PolicyRequiredBearer demands a valid access token.
	PolicyRequiredBearer
	// PolicySelfChecked only applies the revocation check; the handler
	// verifies the token it is given.
	PolicySelfChecked
)

func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyOptionalBearer:
		return "optional_bearer"
	case PolicyRequiredBearer:
		return "required_bearer"
	case PolicySelfChecked:
		return "self_checked"
	default:
		return "unknown"
	}
}

const claimsKey = "movieapi.claims"

// refreshTokenBody picks the refresh token out of any JSON body.
type refreshTokenBody struct {
	RefreshToken string `json:"refreshToken"`
}

// Gate is the per-route authorization middleware.
type Gate struct {
	codec    *auth.Codec
	registry revocation.Registry
	logger   logging.Logger
}

func NewGate(codec *auth.Codec, registry revocation.Registry, l logging.Logger) *Gate {
	return &Gate{codec: codec, registry: registry, logger: l.With("module", "gate")}
}

// Require returns the middleware enforcing p.
func (g *Gate) Require(p Policy) gin.HandlerFunc {
	if p == PolicyNone {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if err := g.check(c, p); err != nil {
			g.reject(c, p, err)
			return
		}
		c.Next()
	}
}

func (g *Gate) check(c *gin.Context, p Policy) error {
	ctx := c.Request.Context()

	// The body is cached by gin so handlers can bind it again.
	var body refreshTokenBody
	_ = c.ShouldBindBodyWith(&body, binding.JSON)
	if body.RefreshToken != "" {
		revoked, err := g.registry.IsRevoked(ctx, body.RefreshToken)
		if err != nil {
			return err
		}
		if revoked {
			return common.ErrInvalidToken
		}
	}

	if p == PolicySelfChecked {
		return nil
	}

	value := c.GetHeader(common.AuthorizationHeaderName)
	if p == PolicyOptionalBearer && value == "" {
		return nil
	}

	if !strings.HasPrefix(value, common.BearerPrefix) {
		return common.ErrMissingAuthHeader
	}

	claims, err := g.codec.Verify(strings.TrimPrefix(value, common.BearerPrefix), auth.RoleAccess)
	if err != nil {
		return err
	}

	c.Set(claimsKey, claims)
	return nil
}

func (g *Gate) reject(c *gin.Context, p Policy, err error) {
	ctx := c.Request.Context()

	status, msg, known := resolve(err, nil)
	if !known {
		g.logger.Error(ctx, "authorization check failed", "policy", p.String(), "error", err)
		abortWithError(c, status, msg)
		return
	}

	args := []any{"policy", p.String(), "path", c.Request.URL.Path, "reason", err}
	if subject := g.subject(c); subject != "" {
		args = append(args, "subject", subject)
	}
	g.logger.Warn(ctx, "request rejected", args...)

	abortWithError(c, status, msg)
}

// subject reads the unverified email of the presented bearer token, for
// logging only.
func (g *Gate) subject(c *gin.Context) string {
	value := c.GetHeader(common.AuthorizationHeaderName)
	if !strings.HasPrefix(value, common.BearerPrefix) {
		return ""
	}
	claims, err := g.codec.Decode(strings.TrimPrefix(value, common.BearerPrefix))
	if err != nil {
		return ""
	}
	return claims.Email
}

// ClaimsFrom returns the verified access claims stored by the Gate, if any.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// viewerEmail is the authenticated email, or "" for anonymous requests.
func viewerEmail(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok {
		return claims.Email
	}
	return ""
}
