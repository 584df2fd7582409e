package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal Server Error"

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable is checked top to bottom with errors.Is; the first match wins.
var errorTable = []errorMapping{
	{common.ErrIncompleteRequest, http.StatusBadRequest, "Request body incomplete - email and password needed"},
	{common.ErrUserExists, http.StatusConflict, "User already exists"},
	{common.ErrUserNotFound, http.StatusUnauthorized, "User does not exist"},
	{common.ErrPasswordMismatch, http.StatusUnauthorized, "Not a match"},
	{common.ErrMissingAuthHeader, http.StatusUnauthorized, "Authorization header ('Bearer token') not found"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "JWT token has expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "Invalid JWT token"},
	{common.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{common.ErrProfileIncomplete, http.StatusBadRequest, "Request body incomplete: firstName, lastName, dob and address are required."},
	{common.ErrProfileNotStrings, http.StatusBadRequest, "Request body invalid: firstName, lastName and address must be strings only."},
	{common.ErrInvalidDOB, http.StatusBadRequest, "Invalid input: dob must be a real date in format YYYY-MM-DD."},
	{common.ErrDOBInFuture, http.StatusBadRequest, "Invalid input: dob must be a date in the past."},
	{common.ErrInvalidPersonID, http.StatusNotFound, "Invalid or missing 'imdbID' parameter"},
	{common.ErrQueryParamsForbidden, http.StatusBadRequest, "Query parameters are not permitted."},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
}

// messages overrides the default text for some sentinels on one route.
type messages map[error]string

// resolve maps err to a status and client-facing message. Unknown errors
// become a 500 and report false.
func resolve(err error, overrides messages) (int, string, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if msg, ok := overrides[m.err]; ok {
				return m.status, msg, true
			}
			return m.status, m.message, true
		}
	}
	return http.StatusInternalServerError, internalErrorMessage, false
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: true, Message: message})
}
