package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeServerError  = "SERVER_ERROR"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []models.FieldError `json:"details,omitempty"`
}

// respondError maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a generic server error.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		verr     *models.ValidationError
		badReq   *models.BadRequestError
		notFound *models.NotFoundError
		conflict *models.ConflictError
		unauth   *models.UnauthorizedError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Code: CodeValidation, Details: verr.Fields})
	case errors.As(err, &badReq):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: badReq.Message, Code: CodeBadRequest})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFound.Error(), Code: CodeNotFound})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: conflict.Message, Code: conflict.Code})
	case errors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: unauth.Message, Code: CodeUnauthorized})
	default:
		_ = c.Error(err)
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeServerError})
	}
}

// bindJSON decodes the request body into dest and answers 400 when it is not valid JSON
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: CodeBadRequest})
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter; absent yields def
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.ErrBadRequest("%s must be an integer", name)
	}
	return n, nil
}

// queryFloat parses an optional float query parameter; absent yields nil
func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, models.ErrBadRequest("%s must be a number", name)
	}
	return &f, nil
}
