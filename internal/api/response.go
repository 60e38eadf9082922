package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/logger"
	"github.com/example/langportal/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	errBadRequest = errors.New("bad request")
	errForbidden  = errors.New("access to another user's data")
)

func respondSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func abortWithMessage(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		abortWithMessage(c, http.StatusBadRequest, describeValidation(verrs))
	case errors.Is(err, errBadRequest), errors.Is(err, session.ErrValidation):
		abortWithMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		abortWithMessage(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, errForbidden), errors.Is(err, session.ErrForbidden):
		abortWithMessage(c, http.StatusForbidden, "unauthorized access")
	case errors.Is(err, session.ErrInvalidTransition):
		abortWithMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrConflict):
		abortWithMessage(c, http.StatusConflict, "concurrent update, retry the request")
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithMessage(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindError classifies a gin binding failure
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
