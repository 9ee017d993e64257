package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/service"
)

// HandleServiceError maps a service error onto a status code and envelope.
// Unknown errors are logged and reported generically.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidOrder):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotRoomMaster),
		errors.Is(err, service.ErrNotRoomMember):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrBucketNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrTodoNotFound),
		errors.Is(err, service.ErrInvalidInviteCode):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrMasterCannotLeave),
		errors.Is(err, service.ErrConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// BindingError reports a request body that failed to bind or validate.
func BindingError(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, describeBindingError(err))
}

func describeBindingError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "email":
			parts = append(parts, field+" must be a valid email")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return "Invalid input: " + strings.Join(parts, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
