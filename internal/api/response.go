package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
)

type errorBody struct {
	StatusCode int            `json:"statusCode"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

var errInternal = &domain.Error{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: "Internal Server Error"}

func toBody(err error, log *logrus.Entry) errorBody {
	de, ok := domain.AsError(err)
	if !ok {
		log.WithError(err).Error("request failed")
		de = errInternal
	} else if de.Status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	return errorBody{StatusCode: de.Status, Code: de.Code, Message: de.Message, Details: de.Details}
}

// handleError renders err as {"error": {...}} and aborts the chain.
func handleError(c *gin.Context, log *logrus.Entry, err error) {
	body := toBody(err, log)
	c.AbortWithStatusJSON(body.StatusCode, gin.H{"error": body})
}

// bindingError converts a gin binding failure into a domain error.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.BadRequest("INVALID_REQUEST_STRUCTURE", "invalid request structure")
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[lowerFirst(fe.Field())] = fe.Tag()
	}
	de := domain.Validation("VALIDATION_FAILED", "The request is not valid.")
	de.Details = map[string]any{"fields": fields}
	return de
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
