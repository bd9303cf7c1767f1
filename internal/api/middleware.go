package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
)

const principalKey = "principal"

// PrincipalResolver maps a bearer token to the principal it was issued to.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

// requestLogger logs one line per request.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"remote": c.ClientIP(),
			"dur":    time.Since(start).String(),
		}).Info("http request")
	}
}

// tokenFrom reads the access token from the Authorization header, with or
// without a Bearer prefix, or from the access_token query parameter.
func tokenFrom(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return c.Query("access_token")
}

func authenticate(resolver PrincipalResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.Request.Context(), tokenFrom(c))
		if err != nil {
			handleError(c, log.WithField("operation", "api.authenticate"), err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func requirePrivileged(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).Privileged() {
			handleError(c, log.WithField("operation", "api.requirePrivileged"), domain.ErrAccessDenied)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
