package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/config"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.HTTP.Addr = ":0"
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:app_test?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	cfg.Auth.JWTSecret = "s3cret"
	cfg.App.TaskTypes = []string{"Development"}
	cfg.Mail.Provider = "log"
	return cfg
}

func TestNew_ServesHealthz(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	a, err := New(context.Background(), log, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := a.HTTPServer()
	assert.Equal(t, ":0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	err = a.GrantRole(context.Background(), 42, "admin")
	assert.Error(t, err)
}

func TestNew_RejectsBadMailProvider(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := testConfig()
	cfg.DB.DSN = "file:app_test_mail?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	cfg.Mail.Provider = "pigeon"

	_, err := New(context.Background(), log, cfg)
	assert.Error(t, err)
}
