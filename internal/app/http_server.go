package app

import (
	"net/http"
	"time"
)

// HTTPServer returns a configured http.Server for the API.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer() *http.Server {
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.WithField("addr", srv.Addr).Info("http server configured")
	return srv
}
