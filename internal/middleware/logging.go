// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": duration,
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect logs an accepted websocket upgrade with the
// connection id assigned to it.
func LogWebSocketConnect(logger *logrus.Logger, connectionID, remoteAddr string) {
	logger.WithFields(logrus.Fields{
		"connection_id": connectionID,
		"remote":        remoteAddr,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a websocket teardown.
func LogWebSocketDisconnect(logger *logrus.Logger, connectionID string, err error) {
	fields := logrus.Fields{
		"connection_id": connectionID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
