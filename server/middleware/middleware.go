// Package middleware holds the Gin handlers every request passes through.
// Registered with Engine.Use, they also run for unmatched routes.
package middleware

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/live", "/ready", "/info":
		return true
	}
	return false
}
