// internal/middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// RelayCORS allows the notification relay to be called from the static site
// on another origin. Preflight requests are answered with 204 and no body.
func RelayCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusNoContent,
	})
	return c.Handler
}
