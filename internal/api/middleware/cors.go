package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a CORS middleware for the given origins
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
