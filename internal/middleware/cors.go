package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionIDHeader carries the tracking session ID for clients that cannot use cookies.
const SessionIDHeader = "X-Session-ID"

// CORS allows the marketplace front ends to call the API with credentials.
// Cookies are needed for the tracking session handle.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader, SessionIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, SessionIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
