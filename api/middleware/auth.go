package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// identityKey is where Auth stores the accepted token for RateLimit.
const identityKey = "api_key"

// Auth guards the gate API with static tokens, read from X-API-Key or
// "Authorization: Bearer <token>". No tokens means no auth.
func Auth(tokens []string) gin.HandlerFunc {
	accepted := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			accepted = append(accepted, []byte(t))
		}
	}
	if len(accepted) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized,
				"missing token: send X-API-Key or Authorization: Bearer <token>")
			return
		}
		if !tokenAccepted(accepted, token) {
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "unknown token")
			return
		}
		c.Set(identityKey, token)
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if t := c.GetHeader("X-API-Key"); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

func tokenAccepted(accepted [][]byte, token string) bool {
	got := []byte(token)
	for _, want := range accepted {
		if subtle.ConstantTimeCompare(got, want) == 1 {
			return true
		}
	}
	return false
}

// reject aborts the request with the API error envelope.
func reject(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: code, Message: msg},
	})
}
