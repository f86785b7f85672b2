package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	callerKey    = "caller"
	callerHeader = "X-Caller"
)

// Auth resolves the identity of the caller. With a secret, the caller is
// the subject of an HS256 bearer token, otherwise it is read from the
// X-Caller header.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := authenticate(c.Request, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// Caller returns the identity set by Auth, empty if the route is public.
func Caller(c *gin.Context) string {
	return c.GetString(callerKey)
}

func authenticate(req *http.Request, secret string) (string, error) {
	if len(secret) <= 0 {
		caller := strings.TrimSpace(req.Header.Get(callerHeader))
		if len(caller) <= 0 {
			return "", fmt.Errorf("missing %s header", callerHeader)
		}
		return caller, nil
	}

	header := req.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || len(tokenStr) <= 0 {
		return "", fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("invalid token subject: %w", err)
	}
	if len(sub) <= 0 {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
