package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	clientIdKey     = "clientId"
	clientIdHeader  = "X-Client-Id"
	anonymousClient = "UNKNOWN"
)

func (s *server) validateJWT(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.AuthSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
}

// auth extracts the subject of the bearer token. It returns "" without error
// when authentication is disabled.
func (s *server) auth(authorization string) (string, error) {
	if s.config.AuthSecret == "" {
		return "", nil
	}
	tokenString, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || tokenString == "" {
		return "", fmt.Errorf("%w: no bearer token", ErrUnauthorized)
	}
	token, err := s.validateJWT(strings.TrimSpace(tokenString))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: user id not found", ErrUnauthorized)
	}
	return sub, nil
}

func (s *server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientId, err := s.auth(c.GetHeader("Authorization"))
		if err != nil {
			s.respondError(c, err)
			c.Abort()
			return
		}
		if clientId != "" {
			c.Set(clientIdKey, clientId)
		}
		c.Next()
	}
}

// clientId resolves the caller: token subject, then the body value, then
// the X-Client-Id header.
func clientId(c *gin.Context, fromBody string) string {
	if v := c.GetString(clientIdKey); v != "" {
		return v
	}
	if fromBody != "" {
		return fromBody
	}
	if v := c.GetHeader(clientIdHeader); v != "" {
		return v
	}
	return anonymousClient
}
