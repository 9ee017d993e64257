package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// ErrMissingAuthHeader means the request carried no token at all.
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth validates the bearer token and stores the caller's id under UserIDKey.
// Browsers cannot set headers on a websocket handshake, so a `token` query
// parameter is accepted when the header is absent.
func Auth(jwtSecret string) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}

	return func(c *gin.Context) {
		tokenStr, err := extractToken(c)
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingAuthHeader):
				logrus.Debug("Auth middleware: Missing Authorization header")
				abort(c, http.StatusUnauthorized, "Authorization header is required")
			case errors.Is(err, jwt.ErrTokenMalformed):
				logrus.Debugf("Auth middleware: Malformed token format: %v", err)
				abort(c, http.StatusUnauthorized, "Invalid token format")
			default:
				logrus.WithError(err).Warn("Auth middleware: Error extracting token")
				abort(c, http.StatusUnauthorized, "Could not process token")
			}
			return
		}

		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			logCtx := logrus.WithError(err)
			var validationError *jwt.ValidationError
			if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
				logCtx.Debug("Auth middleware: Token is expired")
			} else {
				logCtx.Warn("Auth middleware: Invalid token")
			}
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// JWT numbers decode as float64.
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
			logrus.Warnf("Auth middleware: 'user_id' claim is not a valid positive integer: %v", claims["user_id"])
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		userID := uint(userIDFloat)

		c.Set(UserIDKey, userID)
		logrus.WithField("user_id", userID).Debug("Auth middleware: User authenticated via JWT")
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", ErrMissingAuthHeader
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}
