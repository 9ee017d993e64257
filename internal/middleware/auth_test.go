package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(testSecret), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return r
}

func TestAuth(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, testSecret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Hour).Unix()})
	foreign := signToken(t, "other-secret", jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})
	noUser := signToken(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusOK},
		{"query token", "", "?token=" + valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
		{"no user claim", "Bearer " + noUser, "", http.StatusUnauthorized},
	}
	r := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"userId":7}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"ok":false`)
			}
		})
	}
}

func TestAuth_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { Auth("") })
}
