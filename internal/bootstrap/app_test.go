package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerMiddleware_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, level := range map[string]logrus.Level{
		"/ok":   logrus.InfoLevel,
		"/bad":  logrus.WarnLevel,
		"/boom": logrus.ErrorLevel,
	} {
		hook.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path+"?token=secret", nil))

		entry := hook.LastEntry()
		require.NotNil(t, entry, path)
		assert.Equal(t, level, entry.Level, path)
		assert.Equal(t, path, entry.Data["path"], "query string is not logged")
	}
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://board.test"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://board.test"}, cfg.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}
