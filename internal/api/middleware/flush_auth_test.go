package middleware

import (
	"Atheneum/internal/api/config"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func flushTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/flush", FlushAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doFlush(r *gin.Engine, header, query string) int {
	req := httptest.NewRequest(http.MethodPost, "/flush"+query, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestFlushAuthWithSecret(t *testing.T) {
	config.Cfg = &config.Config{Env: "production", Views: config.ViewsConfig{FlushSecret: "s3cret"}}
	r := flushTestRouter()

	assert.Equal(t, http.StatusOK, doFlush(r, "Bearer s3cret", ""))
	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "Bearer wrong", ""))
	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "", ""))
	// 生产环境不接受 query 兜底
	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "", "?token=s3cret"))
}

func TestFlushAuthQueryFallbackOutsideProduction(t *testing.T) {
	config.Cfg = &config.Config{Env: "development", Views: config.ViewsConfig{FlushSecret: "s3cret"}}
	r := flushTestRouter()

	assert.Equal(t, http.StatusOK, doFlush(r, "", "?token=s3cret"))
	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "", "?token=wrong"))
}

// 生产环境没配口令时接口整体关闭，绝不能默认放开
func TestFlushAuthNoSecretProduction(t *testing.T) {
	config.Cfg = &config.Config{Env: "production"}
	r := flushTestRouter()

	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "", ""))
	assert.Equal(t, http.StatusUnauthorized, doFlush(r, "Bearer anything", ""))
}

func TestFlushAuthNoSecretDevelopment(t *testing.T) {
	config.Cfg = &config.Config{Env: "development"}
	r := flushTestRouter()

	assert.Equal(t, http.StatusOK, doFlush(r, "", ""))
}
