package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/voice/sessions", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestGetClientIPPrefersForwardedChain(t *testing.T) {
	c := newTestContext("10.0.0.1:5000", map[string]string{
		"X-Forwarded-For": "not-an-ip, 203.0.113.7, 10.0.0.2",
	})
	assert.Equal(t, "203.0.113.7", getClientIP(c))
}

func TestGetClientIPRealIPFallback(t *testing.T) {
	c := newTestContext("10.0.0.1:5000", map[string]string{
		"X-Real-IP": "198.51.100.4",
	})
	assert.Equal(t, "198.51.100.4", getClientIP(c))
}

func TestGetClientIPSocketFallback(t *testing.T) {
	// Unparseable header values are skipped, not trusted.
	c := newTestContext("192.0.2.9:1234", map[string]string{
		"X-Real-IP": "garbage",
	})
	assert.Equal(t, "192.0.2.9", getClientIP(c))
}
