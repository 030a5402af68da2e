package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-streaks/internal/logging"
)

func echoForwarded(publicHost string) *gin.Engine {
	router := gin.New()
	router.Use(ForwardedHost(publicHost))
	router.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"host":  c.GetHeader("X-Forwarded-Host"),
			"proto": c.GetHeader("X-Forwarded-Proto"),
		})
	})
	return router
}

func TestForwardedHost(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		publicHost string
		reqHost    string
		headers    map[string]string
		wantBody   string
	}{
		{
			name:       "Fills missing headers",
			publicHost: "kanso.app",
			reqHost:    "10.0.0.4:8080",
			wantBody:   `{"host":"kanso.app","proto":"https"}`,
		},
		{
			name:       "Keeps proxy headers",
			publicHost: "kanso.app",
			reqHost:    "10.0.0.4:8080",
			headers:    map[string]string{"X-Forwarded-Host": "edge.kanso.app", "X-Forwarded-Proto": "http"},
			wantBody:   `{"host":"edge.kanso.app","proto":"http"}`,
		},
		{
			name:       "Localhost untouched",
			publicHost: "kanso.app",
			reqHost:    "localhost:8080",
			wantBody:   `{"host":"","proto":""}`,
		},
		{
			name:     "Disabled without public host",
			reqHost:  "10.0.0.4:8080",
			wantBody: `{"host":"","proto":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/echo", nil)
			req.Host = tt.reqHost
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			echoForwarded(tt.publicHost).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logging.NewWithOutput("info", "json", &buf)

	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/ok", func(c *gin.Context) {
		c.Set(ContextUserIDKey, "user-9")
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), `"user_id":"user-9"`)
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"status":500`)

}
