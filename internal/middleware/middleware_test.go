package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type gateStub struct {
	open bool
	err  error
}

func (g gateStub) IsAuthenticated(ctx context.Context) (bool, error) {
	return g.open, g.err
}

type observation struct {
	method, path string
	status       int
}

type observerStub struct {
	seen []observation
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.seen = append(o.seen, observation{method: method, path: path, status: status})
}

func gatedRouter(g gateStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/students", AuthGate(g), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthGate(t *testing.T) {
	cases := []struct {
		name   string
		gate   gateStub
		status int
	}{
		{name: "open", gate: gateStub{open: true}, status: http.StatusOK},
		{name: "closed", gate: gateStub{}, status: http.StatusUnauthorized},
		{name: "store failure", gate: gateStub{err: errors.New("boom")}, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			gatedRouter(tc.gate).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students", nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []observation{
		{method: http.MethodGet, path: "/students/:id", status: http.StatusAccepted},
		{method: http.MethodGet, path: "unmatched", status: http.StatusNotFound},
	}, obs.seen)
}
