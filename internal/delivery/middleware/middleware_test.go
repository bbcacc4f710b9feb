package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"simpletrader/config"
	deliverycontext "simpletrader/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_ReusesClientHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "client-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := NewRequestIDMiddleware(slog.Default()).Process(func(c echo.Context) error {
		seen = deliverycontext.GetRequestIDFromContext(c.Request().Context())
		assert.NotNil(t, deliverycontext.GetLogger(c.Request().Context()))

		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := NewRequestIDMiddleware(slog.Default()).Process(func(echo.Context) error { return nil })

	require.NoError(t, handler(c))
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		status  int
		wantLog string
	}{
		{name: "debug off", debug: false, status: http.StatusOK},
		{name: "success", debug: true, status: http.StatusOK, wantLog: "level=INFO"},
		{name: "client error", debug: true, status: http.StatusNotFound, wantLog: "level=WARN"},
		{name: "server error", debug: true, status: http.StatusInternalServerError, wantLog: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := slog.New(slog.NewTextHandler(buf, nil))
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug

			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), httptest.NewRecorder())

			handler := NewLoggerMiddleware(logger, cfg).Handle(func(c echo.Context) error {
				return c.NoContent(tt.status)
			})
			require.NoError(t, handler(c))

			if tt.wantLog == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), "uri=/auth/login")
		})
	}
}
