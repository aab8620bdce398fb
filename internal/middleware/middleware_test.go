package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/flavors/internal/config"
	"github.com/deppfellow/flavors/internal/errs"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/deppfellow/flavors/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	logger := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &logger}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	mw := NewMiddlewares(s)
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(RequestID(), mw.ContextEnhancer.EnhanceContext())
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler_PlainTextNotFound(t *testing.T) {
	e := newEcho(newTestServer(t))
	e.GET("/flavors/:id", func(c echo.Context) error {
		return sqlerr.HandleError(sqlerr.InTable("flavors", fmt.Errorf("get: %w", pgx.ErrNoRows)))
	})

	rec := serve(e, http.MethodGet, "/flavors/999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
	assert.Equal(t, "Flavor not found", rec.Body.String())
}

func TestGlobalErrorHandler_UnknownRoute(t *testing.T) {
	e := newEcho(newTestServer(t))

	rec := serve(e, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Route not found", body.Message)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestGlobalErrorHandler_RawDatabaseError(t *testing.T) {
	e := newEcho(newTestServer(t))
	e.POST("/flavors", func(c echo.Context) error {
		return &pgconn.PgError{Code: "23502", TableName: "flavors", ColumnName: "name", Message: "null value in column"}
	})

	rec := serve(e, http.MethodPost, "/flavors")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "FLAVOR_REQUIRED", body.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Message)
	assert.NotContains(t, rec.Body.String(), "null value")
}

func TestGlobalErrorHandler_LogsStoreErrorWithStack(t *testing.T) {
	prev := zerolog.ErrorStackMarshaler
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	t.Cleanup(func() { zerolog.ErrorStackMarshaler = prev })

	var buf bytes.Buffer
	s := newTestServer(t)
	logger := zerolog.New(&buf)
	s.Logger = &logger

	e := newEcho(s)
	e.POST("/flavors", func(c echo.Context) error {
		pgErr := &pgconn.PgError{Code: "23502", TableName: "flavors", ColumnName: "name"}
		return sqlerr.HandleError(sqlerr.InTable("flavors", errors.Wrap(pgErr, "creating flavor")))
	})

	rec := serve(e, http.MethodPost, "/flavors")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.NotEmpty(t, line["stack"])
	assert.Contains(t, line["detail"], "required")
}

func TestGlobalErrorHandler_FieldErrors(t *testing.T) {
	e := newEcho(newTestServer(t))
	e.POST("/flavors", func(c echo.Context) error {
		return errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "name", Error: "is required"}}, nil)
	})

	rec := serve(e, http.MethodPost, "/flavors")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.True(t, body.Override)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestRequestID(t *testing.T) {
	e := newEcho(newTestServer(t))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := serve(e, http.MethodGet, "/")
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestGetLogger_FallsBackToNop(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, GetLogger(c))
}

func TestEnhanceContext_StoresLoggerOnRequestContext(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t)
	logger := zerolog.New(&buf)
	s.Logger = &logger

	e := newEcho(s)
	e.GET("/", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from context")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "from context", line["message"])
	assert.Equal(t, "req-42", line["request_id"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.Config.Server.RateLimitPerSecond = 1

	e := newEcho(s)
	rl := NewRateLimitMiddleware(s)
	require.True(t, rl.Enabled())
	e.Use(rl.Limit())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/").Code)

	rec := serve(e, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, rec).Code)
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	assert.False(t, NewRateLimitMiddleware(newTestServer(t)).Enabled())
}
