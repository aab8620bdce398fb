package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/flavors/internal/config"
	"github.com/deppfellow/flavors/internal/handler"
	"github.com/deppfellow/flavors/internal/repository"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/deppfellow/flavors/internal/service"
	"github.com/deppfellow/flavors/static"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name", "is_favorite", "created_at", "updated_at"}

var seeded = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	mock   pgxmock.PgxPoolIface
	router *echo.Echo
}

func newTestApp(t *testing.T, policy config.ValidationPolicy) *testApp {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	cfg := config.DefaultConfig()
	cfg.Validation.Policy = policy
	logger := zerolog.Nop()
	s := &server.Server{Config: cfg, Logger: &logger}

	svc := service.NewFlavorService(repository.NewFlavorRepository(mock), nil, &logger)
	h := &handler.Handlers{
		Health:  handler.NewHealthHandler(s),
		OpenAPI: handler.NewOpenAPIHandler(s, static.Files),
		Flavor:  handler.NewFlavorHandler(s, svc),
	}

	return &testApp{mock: mock, router: NewRouter(s, h)}
}

func (a *testApp) do(method, target, body string) *httptest.ResponseRecorder {
	if body == "" {
		return a.doWithType(method, target, "", "")
	}
	return a.doWithType(method, target, body, echo.MIMEApplicationJSON)
}

func (a *testApp) doWithType(method, target, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func text(s string) *string { return &s }

var null = (*string)(nil)

func selectSQL(where string) string {
	return regexp.QuoteMeta("SELECT id, name, is_favorite, created_at, updated_at FROM flavors" + where)
}

func TestListFlavors(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(selectSQL("")).
		WillReturnRows(app.mock.NewRows(columns).
			AddRow(int64(1), "vanilla", true, seeded, seeded).
			AddRow(int64(2), "strawberry", true, seeded, seeded).
			AddRow(int64(3), "chocolate", false, seeded, seeded))

	rec := app.do(http.MethodGet, "/api/flavors", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var flavors []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavors))
	require.Len(t, flavors, 3)
	assert.Equal(t, "vanilla", flavors[0]["name"])
	assert.Equal(t, false, flavors[2]["is_favorite"])
	assert.Contains(t, flavors[0], "created_at")
	assert.Contains(t, flavors[0], "updated_at")
}

func TestListFlavors_Empty(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(selectSQL("")).WillReturnRows(app.mock.NewRows(columns))

	rec := app.do(http.MethodGet, "/api/flavors", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetFlavor(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(selectSQL(" WHERE id = $1")).
		WithArgs("2").
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(2), "strawberry", true, seeded, seeded))

	rec := app.do(http.MethodGet, "/api/flavors/2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var flavor map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	assert.Equal(t, float64(2), flavor["id"])
	assert.Equal(t, "strawberry", flavor["name"])
	assert.Equal(t, true, flavor["is_favorite"])
}

func TestGetFlavor_NotFound(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(selectSQL(" WHERE id = $1")).
		WithArgs("999").
		WillReturnRows(app.mock.NewRows(columns))

	rec := app.do(http.MethodGet, "/api/flavors/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
	assert.Equal(t, "Flavor not found", rec.Body.String())
}

func TestGetFlavor_NonNumericIDIsServerError(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(selectSQL(" WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type integer: "abc"`})

	rec := app.do(http.MethodGet, "/api/flavors/abc", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "invalid input syntax")
}

func TestCreateFlavor(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(text("mint"), text("false")).
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "mint", false, seeded, seeded))

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":"mint","is_favorite":false}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var flavor map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	assert.Equal(t, float64(4), flavor["id"])
	assert.Equal(t, "mint", flavor["name"])
	assert.Equal(t, false, flavor["is_favorite"])
}

func TestCreateFlavor_NullFavorite(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(text("mint"), null).
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "mint", nil, seeded, seeded))

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":"mint"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var flavor map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	assert.Contains(t, flavor, "is_favorite")
	assert.Nil(t, flavor["is_favorite"])
}

func TestCreateFlavor_MissingNamePassthrough(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(null, text("true")).
		WillReturnError(&pgconn.PgError{Code: "23502", TableName: "flavors", ColumnName: "name"})

	rec := app.do(http.MethodPost, "/api/flavors", `{"is_favorite":true}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "FLAVOR_REQUIRED")
}

func TestCreateFlavor_MissingNameStrict(t *testing.T) {
	app := newTestApp(t, config.ValidationStrict)

	rec := app.do(http.MethodPost, "/api/flavors", `{"is_favorite":true}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestCreateFlavor_LooseTypesReachTheStore(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(text("5"), text("yes")).
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "5", true, seeded, seeded))

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":5,"is_favorite":"yes"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var flavor map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	assert.Equal(t, "5", flavor["name"])
	assert.Equal(t, true, flavor["is_favorite"])
}

func TestCreateFlavor_UncoercibleValueIsServerError(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(text("mint"), text("maybe")).
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type boolean: "maybe"`})

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":"mint","is_favorite":"maybe"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "invalid input syntax")
}

func TestCreateFlavor_NonJSONBodyPassthrough(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{name: "no content type", contentType: ""},
		{name: "form body", contentType: echo.MIMETextPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, config.ValidationPassthrough)
			app.mock.ExpectQuery(`INSERT INTO flavors`).
				WithArgs(null, null).
				WillReturnError(&pgconn.PgError{Code: "23502", TableName: "flavors", ColumnName: "name"})

			rec := app.doWithType(http.MethodPost, "/api/flavors", "name=mint", tt.contentType)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), "FLAVOR_REQUIRED")
		})
	}
}

func TestCreateFlavor_WrongTypesStrict(t *testing.T) {
	app := newTestApp(t, config.ValidationStrict)

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":5,"is_favorite":"yes"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Errors []struct {
			Field string `json:"field"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "name", body.Errors[0].Field)
	assert.Equal(t, "is_favorite", body.Errors[1].Field)
}

func TestCreateFlavor_NonJSONBodyStrict(t *testing.T) {
	app := newTestApp(t, config.ValidationStrict)

	rec := app.doWithType(http.MethodPost, "/api/flavors", "name=mint", echo.MIMETextPlain)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported Media Type")
}

func TestCreateFlavor_MalformedJSON(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFlavor(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	later := seeded.Add(time.Minute)
	app.mock.ExpectQuery(regexp.QuoteMeta(`updated_at = now()`)).
		WithArgs(text("vanilla bean"), text("false"), "1").
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(1), "vanilla bean", false, seeded, later))

	rec := app.do(http.MethodPut, "/api/flavors/1", `{"name":"vanilla bean","is_favorite":false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var flavor struct {
		Name       string    `json:"name"`
		IsFavorite *bool     `json:"is_favorite"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	assert.Equal(t, "vanilla bean", flavor.Name)
	require.NotNil(t, flavor.IsFavorite)
	assert.False(t, *flavor.IsFavorite)
	assert.True(t, flavor.UpdatedAt.After(flavor.CreatedAt))
}

func TestUpdateFlavor_NotFound(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectQuery(`UPDATE flavors`).
		WithArgs(text("x"), text("true"), "999").
		WillReturnRows(app.mock.NewRows(columns))

	rec := app.do(http.MethodPut, "/api/flavors/999", `{"name":"x","is_favorite":true}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Flavor not found", rec.Body.String())
}

func TestDeleteFlavor_Idempotent(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	app.mock.ExpectExec(`DELETE FROM flavors`).
		WithArgs("3").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	app.mock.ExpectExec(`DELETE FROM flavors`).
		WithArgs("3").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	for i := 0; i < 2; i++ {
		rec := app.do(http.MethodDelete, "/api/flavors/3", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	}
}

func TestFlavorLifecycle(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)
	created := seeded.Add(time.Hour)
	edited := created.Add(time.Minute)

	app.mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(text("pistachio"), text("true")).
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "pistachio", true, created, created))
	app.mock.ExpectQuery(selectSQL(" WHERE id = $1")).
		WithArgs("4").
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "pistachio", true, created, created))
	app.mock.ExpectQuery(`UPDATE flavors`).
		WithArgs(text("salted pistachio"), text("false"), "4").
		WillReturnRows(app.mock.NewRows(columns).AddRow(int64(4), "salted pistachio", false, created, edited))
	app.mock.ExpectExec(`DELETE FROM flavors`).
		WithArgs("4").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	app.mock.ExpectQuery(selectSQL(" WHERE id = $1")).
		WithArgs("4").
		WillReturnRows(app.mock.NewRows(columns))

	rec := app.do(http.MethodPost, "/api/flavors", `{"name":"pistachio","is_favorite":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	posted := rec.Body.String()

	var flavor struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flavor))
	target := fmt.Sprintf("/api/flavors/%d", flavor.ID)

	rec = app.do(http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, posted, rec.Body.String())

	rec = app.do(http.MethodPut, target, `{"name":"salted pistachio","is_favorite":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"salted pistachio"`)

	rec = app.do(http.MethodDelete, target, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Flavor not found", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)

	rec := app.do(http.MethodGet, "/api/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestDocs(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)

	rec := app.do(http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	rec = app.do(http.MethodGet, "/static/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/api/flavors/{id}")
}

func TestStatus_NoChecks(t *testing.T) {
	app := newTestApp(t, config.ValidationPassthrough)

	rec := app.do(http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
