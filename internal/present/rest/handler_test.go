package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/i18n-store/internal/infra/database"
	"github.com/totegamma/i18n-store/internal/infra/repository"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
	"github.com/totegamma/i18n-store/internal/service"
	"github.com/totegamma/i18n-store/internal/usecase"
	"github.com/totegamma/i18n-store/internal/validation"
)

const exportBudget = 500 * time.Millisecond

type testServer struct {
	e     *echo.Echo
	sqlDB *sql.DB
	seed  *usecase.SeedUsecase
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	translationRepo := repository.NewTranslationRepository(db)
	userRepo := repository.NewUserRepository(db)

	reg := telemetry.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	validate := validation.New()
	auth := service.NewAuthService("test-secret", "i18n-store", 0)

	translationUC := usecase.NewTranslationUsecase(translationRepo, validate, metrics)
	exportUC := usecase.NewExportUsecase(repository.NewExportRepository(db), metrics, exportBudget)
	authUC := usecase.NewAuthUsecase(userRepo, auth, validate)
	seedUC := usecase.NewSeedUsecase(translationRepo, userRepo)

	_, err = seedUC.SeedUser(context.Background(), "Admin User", "admin@admin.com", "password")
	require.NoError(t, err)

	e := echo.New()
	NewHandler(translationUC, exportUC, authUC, sqlDB, reg).RegisterRoutes(e)

	s := &testServer{e: e, sqlDB: sqlDB, seed: seedUC}

	rec := s.do(t, http.MethodPost, "/sanctum/token", map[string]string{
		"email":       "admin@admin.com",
		"password":    "password",
		"device_name": "test",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	s.token = resp.Token

	return s
}

func (s *testServer) do(t *testing.T, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, target, body, http.Header{"Authorization": {"Bearer " + s.token}})
}

type translationJSON struct {
	ID     uint64  `json:"id"`
	Group  *string `json:"group"`
	Key    string  `json:"key"`
	Locale string  `json:"locale"`
	Value  string  `json:"value"`
	Tags   []struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"tags"`
}

func (tr translationJSON) tagNames() []string {
	names := make([]string, len(tr.Tags))
	for i, tag := range tr.Tags {
		names[i] = tag.Name
	}
	return names
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIssueTokenFailures(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/sanctum/token", map[string]string{
		"email":    "admin@admin.com",
		"password": "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/sanctum/token", map[string]string{}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rec)
	assert.Contains(t, errs.Errors, "email")
	assert.Contains(t, errs.Errors, "password")
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/translations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthenticated."}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/export", nil, http.Header{"Authorization": {"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/translations", nil, http.Header{"Authorization": {"Basic " + s.token}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTranslationLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.authed(t, http.MethodPost, "/api/translations", map[string]any{
		"group":  "web",
		"key":    "welcome_message",
		"locale": "en",
		"value":  "Welcome!",
		"tags":   []string{"a", "b"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[translationJSON](t, rec)
	assert.Equal(t, "welcome_message", created.Key)
	assert.Equal(t, []string{"a", "b"}, created.tagNames())

	path := "/api/translations/" + strconv.FormatUint(created.ID, 10)

	rec = s.authed(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[translationJSON](t, rec).ID)

	// absent tags keep the current set
	rec = s.authed(t, http.MethodPut, path, map[string]any{
		"group":  "web",
		"key":    "welcome_message",
		"locale": "en",
		"value":  "Welcome back!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[translationJSON](t, rec)
	assert.Equal(t, "Welcome back!", updated.Value)
	assert.Equal(t, []string{"a", "b"}, updated.tagNames())

	// an explicit empty list clears them
	rec = s.authed(t, http.MethodPut, path, map[string]any{
		"key":    "welcome_message",
		"locale": "en",
		"value":  "Welcome back!",
		"tags":   []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decode[translationJSON](t, rec)
	assert.Nil(t, updated.Group)
	assert.Empty(t, updated.Tags)

	rec = s.authed(t, http.MethodPut, path, map[string]any{"key": "welcome_message"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.authed(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.authed(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.authed(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.authed(t, http.MethodPut, path, map[string]any{"key": "k", "locale": "en", "value": "v"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.authed(t, http.MethodGet, "/api/translations/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTranslationRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := s.authed(t, http.MethodPost, "/api/translations", `{"key":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.authed(t, http.MethodPost, "/api/translations", map[string]any{
		"key":   "",
		"value": "v",
		"tags":  []string{"ok", ""},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode[struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}](t, rec)
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, []string{"The key field is required."}, body.Errors["key"])
	assert.Contains(t, body.Errors, "locale")
	assert.Contains(t, body.Errors, "tags.1")
	assert.NotContains(t, body.Errors, "value")
}

func TestCreateTranslationRejectsWrongTypes(t *testing.T) {
	s := newTestServer(t)

	rec := s.authed(t, http.MethodPost, "/api/translations", `{"key":123,"locale":"en","value":"v"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rec)
	assert.Equal(t, []string{"The key field must be a string."}, body.Errors["key"])

	rec = s.authed(t, http.MethodPost, "/api/translations", `{"key":"k","locale":"en","value":"v","tags":"a"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body = decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rec)
	assert.Equal(t, []string{"The tags field must be an array."}, body.Errors["tags"])

	created := s.authed(t, http.MethodPost, "/api/translations", map[string]any{"key": "k", "locale": "en", "value": "v"})
	require.Equal(t, http.StatusCreated, created.Code)
	path := "/api/translations/" + strconv.FormatUint(decode[translationJSON](t, created).ID, 10)

	rec = s.authed(t, http.MethodPut, path, `{"key":"k","locale":["en"],"value":"v"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body = decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rec)
	assert.Equal(t, []string{"The locale field must be a string."}, body.Errors["locale"])

	rec = s.authed(t, http.MethodPut, path, `{"key":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTranslations(t *testing.T) {
	s := newTestServer(t)

	inputs := []map[string]any{
		{"group": "web", "key": "welcome_message", "locale": "en", "value": "Welcome!", "tags": []string{"mobile"}},
		{"group": "web", "key": "welcome_title", "locale": "fr", "value": "Bienvenue", "tags": []string{"mobile", "web"}},
		{"key": "goodbye", "locale": "en", "value": "Bye, welcome again"},
	}
	for _, in := range inputs {
		rec := s.authed(t, http.MethodPost, "/api/translations", in)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	type envelope struct {
		CurrentPage int               `json:"current_page"`
		Data        []translationJSON `json:"data"`
		LastPage    int               `json:"last_page"`
		NextPageURL *string           `json:"next_page_url"`
		PrevPageURL *string           `json:"prev_page_url"`
		From        *int              `json:"from"`
		To          *int              `json:"to"`
		Total       int64             `json:"total"`
		PerPage     int               `json:"per_page"`
	}

	rec := s.authed(t, http.MethodGet, "/api/translations?key=welcome", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[envelope](t, rec)
	assert.EqualValues(t, 2, page.Total)
	for _, tr := range page.Data {
		assert.Contains(t, tr.Key, "welcome")
	}

	rec = s.authed(t, http.MethodGet, "/api/translations?tag=mobile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	assert.EqualValues(t, 2, page.Total)

	rec = s.authed(t, http.MethodGet, "/api/translations?content=Bye", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "goodbye", page.Data[0].Key)

	rec = s.authed(t, http.MethodGet, "/api/translations?tag=mobile&key=title", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, []string{"mobile", "web"}, page.Data[0].tagNames())

	// empty parameters are ignored and a malformed page falls back to 1
	rec = s.authed(t, http.MethodGet, "/api/translations?tag=&page=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)
	assert.Nil(t, page.NextPageURL)
	assert.Nil(t, page.PrevPageURL)
	require.NotNil(t, page.From)
	assert.Equal(t, 1, *page.From)
	assert.Equal(t, 3, *page.To)

	rec = s.authed(t, http.MethodGet, "/api/translations?page=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.From)
	assert.Nil(t, page.To)
	require.NotNil(t, page.PrevPageURL)
	assert.Contains(t, *page.PrevPageURL, "page=4")

	// a page whose offset would overflow is past the end, not page one
	rec = s.authed(t, http.MethodGet, "/api/translations?page=999999999999999999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[envelope](t, rec)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.From)
	assert.Nil(t, page.To)
	assert.Greater(t, page.CurrentPage, page.LastPage)
	assert.EqualValues(t, 3, page.Total)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)

	rec := s.authed(t, http.MethodPost, "/api/translations", map[string]any{
		"key": "hello", "locale": "de", "value": "Hallo",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.authed(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"de":{"default":{"hello":"Hallo"}}}`, rec.Body.String())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = s.do(t, http.MethodGet, "/api/export", nil, http.Header{
		"Authorization": {"Bearer " + s.token},
		"If-None-Match": {etag},
	})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/export", nil, http.Header{
		"Authorization": {"Bearer " + s.token},
		"If-None-Match": {`"stale"`},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportSeededWithinBudget(t *testing.T) {
	s := newTestServer(t)

	n, err := s.seed.GenerateTranslations(context.Background(), 5000)
	require.NoError(t, err)
	require.Equal(t, 5000, n)

	start := time.Now()
	rec := s.authed(t, http.MethodGet, "/api/export", nil)
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, elapsed, exportBudget)

	tree := decode[map[string]map[string]map[string]string](t, rec)
	assert.Len(t, tree, 3)
	for locale, groups := range tree {
		assert.Contains(t, []string{"en", "fr", "es"}, locale)
		for group := range groups {
			assert.Contains(t, []string{"web", "mobile"}, group)
		}
	}
}

func TestStorageFailure(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// warm the principal cache so the request gets past authentication
	rec = s.authed(t, http.MethodGet, "/api/translations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.sqlDB.Close())

	rec = s.authed(t, http.MethodGet, "/api/export", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Server Error"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.authed(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "i18n_export_duration_seconds_count 1")
}
