package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-sizer/calculator"
	"solar-sizer/repository"
	"solar-sizer/service"
)

type testEnv struct {
	handler  http.Handler
	repo     *repository.ApplicationRepositoryMemory
	calc     *CalculatorHandler
	apps     *ApplicationHandler
	limiter  *RateLimiter
	sessions *Sessions
}

func newTestEnv(t *testing.T, perMinute, burst int) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := calculator.New(calculator.DefaultTables())
	require.NoError(t, err)
	repo := repository.NewApplicationRepositoryMemory()
	appSvc := service.NewApplicationService(repo, nil, log)
	recSvc := service.NewRecommendationService(engine, appSvc, log)
	sessions := NewSessions(repository.NewMemorySessionStore(repository.SessionTTL), log, false)

	env := &testEnv{
		repo:     repo,
		calc:     NewCalculatorHandler(recSvc, sessions, log),
		apps:     NewApplicationHandler(appSvc, sessions, log),
		limiter:  NewRateLimiter(perMinute, burst),
		sessions: sessions,
	}
	t.Cleanup(env.limiter.Stop)
	env.handler = NewServer(ServerConfig{
		Calculator:    env.calc,
		Applications:  env.apps,
		RateLimiter:   env.limiter,
		AdminUser:     "admin",
		AdminPassword: "secret",
		Log:           log,
	})
	return env
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const lagosJSON = `{
	"location": "Lagos",
	"user_type": "household",
	"grid_hours": "10",
	"daily_energy": 10
}`

func TestCalculateHandler_OK(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(lagosJSON))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^SOL-[0-9A-F]{8}$`, body["application_number"])
	assert.Contains(t, body["recommendations"], "Recommended system: Hybrid")

	rec := body["recommendation"].(map[string]any)
	solar := rec["solar_system"].(map[string]any)
	assert.Equal(t, 2.5, solar["total_capacity"])
	assert.Equal(t, 7.0, solar["num_panels"])
	fin := rec["financial"].(map[string]any)
	assert.Equal(t, "2962500", fin["cost_breakdown"].(map[string]any)["total"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	app, err := env.repo.Get(req.Context(), body["application_number"].(string))
	require.NoError(t, err)
	assert.Equal(t, "hybrid", app.SystemType)
}

func TestCalculateHandler_Form(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	form := url.Values{
		"location":     {"Kano"},
		"user_type":    {"business"},
		"grid_hours":   {"4"},
		"daily_energy": {"30"},
		"dual_use":     {"on"},
		"appliances":   {`[{"type":"Laptop","units":2,"hours":8,"power":65}]`},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decodeBody(t, w)["recommendation"].(map[string]any)
	assert.Equal(t, "portable", rec["system_type"].(map[string]any)["type"])
}

func TestCalculateHandler_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/calculate", nil)
	w := httptest.NewRecorder()
	env.calc.Calculate(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCalculateHandler_BadRequest(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(`{invalid-json}`))
	w := httptest.NewRecorder()
	env.calc.Calculate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestCalculateHandler_ValidationError(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate",
		bytes.NewBufferString(`{"location":"Lagos","user_type":"household","daily_energy":10}`))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "grid_hours")
}

func TestSubmitApplication_UsesSession(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	calc := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(lagosJSON))
	cw := httptest.NewRecorder()
	env.handler.ServeHTTP(cw, calc)
	require.Equal(t, http.StatusOK, cw.Code)
	number := decodeBody(t, cw)["application_number"].(string)

	sub := httptest.NewRequest(http.MethodPost, "/api/applications",
		bytes.NewBufferString(`{"name":"Ada Obi","email":"ada@example.com","phone":"0803","contact_time":"morning"}`))
	for _, c := range cw.Result().Cookies() {
		sub.AddCookie(c)
	}
	sw := httptest.NewRecorder()
	env.handler.ServeHTTP(sw, sub)

	require.Equal(t, http.StatusOK, sw.Code, sw.Body.String())
	assert.Equal(t, number, decodeBody(t, sw)["application_number"])

	app, err := env.repo.Get(sub.Context(), number)
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", app.FullName)
	assert.Equal(t, "Lagos", app.Location)
}

func TestSubmitApplication_Invalid(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	form := url.Values{"name": {"Ada"}, "email": {""}, "phone": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "email")
}

func TestAdmin_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_ListGetExport(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	calc := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(lagosJSON))
	cw := httptest.NewRecorder()
	env.handler.ServeHTTP(cw, calc)
	number := decodeBody(t, cw)["application_number"].(string)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "secret")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		return w
	}

	w := get("/admin/applications")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, number, list[0]["application_number"])

	w = get("/admin/applications/" + number)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lagos", decodeBody(t, w)["location"])

	w = get("/admin/applications/SOL-NOPE")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get("/admin/export.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), number)
}

func TestLocationsAndAppliances(t *testing.T) {
	env := newTestEnv(t, 60, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var locs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &locs))
	assert.Len(t, locs, 6)

	req = httptest.NewRequest(http.MethodPost, "/api/appliances/estimate",
		bytes.NewBufferString(`{"appliances":[{"type":"Ceiling Fan","units":2,"hours":10},{"type":"custom","daily_usage":1.5}]}`))
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.InDelta(t, 3.0, decodeBody(t, w)["total_daily_kwh"], 1e-9)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, 1, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(lagosJSON))
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients have their own budget
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(lagosJSON))
	req.RemoteAddr = "198.51.100.1:5555"
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	rl.cleanup(time.Now().Add(2 * limiterIdleThreshold))
	assert.Empty(t, rl.clients)
	assert.True(t, rl.Allow("a"))
	rl.Stop()
}

func TestRecover(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recover(log))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
