package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"game-portal-system/middleware"
	"game-portal-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp wires every route group in the same order as main, so route and
// middleware scoping here matches the running service.
func newTestApp(t *testing.T) *fiber.App {
	t.Setenv("ADMIN_SECRET", "test-admin-secret")

	app := fiber.New()
	leaderboardService := services.NewLeaderboardService(nil)
	progressService := services.NewProgressService(nil, leaderboardService)
	backfillService := services.NewBackfillService(nil, leaderboardService)

	SetupProgressRoutes(app, progressService, middleware.NewRateLimiter())
	SetupLeaderboardRoutes(app, leaderboardService)
	SetupAdminRoutes(app, backfillService)
	SetupRomRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, headers map[string]string) (int, string) {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestLeaderboardReadIsPublic(t *testing.T) {
	app := newTestApp(t)

	// No X-User-ID: the request must reach the leaderboard handler, not get
	// bounced by the user-context middleware of a neighboring route group.
	// "weather" is a valid app without a leaderboard, so the handler answers
	// 400 before touching the database.
	status, body := doRequest(t, app, http.MethodGet, "/leaderboards/weather", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "not available")
	assert.NotContains(t, body, "please log in")

	status, body = doRequest(t, app, http.MethodGet, "/leaderboards/fortnite", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "invalid app ID")
}

func TestRomReadIsPublic(t *testing.T) {
	app := newTestApp(t)

	// Empty key: handler rejects it itself, anonymously, with 400 — proving
	// no user-context middleware intercepted the request first.
	status, body := doRequest(t, app, http.MethodGet, "/roms/", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "invalid ROM path")
	assert.NotContains(t, body, "please log in")
}

func TestAdminBackfillUsesAdminSecretNotUserContext(t *testing.T) {
	app := newTestApp(t)

	// Wrong secret and no X-User-ID: the admin handler's own 401, not the
	// user-context middleware's.
	status, body := doRequest(t, app, http.MethodPost, "/admin/backfill-leaderboards", map[string]string{
		"X-Admin-Secret": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotContains(t, body, "please log in")
}

func TestProgressRoutesRequireUser(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct{ method, target string }{
		{http.MethodGet, "/progress"},
		{http.MethodGet, "/progress/snake"},
		{http.MethodPost, "/progress/snake"},
		{http.MethodDelete, "/progress/snake"},
		{http.MethodGet, "/leaderboards/my-ranks"},
		{http.MethodGet, "/gaming-profile"},
		{http.MethodPatch, "/gaming-profile"},
	} {
		status, body := doRequest(t, app, route.method, route.target, nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", route.method, route.target)
		assert.Contains(t, body, "please log in", "%s %s", route.method, route.target)
	}
}
