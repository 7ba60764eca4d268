package visits_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"visit-tracker/core/lock"
	"visit-tracker/feature/visits"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	svc := visits.NewService(newTestStore(t), lock.NewLocal(), zap.NewNop())
	app := fiber.New()
	visits.NewHandler(svc).RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHandleIngest_Single(t *testing.T) {
	app := setupTestApp(t)

	status, body := postJSON(t, app, "/intersections",
		`{"id":"s1","userId":"u1","timestamp":2,"features":[{"id":"CA","name":"Cafe"},{"id":"SC"}]}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, "s1", body["snapshotId"])
	assert.Equal(t, float64(2), body["visits"])
	changes := body["changes"].(map[string]any)
	assert.Equal(t, float64(2), changes["created"])
}

func TestHandleIngest_Batch(t *testing.T) {
	app := setupTestApp(t)

	status, body := postJSON(t, app, "/intersections", `[
		{"userId":"u1","timestamp":2,"features":[{"id":"CA"}]},
		{"userId":"u1","timestamp":5,"features":[{"id":"CA"}]}
	]`)

	assert.Equal(t, 200, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	second := items[1].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, float64(1), second["changes"].(map[string]any)["extended"])
}

func TestHandleIngest_BatchSkipsInvalidItems(t *testing.T) {
	app := setupTestApp(t)

	status, body := postJSON(t, app, "/intersections", `[
		{"userId":"u1","timestamp":1,"features":[{"id":"F"}]},
		{"features":[]},
		{"userId":"u1","timestamp":3,"features":[{"id":"F"}]}
	]`)

	assert.Equal(t, 200, status)
	items := body["items"].([]any)
	require.Len(t, items, 3)

	rejected := items[1].(map[string]any)
	assert.Equal(t, float64(1), rejected["index"])
	assert.Contains(t, rejected["error"], "invalid snapshot")
	assert.Nil(t, rejected["result"])

	last := items[2].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, float64(1), last["changes"].(map[string]any)["extended"])
}

func TestHandleIngest_Invalid(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed json", `{"userId":`},
		{"missing timestamp", `{"userId":"u1","features":[{"id":"F"}]}`},
		{"missing user", `{"timestamp":1,"features":[{"id":"F"}]}`},
		{"empty features", `{"userId":"u1","timestamp":1,"features":[]}`},
		{"malformed batch", `[{"userId":"u1"},`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/intersections", tt.body)
			assert.Equal(t, 400, status)
			assert.Contains(t, body["error"], "invalid snapshot")
		})
	}
}

func TestHandleVisits_ListAndReset(t *testing.T) {
	app := setupTestApp(t)

	status, _ := postJSON(t, app, "/intersections", `{"userId":"u1","timestamp":2,"features":[{"id":"CA"},{"id":"SC"}]}`)
	require.Equal(t, 200, status)

	resp, err := app.Test(httptest.NewRequest("GET", "/visits/u1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var listed visits.VisitsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Equal(t, "u1", listed.UserID)
	list := listed.Visits
	require.Len(t, list, 2)
	assert.Equal(t, "CA", list[0].FeatureID)
	assert.Equal(t, 2.0, list[0].Start)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/visits/u1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var reset map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reset))
	assert.Equal(t, float64(2), reset["removed"])

	resp, err = app.Test(httptest.NewRequest("DELETE", "/visits/u1?purge=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestHandleRebuild_ArchiveDisabled(t *testing.T) {
	app := setupTestApp(t)

	status, body := postJSON(t, app, "/visits/u1/rebuild", ``)
	assert.Equal(t, 409, status)
	assert.Contains(t, body["error"], "archive is disabled")
}
