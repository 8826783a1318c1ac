package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/logging"
)

type testApp struct {
	t       *testing.T
	app     *fiber.App
	token   string
	exports string
}

func newTestApp(t *testing.T, redisURL string) *testApp {
	t.Helper()
	cfg := testConfig(t, redisURL)
	components, err := Assemble(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	t.Cleanup(func() { components.Close() })

	srv, err := New(cfg, components.RouteDeps(cfg, logging.Discard()))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &testApp{t: t, app: srv.App(), exports: cfg.ExportDir}
}

func testConfig(t *testing.T, redisURL string) config.Config {
	t.Helper()
	return config.Config{
		AppName:               "Suvichar",
		AppEnv:                "test",
		StorageDriver:         config.StorageMemory,
		RedisURL:              redisURL,
		SessionSecret:         "test-secret",
		LibraryDriver:         config.LibraryLocal,
		LibraryDir:            filepath.Join(t.TempDir(), "library"),
		ExportDir:             filepath.Join(t.TempDir(), "exports"),
		CodeRequestsPerMinute: 5,
		IdempotencyTTL:        time.Minute,
	}
}

func (a *testApp) do(method, path, body string, headers ...string) (int, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if a.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			a.t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	} else {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out
}

func (a *testApp) signIn() {
	a.t.Helper()
	a.signInAs("9876543210")
}

func (a *testApp) signInAs(phone string) {
	a.t.Helper()
	a.token = ""
	if status, _ := a.do(http.MethodPost, "/api/v1/auth/code", `{"phone":"`+phone+`"}`); status != http.StatusAccepted {
		a.t.Fatalf("send code: %d", status)
	}
	status, body := a.do(http.MethodPost, "/api/v1/auth/verify", `{"phone":"`+phone+`","code":"123456"}`)
	if status != http.StatusOK {
		a.t.Fatalf("verify: %d %v", status, body)
	}
	a.token, _ = body["token"].(string)
	if a.token == "" {
		a.t.Fatalf("missing token in %v", body)
	}
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, "")
	status, body := a.do(http.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	a := newTestApp(t, "")
	if status, _ := a.do(http.MethodGet, "/api/v1/profile", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	a.token = "forged.token.value"
	if status, _ := a.do(http.MethodGet, "/api/v1/templates", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", status)
	}
}

func TestVerifyRejectsBadCode(t *testing.T) {
	a := newTestApp(t, "")
	status, _ := a.do(http.MethodPost, "/api/v1/auth/verify", `{"phone":"9876543210","code":"12345"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestMainScreenJourney(t *testing.T) {
	a := newTestApp(t, "")
	a.signIn()

	status, body := a.do(http.MethodGet, "/api/v1/home", "")
	if status != http.StatusConflict || body["screen"] != "UNAUTHENTICATED" {
		t.Fatalf("expected 409 to sign-in, got %d %v", status, body)
	}
	if status, _ := a.do(http.MethodGet, "/api/v1/profile", ""); status != http.StatusNotFound {
		t.Fatalf("expected 404 profile, got %d", status)
	}

	status, body = a.do(http.MethodPost, "/api/v1/profile", `{"purpose":"PERSONAL"}`)
	if status != http.StatusOK || body["name"] != "आपका नाम" || body["phone"] != "+919876543210" {
		t.Fatalf("unexpected created profile %d %v", status, body)
	}

	status, body = a.do(http.MethodPut, "/api/v1/profile", `{"name":"Ravi","showDate":false}`)
	if status != http.StatusOK || body["name"] != "Ravi" || body["showDate"] != false {
		t.Fatalf("unexpected updated profile %d %v", status, body)
	}
	if status, _ := a.do(http.MethodPut, "/api/v1/profile", `{"about":"Poet"}`); status != http.StatusForbidden {
		t.Fatalf("expected premium-only field rejection, got %d", status)
	}

	status, body = a.do(http.MethodGet, "/api/v1/home?category=SHAYARI", "")
	if status != http.StatusOK || body["variant"] != "reduced" {
		t.Fatalf("unexpected home %d %v", status, body)
	}

	status, body = a.do(http.MethodPost, "/api/v1/premium/upgrade", `{"plan":"YEARLY"}`)
	if status != http.StatusCreated {
		t.Fatalf("upgrade: %d %v", status, body)
	}
	status, body = a.do(http.MethodGet, "/api/v1/templates?category=SHAYARI", "")
	if status != http.StatusOK || body["variant"] != "full" {
		t.Fatalf("expected full view after upgrade, got %d %v", status, body)
	}

	if status, _ := a.do(http.MethodDelete, "/api/v1/premium", ""); status != http.StatusNoContent {
		t.Fatalf("clear premium: %d", status)
	}
	status, body = a.do(http.MethodGet, "/api/v1/premium", "")
	state, _ := body["state"].(map[string]any)
	if status != http.StatusOK || state["isPremium"] != false {
		t.Fatalf("expected free state, got %d %v", status, body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	a := newTestApp(t, "")
	a.signIn()

	status, body := a.do(http.MethodGet, "/api/v1/categories", "")
	if cats, _ := body["categories"].([]any); status != http.StatusOK || len(cats) != 6 {
		t.Fatalf("unexpected categories %d %v", status, body)
	}
	if status, _ := a.do(http.MethodGet, "/api/v1/templates?category=BIRTHDAY", ""); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", status)
	}
	if status, _ := a.do(http.MethodGet, "/api/v1/templates/tmpl_love_1", ""); status != http.StatusOK {
		t.Fatalf("expected template, got %d", status)
	}
	if status, _ := a.do(http.MethodGet, "/api/v1/templates/missing", ""); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	status, body = a.do(http.MethodGet, "/api/v1/templates/tmpl_love_1/preview.svg", "")
	if raw, _ := body["raw"].(string); status != http.StatusOK || !strings.Contains(raw, "<svg") {
		t.Fatalf("expected svg preview, got %d", status)
	}
	status, body = a.do(http.MethodGet, "/api/v1/quotes/random?category=LOVE", "")
	if q, _ := body["quote"].(string); status != http.StatusOK || q == "" {
		t.Fatalf("expected quote, got %d %v", status, body)
	}
}

func TestDownloads(t *testing.T) {
	a := newTestApp(t, "")
	a.signIn()

	src := filepath.Join(a.exports, "card.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatalf("write card: %v", err)
	}
	status, body := a.do(http.MethodPost, "/api/v1/downloads", `{"uri":"file://`+filepath.ToSlash(src)+`"}`)
	if status != http.StatusCreated {
		t.Fatalf("save: %d %v", status, body)
	}
	asset, _ := body["asset"].(string)

	status, body = a.do(http.MethodGet, "/api/v1/downloads", "")
	list, _ := body["downloads"].([]any)
	if status != http.StatusOK || len(list) != 1 || list[0] != asset {
		t.Fatalf("unexpected downloads %d %v", status, body)
	}

	if status, _ := a.do(http.MethodPost, "/api/v1/downloads", `{"uri":"file:///does/not/exist.png"}`); status != http.StatusBadGateway {
		t.Fatalf("expected 502 for failed save, got %d", status)
	}
	_, body = a.do(http.MethodGet, "/api/v1/downloads", "")
	if list, _ := body["downloads"].([]any); len(list) != 1 {
		t.Fatalf("failed save changed downloads: %v", body)
	}
}

func TestDownloadsRejectFilesOutsideExportDir(t *testing.T) {
	a := newTestApp(t, "")
	a.signIn()

	secret := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(secret, []byte("SESSION_SECRET=x"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	for _, uri := range []string{
		"/etc/passwd",
		"file:///etc/passwd",
		"file://" + filepath.ToSlash(secret),
		"../../../../etc/passwd",
	} {
		status, body := a.do(http.MethodPost, "/api/v1/downloads", `{"uri":"`+uri+`"}`)
		if status != http.StatusBadGateway {
			t.Fatalf("expected 502 for %s, got %d %v", uri, status, body)
		}
	}

	status, body := a.do(http.MethodGet, "/api/v1/downloads", "")
	if list, _ := body["downloads"].([]any); status != http.StatusOK || len(list) != 0 {
		t.Fatalf("rejected saves changed downloads: %d %v", status, body)
	}
}

func TestProfileBelongsToSignedInPhone(t *testing.T) {
	a := newTestApp(t, "")
	a.signInAs("9876543210")
	if status, body := a.do(http.MethodPost, "/api/v1/profile", `{"purpose":"PERSONAL"}`); status != http.StatusOK {
		t.Fatalf("create profile: %d %v", status, body)
	}

	a.signInAs("9123456780")
	checks := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/profile", ""},
		{http.MethodGet, "/api/v1/home", ""},
		{http.MethodPost, "/api/v1/profile", `{"purpose":"BUSINESS"}`},
		{http.MethodPut, "/api/v1/profile", `{"name":"Other"}`},
	}
	for _, c := range checks {
		status, body := a.do(c.method, c.path, c.body)
		if status != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d %v", c.method, c.path, status, body)
		}
		if _, leaked := body["phone"]; leaked {
			t.Fatalf("%s %s leaked profile: %v", c.method, c.path, body)
		}
	}

	a.signInAs("9876543210")
	status, body := a.do(http.MethodGet, "/api/v1/profile", "")
	if status != http.StatusOK || body["phone"] != "+919876543210" || body["name"] != "आपका नाम" {
		t.Fatalf("owner lost access: %d %v", status, body)
	}
}

func TestRedisStorageSharesCacheClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "redis://"+mr.Addr())
	cfg.StorageDriver = config.StorageRedis

	components, err := Assemble(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	rs, ok := components.Store.(*kv.RedisStore)
	if !ok {
		t.Fatalf("expected redis store, got %T", components.Store)
	}
	if components.Cache != rs.Client() {
		t.Fatalf("expected cache to reuse the storage client")
	}
	if err := components.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestUpgradeIdempotentWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, "redis://"+mr.Addr())
	a.signIn()

	_, first := a.do(http.MethodPost, "/api/v1/premium/upgrade", `{"plan":"MONTHLY"}`, "Idempotency-Key", "checkout-1")
	status, second := a.do(http.MethodPost, "/api/v1/premium/upgrade", `{"plan":"MONTHLY"}`, "Idempotency-Key", "checkout-1")
	if status != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", status)
	}
	r1, _ := first["receipt"].(map[string]any)
	r2, _ := second["receipt"].(map[string]any)
	if r1["reference"] == nil || r1["reference"] != r2["reference"] {
		t.Fatalf("expected same receipt, got %v and %v", r1, r2)
	}
}
