package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/psytech/suvichar/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	calls := 0
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/upgrade", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		calls++
		return fiber.NewError(fiber.StatusBadRequest, "nope")
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header.Get(replayedHeader)
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	app, calls := setupIdempotencyApp(t)
	post(t, app, "/upgrade", "")
	post(t, app, "/upgrade", "")
	if *calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", *calls)
	}
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	status, body, replayed := post(t, app, "/upgrade", "abc123")
	if status != fiber.StatusCreated || replayed != "" {
		t.Fatalf("unexpected first response %d replayed=%q", status, replayed)
	}

	status2, body2, replayed2 := post(t, app, "/upgrade", "abc123")
	if status2 != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, status2)
	}
	if body2 != body {
		t.Fatalf("expected cached payload %s got %s", body, body2)
	}
	if replayed2 != "true" {
		t.Fatalf("expected replay header")
	}
	if *calls != 1 {
		t.Fatalf("handler ran %d times", *calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	app, calls := setupIdempotencyApp(t)
	post(t, app, "/fail", "k1")
	status, _, _ := post(t, app, "/fail", "k1")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if *calls != 2 {
		t.Fatalf("failed requests should be retried, ran %d", *calls)
	}
}

func TestIdempotencyWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Use(Idempotency(nil, time.Minute, logging.Discard()))
	app.Post("/upgrade", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	status, _, _ := post(t, app, "/upgrade", "abc")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", status)
	}
}
