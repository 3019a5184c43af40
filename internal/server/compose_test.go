package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/threadly/internal/clock"
	composerservice "github.com/smallbiznis/threadly/internal/composer/service"
	"github.com/smallbiznis/threadly/internal/config"
	generatordomain "github.com/smallbiznis/threadly/internal/generator/domain"
	quotarepository "github.com/smallbiznis/threadly/internal/quota/repository"
	quotaservice "github.com/smallbiznis/threadly/internal/quota/service"
	cacherepository "github.com/smallbiznis/threadly/internal/threadcache/repository"
	cacheservice "github.com/smallbiznis/threadly/internal/threadcache/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		Quota: config.QuotaConfig{
			DailyLimit:     3,
			MonthlyLimit:   100,
			PremiumBypass:  true,
			CountCacheHits: true,
			BurstLimit:     100,
			BurstWindow:    time.Minute,
		},
		Cache: config.CacheConfig{Enabled: true, TTL: time.Hour, HotTTL: time.Minute},
		Compose: config.ComposeConfig{
			MaxLength:        280,
			WarningThreshold: 260,
			AddNumbers:       true,
			NumberFormat:     "{current}/{total} ",
		},
		Generator:  config.GeneratorConfig{Timeout: time.Second},
		AdminToken: "test-admin-token",
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	cl := clock.SystemClock{}

	quotaSvc := quotaservice.NewService(quotaservice.ServiceParam{
		Log:   log,
		Cfg:   cfg,
		Store: quotarepository.NewMemoryStore(),
		Clock: cl,
	})
	cacheSvc := cacheservice.NewService(cacheservice.ServiceParam{
		Log:   log,
		Cfg:   cfg,
		Store: cacherepository.NewMemoryStore(),
		Clock: cl,
	})
	composerSvc := composerservice.NewService(composerservice.ServiceParam{
		Log:       log,
		Cfg:       cfg,
		Quota:     quotaSvc,
		Cache:     cacheSvc,
		Generator: generatordomain.Passthrough(),
		Node:      node,
		Clock:     cl,
	})

	srv := NewServer(ServerParam{
		Cfg:      cfg,
		Log:      log,
		DB:       db,
		Engine:   NewEngine(cfg, nil),
		Composer: composerSvc,
		Quota:    quotaSvc,
		Cache:    cacheSvc,
	})
	srv.RegisterAPIRoutes()
	return srv
}

func doJSON(srv *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

type threadResponse struct {
	ID       string `json:"id"`
	Segments []struct {
		Content        string `json:"content"`
		Order          int    `json:"order"`
		CharacterCount int    `json:"character_count"`
	} `json:"segments"`
	TotalCount int `json:"total_count"`
	Source     struct {
		ContentHash string `json:"content_hash"`
		CacheHit    bool   `json:"cache_hit"`
	} `json:"source"`
}

func TestComposeThreadEndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"content":"` + strings.Repeat("alpha beta gamma delta ", 30) + `"}`
	w := doJSON(srv, http.MethodPost, "/api/v1/threads", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp threadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCount != len(resp.Segments) || resp.TotalCount < 2 {
		t.Fatalf("expected a multi segment thread, got %d/%d", resp.TotalCount, len(resp.Segments))
	}
	for i, seg := range resp.Segments {
		if seg.Order != i+1 {
			t.Fatalf("segment %d has order %d", i, seg.Order)
		}
		if seg.CharacterCount > 280 {
			t.Fatalf("segment %d exceeds limit: %d", seg.Order, seg.CharacterCount)
		}
		prefix := fmt.Sprintf("%d/%d ", seg.Order, resp.TotalCount)
		if !strings.HasPrefix(seg.Content, prefix) {
			t.Fatalf("segment %d missing prefix %q: %q", seg.Order, prefix, seg.Content)
		}
	}
	if resp.Source.CacheHit {
		t.Fatalf("first request must not be a cache hit")
	}

	// Same content again comes back from the cache.
	w = doJSON(srv, http.MethodPost, "/api/v1/threads", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var second threadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.Source.CacheHit {
		t.Fatalf("repeat request should be a cache hit")
	}
	if second.ID != resp.ID {
		t.Fatalf("cached thread changed identity")
	}
}

func TestComposeQuotaExhaustionReturns429(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Quota.DailyLimit = 2
	})

	for i := 0; i < 2; i++ {
		body := fmt.Sprintf(`{"content":"unique content number %d"}`, i)
		if w := doJSON(srv, http.MethodPost, "/api/v1/threads", body, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d: %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"one more"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", w.Code)
	}

	var resp struct {
		Error struct {
			Code    string     `json:"code"`
			ResetAt *time.Time `json:"reset_at"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "quota_exceeded" {
		t.Fatalf("error code %q, want quota_exceeded", resp.Error.Code)
	}
	if resp.Error.ResetAt == nil || !resp.Error.ResetAt.After(time.Now().UTC()) {
		t.Fatalf("reset_at should be a future timestamp, got %v", resp.Error.ResetAt)
	}
}

func TestPreviewSpendsNoQuota(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Quota.DailyLimit = 1
	})

	for i := 0; i < 3; i++ {
		w := doJSON(srv, http.MethodPost, "/api/v1/threads/preview", `{"content":"draft text"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("preview %d: status %d: %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(srv, http.MethodGet, "/api/v1/usage", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("usage: status %d: %s", w.Code, w.Body.String())
	}
	var usage struct {
		DailyUsed int `json:"daily_used"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if usage.DailyUsed != 0 {
		t.Fatalf("previews consumed %d quota units", usage.DailyUsed)
	}
}

func TestUsageReflectsComposes(t *testing.T) {
	srv := newTestServer(t, nil)

	if w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"an article"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("compose: status %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(srv, http.MethodGet, "/api/v1/usage", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("usage: status %d: %s", w.Code, w.Body.String())
	}
	var usage struct {
		DailyUsed  int `json:"daily_used"`
		DailyLimit int `json:"daily_limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if usage.DailyUsed != 1 || usage.DailyLimit != 3 {
		t.Fatalf("usage %d/%d, want 1/3", usage.DailyUsed, usage.DailyLimit)
	}
}

func TestEmptyContentRejected(t *testing.T) {
	srv := newTestServer(t, nil)

	w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"   "}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestBearerKeyAndAnonymousGetSeparateQuotas(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Quota.DailyLimit = 1
	})

	if w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"first body"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("anonymous compose: status %d", w.Code)
	}
	if w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"second body"}`, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous should be exhausted, got %d", w.Code)
	}

	auth := map[string]string{"Authorization": "Bearer sk-test-12345"}
	if w := doJSON(srv, http.MethodPost, "/api/v1/threads", `{"content":"third body"}`, auth); w.Code != http.StatusOK {
		t.Fatalf("keyed compose should have its own quota, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminCacheClear(t *testing.T) {
	srv := newTestServer(t, nil)

	if w := doJSON(srv, http.MethodPost, "/api/v1/admin/cache/clear", "{}", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d, want 401", w.Code)
	}

	headers := map[string]string{"X-Admin-Token": "test-admin-token"}
	w := doJSON(srv, http.MethodPost, "/api/v1/admin/cache/clear", "{}", headers)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	// Clearing is bounded, not instantaneous: nodes may serve entries
	// from their in-process layer until the hot TTL elapses, and the
	// response advertises that bound.
	var body struct {
		Status      string `json:"status"`
		StaleWithin string `json:"stale_within"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode clear response: %v", err)
	}
	if body.Status != "ok" || body.StaleWithin != time.Minute.String() {
		t.Fatalf("unexpected clear response: %s", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	w := doJSON(srv, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}
