// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/authz"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

const (
	testJWTSecret = "api-test-secret-with-enough-entropy"
	testAPIKey    = "ingest.k3y-secret"
)

// testServer wires the full HTTP stack over an in-memory store.
type testServer struct {
	handler http.Handler
	store   *database.Memory
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T, limiter *InteractionLimiter) *testServer {
	t.Helper()
	store := database.NewMemory()
	logger := zerolog.Nop()
	cfg := feed.DefaultConfig()

	engine, err := feed.NewEngine(store, cfg, logger)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	recorder := feed.NewRecorder(store, feed.NopInvalidator{}, cfg, logger)
	service := feed.NewService(engine, recorder, nil, feed.NopInvalidator{}, logger)

	jwtManager, err := auth.NewJWTManager(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := auth.HashAPIKeySecret("k3y-secret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	apiKeys, err := auth.NewAPIKeyAuthenticator([]string{"ingest:" + hash})
	if err != nil {
		t.Fatal(err)
	}
	authMW := auth.NewMiddleware(auth.NewMultiAuthenticator(auth.NewJWTAuthenticator(jwtManager), apiKeys), nil)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(func() { enforcer.Close() })

	h := NewHandler(service, nil, nil, HealthSources{Version: "test", StoreDriver: "memory", CacheBackend: "none", EventTransport: "gochannel"})
	router := NewRouter(h, nil, authMW, authz.NewMiddleware(enforcer, nil), limiter)

	now := time.Now().UTC()
	for i := 0; i < 6; i++ {
		it := feed.Item{
			ID:              fmt.Sprintf("r%d", i),
			OwnerID:         fmt.Sprintf("creator%d", i%3),
			CategoryID:      fmt.Sprintf("cat%d", i%2),
			CreatedAt:       now.Add(-time.Duration(i+1) * time.Hour),
			DurationSeconds: 30,
			Eligible:        true,
		}
		if err := store.UpsertItem(context.Background(), it); err != nil {
			t.Fatal(err)
		}
	}
	hidden := feed.Item{ID: "gone", OwnerID: "creator0", CreatedAt: now, Eligible: false}
	if err := store.UpsertItem(context.Background(), hidden); err != nil {
		t.Fatal(err)
	}

	return &testServer{handler: router.SetupChi(), store: store, jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(userID, role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

// do sends a request; credential is a bearer token, "key:<api key>" or empty.
func (s *testServer) do(t *testing.T, method, path, credential, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	switch {
	case strings.HasPrefix(credential, "key:"):
		req.Header.Set(auth.APIKeyHeader, strings.TrimPrefix(credential, "key:"))
	case credential != "":
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func TestFeed_Trending_Anonymous(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/feed/trending?page_size=4&time_window=24h", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	env := decode(t, w)
	var page feed.Page
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if len(page.ItemIDs) != 4 || !page.HasMore {
		t.Errorf("got %d items has_more=%v, want 4 and true", len(page.ItemIDs), page.HasMore)
	}
	if page.Info.FeedType != feed.TypeTrending || page.Info.Window != "24h" {
		t.Errorf("feed_info = %+v", page.Info)
	}
	for _, id := range page.ItemIDs {
		if id == "gone" {
			t.Error("hidden reel served in trending")
		}
	}
	if env.Metadata.RequestID == "" {
		t.Error("metadata.request_id is empty")
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestFeed_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	viewer := s.token(t, "u1", models.RoleViewer)

	tests := []struct {
		name       string
		path       string
		credential string
		wantStatus int
		wantCode   string
	}{
		{"personalized anonymous", "/api/v1/feed/personalized", "", http.StatusUnauthorized, models.ErrCodeAuthRequired},
		{"following anonymous", "/api/v1/feed/following", "", http.StatusUnauthorized, models.ErrCodeAuthRequired},
		{"personalized service key", "/api/v1/feed/personalized", "key:" + testAPIKey, http.StatusForbidden, models.ErrCodeForbidden},
		{"unknown type", "/api/v1/feed/random", viewer, http.StatusNotFound, models.ErrCodeNotFound},
		{"page size too large", "/api/v1/feed/trending?page_size=500", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"page not a number", "/api/v1/feed/trending?page=two", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad window", "/api/v1/feed/trending?time_window=1y", "", http.StatusBadRequest, models.ErrCodeValidation},
		{"bad token", "/api/v1/feed/trending", "not-a-jwt", http.StatusUnauthorized, models.ErrCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, tt.credential, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestFeed_PersonalizedColdStart(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/api/v1/feed/personalized?page_size=5", s.token(t, "newbie", models.RoleViewer), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var page feed.Page
	if err := json.Unmarshal(decode(t, w).Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Info.Variant != "cold_start" {
		t.Errorf("feed_variant = %q, want cold_start", page.Info.Variant)
	}
	if len(page.ItemIDs) == 0 {
		t.Error("cold-start page is empty")
	}
}

func TestInteractions_LikeLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	viewer := s.token(t, "u1", models.RoleViewer)

	w := s.do(t, http.MethodPost, "/api/v1/reels/r1/like", viewer, "")
	if w.Code != http.StatusOK {
		t.Fatalf("like status = %d, body %s", w.Code, w.Body.String())
	}
	var resp models.InteractionResponse
	if err := json.Unmarshal(decode(t, w).Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.LikesCount == nil || *resp.LikesCount != 1 || resp.IsLiked == nil || !*resp.IsLiked {
		t.Errorf("like response = %+v", resp)
	}

	w = s.do(t, http.MethodPost, "/api/v1/reels/r1/like", viewer, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("second like status = %d, want 409", w.Code)
	}
	env := decode(t, w)
	if env.Error.Code != models.ErrCodeAlreadyLiked {
		t.Errorf("code = %q", env.Error.Code)
	}
	want := map[string]interface{}{"item_id": "r1", "likes_count": float64(1), "is_liked": true}
	if diff := cmp.Diff(want, env.Error.Details); diff != "" {
		t.Errorf("conflict details mismatch (-want +got):\n%s", diff)
	}

	if w := s.do(t, http.MethodDelete, "/api/v1/reels/r1/like", viewer, ""); w.Code != http.StatusOK {
		t.Errorf("unlike status = %d", w.Code)
	}
	w = s.do(t, http.MethodDelete, "/api/v1/reels/r1/like", viewer, "")
	if w.Code != http.StatusConflict || errorCode(t, w) != models.ErrCodeNotLiked {
		t.Errorf("second unlike = %d %s", w.Code, w.Body.String())
	}
}

func TestInteractions_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	viewer := s.token(t, "u1", models.RoleViewer)

	tests := []struct {
		name       string
		method     string
		path       string
		credential string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"like anonymous", http.MethodPost, "/api/v1/reels/r1/like", "", "", http.StatusUnauthorized, models.ErrCodeAuthRequired},
		{"like as service", http.MethodPost, "/api/v1/reels/r1/like", "key:" + testAPIKey, "", http.StatusForbidden, models.ErrCodeForbidden},
		{"like unknown reel", http.MethodPost, "/api/v1/reels/missing/like", viewer, "", http.StatusNotFound, models.ErrCodeNotEligible},
		{"like hidden reel", http.MethodPost, "/api/v1/reels/gone/like", viewer, "", http.StatusNotFound, models.ErrCodeNotEligible},
		{"view negative watch", http.MethodPost, "/api/v1/reels/r1/view", viewer, `{"watch_seconds":-3}`, http.StatusBadRequest, models.ErrCodeValidation},
		{"view malformed body", http.MethodPost, "/api/v1/reels/r1/view", viewer, `{"watch_seconds":`, http.StatusBadRequest, models.ErrCodeValidation},
		{"self follow", http.MethodPost, "/api/v1/users/u1/follow", viewer, "", http.StatusBadRequest, models.ErrCodeValidation},
		{"unfollow not following", http.MethodDelete, "/api/v1/users/creator1/follow", viewer, "", http.StatusConflict, models.ErrCodeNotFollowing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.credential, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestInteractions_ViewShareFollow(t *testing.T) {
	s := newTestServer(t, nil)
	viewer := s.token(t, "u1", models.RoleViewer)

	w := s.do(t, http.MethodPost, "/api/v1/reels/r2/view", viewer, `{"watch_seconds":12}`)
	if w.Code != http.StatusOK {
		t.Fatalf("view status = %d, body %s", w.Code, w.Body.String())
	}
	var view models.InteractionResponse
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.ViewCounted == nil || !*view.ViewCounted || *view.ViewsCount != 1 {
		t.Errorf("view response = %+v", view)
	}

	// Shares are counted for anonymous callers too.
	for _, cred := range []string{"", viewer} {
		if w := s.do(t, http.MethodPost, "/api/v1/reels/r2/share", cred, ""); w.Code != http.StatusOK {
			t.Errorf("share(%q) status = %d, body %s", cred, w.Code, w.Body.String())
		}
	}
	it, err := s.store.GetItem(context.Background(), "r2")
	if err != nil {
		t.Fatal(err)
	}
	if it.Shares != 2 {
		t.Errorf("shares = %d, want 2", it.Shares)
	}

	w = s.do(t, http.MethodPost, "/api/v1/users/creator1/follow", viewer, "")
	if w.Code != http.StatusOK {
		t.Fatalf("follow status = %d, body %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodGet, "/api/v1/feed/following", viewer, "")
	if w.Code != http.StatusOK {
		t.Fatalf("following status = %d, body %s", w.Code, w.Body.String())
	}
	var page feed.Page
	if err := json.Unmarshal(decode(t, w).Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Info.FollowedCount == nil || *page.Info.FollowedCount != 1 {
		t.Errorf("followed_count = %v, want 1", page.Info.FollowedCount)
	}
	for _, it := range page.Items {
		if it.OwnerID != "creator1" {
			t.Errorf("following feed served %s from %s", it.ID, it.OwnerID)
		}
	}

	w = s.do(t, http.MethodPost, "/api/v1/users/creator1/follow", viewer, "")
	if w.Code != http.StatusConflict || errorCode(t, w) != models.ErrCodeAlreadyFollowing {
		t.Errorf("second follow = %d %s", w.Code, w.Body.String())
	}
}

func TestAdmin_Authorization(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.token(t, "ops", models.RoleAdmin)
	viewer := s.token(t, "u1", models.RoleViewer)
	service := "key:" + testAPIKey

	tests := []struct {
		name       string
		path       string
		credential string
		body       string
		wantStatus int
	}{
		{"invalidate anonymous", "/api/v1/admin/invalidate", "", `{"scope":"global"}`, http.StatusUnauthorized},
		{"invalidate viewer", "/api/v1/admin/invalidate", viewer, `{"scope":"global"}`, http.StatusForbidden},
		{"invalidate service", "/api/v1/admin/invalidate", service, `{"scope":"global"}`, http.StatusForbidden},
		{"invalidate admin", "/api/v1/admin/invalidate", admin, `{"scope":"user","id":"u1"}`, http.StatusAccepted},
		{"invalidate missing id", "/api/v1/admin/invalidate", admin, `{"scope":"user"}`, http.StatusBadRequest},
		{"invalidate unknown scope", "/api/v1/admin/invalidate", admin, `{"scope":"tenant"}`, http.StatusBadRequest},
		{"upload viewer", "/api/v1/admin/items", viewer, `{"id":"n1","owner_id":"creator1"}`, http.StatusForbidden},
		{"upload service", "/api/v1/admin/items", service, `{"id":"n1","owner_id":"creator1","category_id":"cat1","duration_seconds":20}`, http.StatusCreated},
		{"upload invalid", "/api/v1/admin/items", service, `{"id":"bad id","owner_id":"creator1"}`, http.StatusBadRequest},
		{"hide service", "/api/v1/admin/items/r3/hide", service, "", http.StatusOK},
		{"hide unknown", "/api/v1/admin/items/nope/hide", admin, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, tt.credential, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	it, err := s.store.GetItem(context.Background(), "n1")
	if err != nil {
		t.Fatalf("uploaded item missing: %v", err)
	}
	if !it.Eligible || it.CategoryID != "cat1" {
		t.Errorf("uploaded item = %+v", it)
	}
	hidden, err := s.store.GetItem(context.Background(), "r3")
	if err != nil {
		t.Fatal(err)
	}
	if hidden.Eligible {
		t.Error("r3 still eligible after hide")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(t, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		var resp models.HealthResponse
		if err := json.Unmarshal(decode(t, w).Data, &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Status != "healthy" || resp.Store != "memory" || resp.Version != "test" {
			t.Errorf("%s = %+v", path, resp)
		}
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return fmt.Errorf("connection refused") }

func TestHealth_Degraded(t *testing.T) {
	stopped := make(chan struct{})
	h := NewHandler(nil, nil, nil, HealthSources{Store: failingPinger{}, EventsRunning: stopped})
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(decode(t, w).Data, &resp); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"store": "connection refused", "events": "not running"}
	if diff := cmp.Diff(want, resp.Checks); diff != "" {
		t.Errorf("checks mismatch (-want +got):\n%s", diff)
	}
}

func TestWebSocket_RequiresUser(t *testing.T) {
	s := newTestServer(t, nil)
	if w := s.do(t, http.MethodGet, "/ws", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /ws status = %d, want 401", w.Code)
	}
	// No hub configured in tests.
	if w := s.do(t, http.MethodGet, "/ws", s.token(t, "u1", models.RoleViewer), ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ws without hub status = %d, want 503", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/api/v1/feed/trending", "", "")
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}
