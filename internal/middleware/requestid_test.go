// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/reelfeed/internal/logging"
)

func serveRequestID(t *testing.T, upstream string) (header, inContext string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = logging.RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/trending", nil)
	if upstream != "" {
		req.Header.Set(RequestIDHeader, upstream)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), inContext
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	header, ctxID := serveRequestID(t, "")
	if header == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if header != ctxID {
		t.Errorf("context ID %q differs from header %q", ctxID, header)
	}
	if len(header) != 36 {
		t.Errorf("expected UUID format, got %q", header)
	}
}

func TestRequestID_PreservesUpstreamID(t *testing.T) {
	header, ctxID := serveRequestID(t, "proxy-req-42")
	if header != "proxy-req-42" || ctxID != "proxy-req-42" {
		t.Errorf("got header %q ctx %q, want upstream ID", header, ctxID)
	}
}

func TestRequestID_ReplacesUnsafeUpstreamID(t *testing.T) {
	for _, upstream := range []string{"with space", "line\nbreak", strings.Repeat("x", 129)} {
		header, _ := serveRequestID(t, upstream)
		if header == upstream {
			t.Errorf("unsafe upstream ID %q was kept", upstream)
		}
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, _ := serveRequestID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %s", id)
		}
		seen[id] = true
	}
}
