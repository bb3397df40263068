// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package authz

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"viewer", "/api/v1/feed/personalized", "read", true},
		{"viewer", "/api/v1/feed/trending", "write", false},
		{"viewer", "/api/v1/reels/v1/like", "write", true},
		{"viewer", "/api/v1/reels/v1/like", "delete", true},
		{"viewer", "/api/v1/users/m1/follow", "delete", true},
		{"viewer", "/ws", "read", true},
		{"viewer", "/api/v1/admin/items", "write", false},
		{"viewer", "/api/v1/admin/invalidate", "write", false},
		{"service", "/api/v1/admin/items", "write", true},
		{"service", "/api/v1/admin/items/v9/hide", "write", true},
		{"service", "/api/v1/admin/invalidate", "write", false},
		{"service", "/api/v1/feed/trending", "read", true},
		{"admin", "/api/v1/admin/invalidate", "write", true},
		{"admin", "/api/v1/admin/items/v9/hide", "write", true},
		{"admin", "/api/v1/reels/v1/share", "write", true},
		{"stranger", "/api/v1/feed/trending", "read", false},
	}

	for _, tt := range tests {
		got, err := e.Enforce(tt.role, tt.object, tt.action)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) error = %v", tt.role, tt.object, tt.action, err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
		}
	}
}

func TestEnforcer_EnforceRoles(t *testing.T) {
	e := newTestEnforcer(t)

	if ok, _ := e.EnforceRoles(nil, "/api/v1/feed/following", "read"); !ok {
		t.Error("subject without roles did not fall back to viewer")
	}
	if ok, _ := e.EnforceRoles([]string{"stranger", "admin"}, "/api/v1/admin/invalidate", "write"); !ok {
		t.Error("any matching role should allow")
	}
	if ok, _ := e.EnforceRoles([]string{"stranger"}, "/api/v1/feed/following", "read"); ok {
		t.Error("unknown role allowed")
	}
}

func TestEnforcer_FilePolicy(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(policy, []byte("p, viewer, /api/v1/feed/trending, read\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := NewEnforcer(&EnforcerConfig{PolicyPath: policy})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	defer e.Close()

	if ok, _ := e.Enforce("viewer", "/api/v1/feed/trending", "read"); !ok {
		t.Error("file policy rule not applied")
	}
	if ok, _ := e.Enforce("viewer", "/api/v1/feed/personalized", "read"); ok {
		t.Error("embedded policy leaked into file policy")
	}

	if _, err := NewEnforcer(&EnforcerConfig{PolicyPath: filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("missing policy file accepted")
	}
}

func TestLoadEmbeddedPolicy_Malformed(t *testing.T) {
	e := newTestEnforcer(t)
	if err := loadEmbeddedPolicy(e.enforcer, "p, viewer, /x\n"); err == nil {
		t.Error("malformed line accepted")
	}
}
