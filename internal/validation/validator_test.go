// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/reelfeed/internal/models"
)

func ptr(f float64) *float64 { return &f }

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

func TestValidateStruct_ItemUpload(t *testing.T) {
	tests := []struct {
		name      string
		req       models.ItemUploadRequest
		wantField string
	}{
		{"valid", models.ItemUploadRequest{ID: "v1", OwnerID: "m1", CategoryID: "electronics", DurationSeconds: 30}, ""},
		{"no category", models.ItemUploadRequest{ID: "v1", OwnerID: "m1"}, ""},
		{"missing id", models.ItemUploadRequest{OwnerID: "m1"}, "id"},
		{"owner with colon", models.ItemUploadRequest{ID: "v1", OwnerID: "m:1"}, "owner_id"},
		{"category with space", models.ItemUploadRequest{ID: "v1", OwnerID: "m1", CategoryID: "home decor"}, "category_id"},
		{"negative duration", models.ItemUploadRequest{ID: "v1", OwnerID: "m1", DurationSeconds: -1}, "duration_seconds"},
		{"id too long", models.ItemUploadRequest{ID: strings.Repeat("a", 65), OwnerID: "m1"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if got := verr.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestValidateStruct_FeedQuery(t *testing.T) {
	tests := []struct {
		name    string
		q       models.FeedQuery
		wantTag string
	}{
		{"defaults", models.FeedQuery{}, ""},
		{"full", models.FeedQuery{Page: 3, PageSize: 100, TimeWindow: "30d"}, ""},
		{"page size over max", models.FeedQuery{PageSize: 101}, "max"},
		{"negative page", models.FeedQuery{Page: -1}, "min"},
		{"unknown window", models.FeedQuery{TimeWindow: "1y"}, "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.q)
			switch {
			case tt.wantTag == "" && verr != nil:
				t.Errorf("ValidateStruct() = %v", verr)
			case tt.wantTag != "" && verr == nil:
				t.Error("ValidateStruct() = nil, want error")
			case tt.wantTag != "" && verr.Errors()[0].Tag() != tt.wantTag:
				t.Errorf("tag = %q, want %q", verr.Errors()[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_View(t *testing.T) {
	if verr := ValidateStruct(&models.ViewRequest{}); verr != nil {
		t.Errorf("nil watch rejected: %v", verr)
	}
	if verr := ValidateStruct(&models.ViewRequest{WatchSeconds: ptr(0)}); verr != nil {
		t.Errorf("zero watch rejected: %v", verr)
	}
	if verr := ValidateStruct(&models.ViewRequest{WatchSeconds: ptr(-3)}); verr == nil {
		t.Error("negative watch accepted")
	}
}

func TestValidateStruct_Invalidate(t *testing.T) {
	tests := []struct {
		req models.InvalidateRequest
		ok  bool
	}{
		{models.InvalidateRequest{Scope: "user", ID: "u1"}, true},
		{models.InvalidateRequest{Scope: "global"}, true},
		{models.InvalidateRequest{Scope: "tenant", ID: "x"}, false},
		{models.InvalidateRequest{}, false},
		{models.InvalidateRequest{Scope: "item", ID: "bad*id"}, false},
	}
	for _, tt := range tests {
		if got := ValidateStruct(&tt.req) == nil; got != tt.ok {
			t.Errorf("ValidateStruct(%+v) ok = %v, want %v", tt.req, got, tt.ok)
		}
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	verr := ValidateStruct(&models.ItemUploadRequest{ID: "v1"})
	if verr == nil {
		t.Fatal("expected error")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != models.ErrCodeValidation {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "owner_id is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "owner_id" || apiErr.Details["tag"] != "required" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&models.ItemUploadRequest{DurationSeconds: -1})
	if verr == nil {
		t.Fatal("expected error")
	}
	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %v, want 3 entries", apiErr.Details["fields"])
	}
	for _, name := range []string{"id", "owner_id", "duration_seconds"} {
		if !strings.Contains(apiErr.Message, name) {
			t.Errorf("Message %q does not mention %s", apiErr.Message, name)
		}
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != models.ErrCodeValidation || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
}

func TestErrorMessages(t *testing.T) {
	verr := ValidateStruct(&models.FeedQuery{PageSize: 500, TimeWindow: "1y"})
	if verr == nil {
		t.Fatal("expected error")
	}
	want := map[string]string{
		"PageSize":   "PageSize must be at most 100",
		"TimeWindow": "TimeWindow must be one of: 24h 7d 30d",
	}
	for _, e := range verr.Errors() {
		if msg, ok := want[e.Field()]; ok && e.Error() != msg {
			t.Errorf("%s message = %q, want %q", e.Field(), e.Error(), msg)
		}
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("got %d errors, want 2", len(verr.Errors()))
	}
}
