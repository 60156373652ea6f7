package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evanlind/taktplan/internal/adapters/server/common"
)

type noopScheduleService struct{}

func (noopScheduleService) CaptureSchedule(context.Context, common.CaptureScheduleRequest) (common.ScheduleCapture, error) {
	return common.ScheduleCapture{}, nil
}

func (noopScheduleService) TimelineLayout(context.Context, common.LayoutRequest) (common.LayoutCapture, error) {
	return common.LayoutCapture{}, nil
}

func (noopScheduleService) SuggestStartDate(context.Context, string) (common.SuggestionResult, error) {
	return common.SuggestionResult{}, nil
}

func (noopScheduleService) ValidateSchedule(context.Context, common.ValidateScheduleRequest) (common.ValidationResult, error) {
	return common.ValidationResult{}, nil
}

func (noopScheduleService) UpdateActivitySchedule(context.Context, common.UpdateScheduleRequest) (common.ActivityView, error) {
	return common.ActivityView{}, nil
}

func TestNewHandlerAppliesDefaults(t *testing.T) {
	handler, cfg, err := NewHandler(Config{}, Dependencies{Schedule: noopScheduleService{}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	if handler == nil {
		t.Fatalf("handler is nil")
	}
	if cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("bind = %q", cfg.HTTPBind)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("endpoints = %q %q", cfg.APIEndpoint, cfg.MCPEndpoint)
	}
	if cfg.ServerName != "taktplan" || cfg.ServerVersion != "dev" {
		t.Fatalf("identity = %q %q", cfg.ServerName, cfg.ServerVersion)
	}
}

func TestNewHandlerRejectsBadConfig(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatalf("expected error for missing schedule dependency")
	}
	cfg := Config{APIEndpoint: "/same", MCPEndpoint: "same/"}
	if _, _, err := NewHandler(cfg, Dependencies{Schedule: noopScheduleService{}}); err == nil {
		t.Fatalf("expected error for colliding endpoints")
	}
}

func TestHandlerServesHealthAndAPI(t *testing.T) {
	handler, _, err := NewHandler(Config{}, Dependencies{Schedule: noopScheduleService{}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if got := rec.Body.String(); got != `{"status":"ok"}`+"\n" {
			t.Fatalf("%s body = %q", path, got)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/schedule", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("api status = %d body = %s", rec.Code, rec.Body)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in, fallback, want string
	}{
		{"", "/api/v1", "/api/v1"},
		{"api", "/api/v1", "/api"},
		{"/custom/", "/api/v1", "/custom"},
		{"//", "/api/v1", "/api/v1"},
	}
	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
