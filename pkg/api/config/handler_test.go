package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vendor_recon/pkg/core/agent"
)

func TestHandleConfig(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{ActiveProvider: "openai"}))

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest("GET", "/api/config", nil))

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ActiveProvider != "openai" {
		t.Errorf("active provider = %q", resp.ActiveProvider)
	}
	if len(resp.Available) != 2 {
		t.Errorf("available = %v", resp.Available)
	}
}

func TestHandleSwitch(t *testing.T) {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "openai"})
	h := NewHandler(mgr)

	rec := httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest("POST", "/api/config/switch", strings.NewReader(`{"provider":"gemini"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if mgr.GetActiveProvider() != "gemini" {
		t.Errorf("provider not switched: %q", mgr.GetActiveProvider())
	}

	rec = httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest("POST", "/api/config/switch", strings.NewReader(`{"provider":"nope"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown provider should 400, got %d", rec.Code)
	}
}
