package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "sweep run abc not found",
		Instance: "/api/v1/sweep/devices",
	})

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q, want %q", ct, "application/problem+json")
	}

	var p Problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if p.Type != ProblemTypeNotFound {
		t.Errorf("type = %q, want %q", p.Type, ProblemTypeNotFound)
	}
	if p.Detail != "sweep run abc not found" {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		status   int
		wantType string
	}{
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing", "/t") }, http.StatusNotFound, ProblemTypeNotFound},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid", "/t") }, http.StatusBadRequest, ProblemTypeBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no token", "/t") }, http.StatusUnauthorized, ProblemTypeUnauthorized},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "taken", "/t") }, http.StatusConflict, ProblemTypeConflict},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "broke", "/t") }, http.StatusInternalServerError, ProblemTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var p Problem
			json.NewDecoder(w.Body).Decode(&p)
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
		})
	}
}

func TestWriteProblem_OmitsEmptyOptionalFields(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{
		Type:   ProblemTypeInternal,
		Title:  "Internal Server Error",
		Status: 500,
	})

	var raw map[string]any
	json.NewDecoder(w.Body).Decode(&raw)

	if _, ok := raw["detail"]; ok {
		t.Error("expected detail to be omitted when empty")
	}
	if _, ok := raw["instance"]; ok {
		t.Error("expected instance to be omitted when empty")
	}
}
