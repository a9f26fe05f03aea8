package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes status, header and body", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, 201, map[string]string{"slug": "abc123"})

		if rec.Code != 201 {
			t.Errorf("status = %d, want 201", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if body["slug"] != "abc123" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("encodes slices", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, 200, []int{1, 2, 3})

		var body []int
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if len(body) != 3 {
			t.Errorf("body = %v", body)
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("writes error envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteError(rec, 409, "conflict", "slug taken", map[string]string{"hint": "pick another"})

		if rec.Code != 409 {
			t.Errorf("status = %d, want 409", rec.Code)
		}

		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if body.Error != "conflict" {
			t.Errorf("Error = %q", body.Error)
		}
		if body.Message != "slug taken" {
			t.Errorf("Message = %q", body.Message)
		}
		if body.Details == nil {
			t.Error("Details missing")
		}
	})

	t.Run("omits empty message and details", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteError(rec, 404, "not_found", "", nil)

		raw := rec.Body.String()
		if want := `{"error":"not_found"}`; raw != want+"\n" {
			t.Errorf("body = %q, want %q", raw, want)
		}
	})
}
