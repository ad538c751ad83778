package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/encoding"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/scheduler"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/storage"
)

// responseTimeScorer reads the response-time feature as the model scalar,
// so tests can steer the predicted interval per item.
type responseTimeScorer struct{}

func (responseTimeScorer) Infer(x []float64) (float64, error) {
	return x[2], nil
}

type identityScaler struct{}

func (identityScaler) Transform(x []float64) ([]float64, error) {
	return x, nil
}

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	difficulty := encoding.New([]string{"easy", "hard", "medium"})
	subject := encoding.New([]string{"art", "history", "language", "math", "science"})
	svc, err := scheduler.NewService(responseTimeScorer{}, identityScaler{}, difficulty, subject)
	if err != nil {
		t.Fatalf("Failed to construct service: %v", err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(svc, db, 30, logger)
	srv.now = func() time.Time { return testNow }
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)

	t.Run("root answers the banner", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodGet, "/", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, but got %d", rec.Code)
		}
		if body["message"] == "" {
			t.Error("Expected a banner message")
		}
	})

	t.Run("unknown path is a 404", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/nope", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, but got %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec, body := do(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, but got %d", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected status healthy, but got %v", body["status"])
	}
	if body["model_loaded"] != true {
		t.Errorf("Expected model_loaded true, but got %v", body["model_loaded"])
	}
}

func TestPredict(t *testing.T) {
	srv := newTestServer(t)

	request := map[string]interface{}{
		"item_id":                "math_001",
		"difficulty":             "medium",
		"subject":                "math",
		"response_time":          0.5,
		"previous_attempts":      3,
		"success_rate":           0.7,
		"days_since_last_review": 5.0,
		"study_streak":           10,
		"current_accuracy":       0.8,
	}

	rec, body := do(t, srv, http.MethodPost, "/predict", request)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d: %v", rec.Code, body)
	}
	// scalar 0.5 -> 1 + 0.5*89 = 45.5 days, medium keeps it
	if body["optimal_interval_days"] != 45.5 {
		t.Errorf("Expected interval 45.5, but got %v", body["optimal_interval_days"])
	}
	// June 1 + 45.5 days = July 16 12:00
	if body["next_review_date"] != "2025-07-16" {
		t.Errorf("Expected next review on 2025-07-16, but got %v", body["next_review_date"])
	}
	if body["success"] != true {
		t.Errorf("Expected success true, but got %v", body["success"])
	}
}

func TestPredictRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	t.Run("wrong method", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/predict", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, but got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, but got %d", rec.Code)
		}
	})

	t.Run("missing difficulty", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/predict", map[string]interface{}{
			"subject": "math",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, but got %d", rec.Code)
		}
		if body["success"] != false {
			t.Errorf("Expected success false, but got %v", body["success"])
		}
	})
}

func TestPredictModelUnavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(nil, nil, 30, logger)

	rec, _ := do(t, srv, http.MethodPost, "/predict", map[string]interface{}{
		"difficulty": "medium",
		"subject":    "math",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, but got %d", rec.Code)
	}

	_, health := do(t, srv, http.MethodGet, "/health", nil)
	if health["model_loaded"] != false {
		t.Errorf("Expected model_loaded false, but got %v", health["model_loaded"])
	}
}

func scheduleItems() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"item_id": "slow", "difficulty": "medium", "subject": "math",
			"response_time": 0.30, "success_rate": 0.7,
		},
		{
			"item_id": "steady", "difficulty": "easy", "subject": "art",
			"response_time": 0.10, "success_rate": 0.7,
		},
		{
			"item_id": "quick", "difficulty": "medium", "subject": "science",
			"response_time": 0.05, "success_rate": 0.7,
		},
	}
}

func TestSchedule(t *testing.T) {
	srv := newTestServer(t)

	// Intervals: slow 27.7d (beyond horizon), steady 11.88d, quick 5.45d.
	rec, body := do(t, srv, http.MethodPost, "/schedule", map[string]interface{}{
		"items":      scheduleItems(),
		"days_ahead": 14,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d: %v", rec.Code, body)
	}
	if body["total_items"] != float64(2) {
		t.Errorf("Expected 2 scheduled items, but got %v", body["total_items"])
	}

	entries, ok := body["schedule"].([]interface{})
	if !ok || len(entries) != 2 {
		t.Fatalf("Expected 2 schedule entries, but got %v", body["schedule"])
	}
	first := entries[0].(map[string]interface{})
	second := entries[1].(map[string]interface{})
	if first["item_id"] != "quick" || second["item_id"] != "steady" {
		t.Errorf("Expected [quick steady], but got [%v %v]", first["item_id"], second["item_id"])
	}
	if first["priority"].(float64) > second["priority"].(float64) {
		t.Error("Expected schedule sorted ascending by priority")
	}
}

func TestScheduleDefaultHorizon(t *testing.T) {
	srv := newTestServer(t)

	// Without days_ahead the server default of 30 applies, so even the
	// 27.7-day item fits.
	rec, body := do(t, srv, http.MethodPost, "/schedule", map[string]interface{}{
		"items": scheduleItems(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d: %v", rec.Code, body)
	}
	if body["total_items"] != float64(3) {
		t.Errorf("Expected 3 scheduled items with the default horizon, but got %v", body["total_items"])
	}
}

func TestScheduleRejectsEmptyBatch(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodPost, "/schedule", map[string]interface{}{
		"items": []interface{}{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, but got %d", rec.Code)
	}
}

func TestUpdateEaseFactor(t *testing.T) {
	srv := newTestServer(t)

	rec, body := do(t, srv, http.MethodPost, "/update_ease_factor", map[string]interface{}{
		"item_id":      "math_001",
		"current_ease": 2.0,
		"performance":  0.9,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, but got %d: %v", rec.Code, body)
	}
	if body["old_ease_factor"] != 2.0 {
		t.Errorf("Expected old ease 2.0, but got %v", body["old_ease_factor"])
	}
	// min(2.0*1.1, 2.5) = 2.2
	if body["new_ease_factor"] != 2.2 {
		t.Errorf("Expected new ease 2.2, but got %v", body["new_ease_factor"])
	}

	t.Run("adjustment is recorded", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodGet, "/ease_history?item_id=math_001", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, but got %d", rec.Code)
		}
		history, ok := body["history"].([]interface{})
		if !ok || len(history) != 1 {
			t.Fatalf("Expected 1 history row, but got %v", body["history"])
		}
		row := history[0].(map[string]interface{})
		if row["new_ease"] != 2.2 {
			t.Errorf("Expected recorded new ease 2.2, but got %v", row["new_ease"])
		}
	})
}

func TestUpdateEaseFactorRejectsMissingEase(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodPost, "/update_ease_factor", map[string]interface{}{
		"performance": 0.9,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, but got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t)

	_, _ = do(t, srv, http.MethodPost, "/predict", map[string]interface{}{
		"item_id":       "math_001",
		"difficulty":    "medium",
		"subject":       "math",
		"response_time": 0.5,
		"success_rate":  0.7,
	})

	t.Run("returns logged predictions", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodGet, "/history", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, but got %d", rec.Code)
		}
		if body["count"] != float64(1) {
			t.Errorf("Expected 1 logged prediction, but got %v", body["count"])
		}
		predictions := body["predictions"].([]interface{})
		row := predictions[0].(map[string]interface{})
		if row["item_id"] != "math_001" {
			t.Errorf("Expected item math_001, but got %v", row["item_id"])
		}
		if row["interval_days"] != 45.5 {
			t.Errorf("Expected interval 45.5, but got %v", row["interval_days"])
		}
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/history?limit=zero", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, but got %d", rec.Code)
		}
	})
}
