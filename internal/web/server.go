package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/domain"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/scheduler"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/storage"
)

const dateLayout = "2006-01-02"

// Server holds the dependencies for the HTTP server.
type Server struct {
	svc       *scheduler.Service
	db        *storage.DB
	router    *http.ServeMux
	validate  *validator.Validate
	logger    *slog.Logger
	daysAhead int
	now       func() time.Time
}

// NewServer creates and configures a new server. daysAhead is the default
// schedule horizon used when a request omits one.
func NewServer(svc *scheduler.Service, db *storage.DB, daysAhead int, logger *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		db:        db,
		router:    http.NewServeMux(),
		validate:  validator.New(),
		logger:    logger,
		daysAhead: daysAhead,
		now:       time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface. Every request gets an
// id and an access log line.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	start := time.Now()
	s.router.ServeHTTP(w, r)
	s.logger.Info("request",
		"id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"duration", time.Since(start),
	)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex())
	s.router.HandleFunc("/health", s.handleHealth())
	s.router.HandleFunc("/predict", s.handlePredict())
	s.router.HandleFunc("/schedule", s.handleSchedule())
	s.router.HandleFunc("/update_ease_factor", s.handleUpdateEaseFactor())
	s.router.HandleFunc("/history", s.handleHistory())
	s.router.HandleFunc("/ease_history", s.handleEaseHistory())
}

// predictionRequest is a single-item prediction. It is a StudyItem without
// the mandatory identifier; item_id is optional here and only used for the
// prediction log.
type predictionRequest struct {
	ItemID              string   `json:"item_id"`
	Difficulty          string   `json:"difficulty" validate:"required"`
	Subject             string   `json:"subject" validate:"required"`
	ResponseTime        float64  `json:"response_time"`
	PreviousAttempts    int      `json:"previous_attempts"`
	SuccessRate         float64  `json:"success_rate"`
	DaysSinceLastReview float64  `json:"days_since_last_review"`
	StudyStreak         int      `json:"study_streak"`
	CurrentAccuracy     float64  `json:"current_accuracy"`
	EaseFactor          *float64 `json:"ease_factor"`
}

func (p predictionRequest) item() domain.StudyItem {
	return domain.StudyItem{
		ItemID:              p.ItemID,
		Difficulty:          p.Difficulty,
		Subject:             p.Subject,
		ResponseTime:        p.ResponseTime,
		PreviousAttempts:    p.PreviousAttempts,
		SuccessRate:         p.SuccessRate,
		DaysSinceLastReview: p.DaysSinceLastReview,
		StudyStreak:         p.StudyStreak,
		CurrentAccuracy:     p.CurrentAccuracy,
		EaseFactor:          p.EaseFactor,
	}
}

type scheduleRequest struct {
	Items     []domain.StudyItem `json:"items" validate:"required,min=1,dive"`
	DaysAhead int                `json:"days_ahead"`
}

type easeFactorRequest struct {
	ItemID      string  `json:"item_id"`
	CurrentEase float64 `json:"current_ease" validate:"gt=0"`
	Performance float64 `json:"performance"`
}

// handleIndex answers the liveness banner on exactly "/".
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			s.writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Mnemic spaced repetition API is running",
		})
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":       "healthy",
			"model_loaded": s.svc.Ready(),
		})
	}
}

// handlePredict predicts the optimal review interval for a single item.
func (s *Server) handlePredict() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req predictionRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		interval, err := s.svc.Predict(req.item())
		if err != nil {
			s.writePredictionError(w, err)
			return
		}

		nextReview := s.now().Add(time.Duration(interval * float64(24*time.Hour)))

		if s.db != nil && req.ItemID != "" {
			if err := s.db.InsertPrediction(req.ItemID, req.Subject, req.Difficulty, interval); err != nil {
				// History is observational; a failed write must not fail
				// the prediction.
				s.logger.Error("failed to log prediction", "item_id", req.ItemID, "error", err)
			}
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"optimal_interval_days": round(interval, 1),
			"next_review_date":      nextReview.Format(dateLayout),
			"success":               true,
		})
	}
}

// handleSchedule builds a prioritized study schedule for a batch of items.
func (s *Server) handleSchedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		daysAhead := req.DaysAhead
		if daysAhead <= 0 {
			daysAhead = s.daysAhead
		}

		entries, err := s.svc.BuildSchedule(req.Items, daysAhead, s.now())
		if err != nil {
			s.writePredictionError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"schedule":    entries,
			"total_items": len(entries),
			"success":     true,
		})
	}
}

// handleUpdateEaseFactor adjusts an ease factor from a performance score.
func (s *Server) handleUpdateEaseFactor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req easeFactorRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}

		newEase := scheduler.UpdateEaseFactor(req.CurrentEase, req.Performance)

		if s.db != nil && req.ItemID != "" {
			if err := s.db.InsertEaseUpdate(req.ItemID, req.CurrentEase, newEase, req.Performance); err != nil {
				s.logger.Error("failed to log ease update", "item_id", req.ItemID, "error", err)
			}
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"old_ease_factor": req.CurrentEase,
			"new_ease_factor": round(newEase, 2),
			"success":         true,
		})
	}
}

type predictionHistoryEntry struct {
	ItemID       string  `json:"item_id"`
	Subject      string  `json:"subject"`
	Difficulty   string  `json:"difficulty"`
	IntervalDays float64 `json:"interval_days"`
	CreatedAt    string  `json:"created_at"`
}

// handleHistory returns the newest logged predictions.
func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.db == nil {
			s.writeError(w, http.StatusNotFound, "history is not enabled")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		records, err := s.db.RecentPredictions(limit)
		if err != nil {
			s.logger.Error("failed to read prediction history", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to read history")
			return
		}

		entries := make([]predictionHistoryEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, predictionHistoryEntry{
				ItemID:       rec.ItemID,
				Subject:      rec.Subject,
				Difficulty:   rec.Difficulty,
				IntervalDays: rec.IntervalDays,
				CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
			})
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"predictions": entries,
			"count":       len(entries),
			"success":     true,
		})
	}
}

type easeHistoryEntry struct {
	OldEase     float64 `json:"old_ease"`
	NewEase     float64 `json:"new_ease"`
	Performance float64 `json:"performance"`
	CreatedAt   string  `json:"created_at"`
}

// handleEaseHistory returns every ease adjustment recorded for one item.
func (s *Server) handleEaseHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.db == nil {
			s.writeError(w, http.StatusNotFound, "history is not enabled")
			return
		}

		itemID := r.URL.Query().Get("item_id")
		if itemID == "" {
			s.writeError(w, http.StatusBadRequest, "item_id is required")
			return
		}

		records, err := s.db.EaseHistory(itemID)
		if err != nil {
			s.logger.Error("failed to read ease history", "item_id", itemID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to read history")
			return
		}

		entries := make([]easeHistoryEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, easeHistoryEntry{
				OldEase:     rec.OldEase,
				NewEase:     rec.NewEase,
				Performance: rec.Performance,
				CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
			})
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"item_id": itemID,
			"history": entries,
			"success": true,
		})
	}
}

// decodeRequest handles method, body, and validation errors in one place.
// It reports false when a response has already been written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// writePredictionError maps pipeline failures to status codes. A missing
// model is a service condition, not a caller mistake.
func (s *Server) writePredictionError(w http.ResponseWriter, err error) {
	if errors.Is(err, scheduler.ErrModelUnavailable) {
		s.writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	s.logger.Error("prediction failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "prediction failed: "+err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   msg,
		"success": false,
	})
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
