package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/classify"
	"github.com/JakeFAU/topic-classifier/internal/storage"
	"github.com/JakeFAU/topic-classifier/internal/store"
)

type predictRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

type predictResponse struct {
	Label           string            `json:"label"`
	WordFrequencies []store.WordCount `json:"word_frequencies"`
	FromCache       bool              `json:"from_cache"`
}

type batchRequest struct {
	URLs   []string `json:"urls"`
	UserID string   `json:"user_id"`
}

type batchItemResponse struct {
	URL       string `json:"url"`
	Label     string `json:"label,omitempty"`
	FromCache bool   `json:"from_cache"`
	Error     string `json:"error,omitempty"`
}

type batchResponse struct {
	BatchID string              `json:"batch_id"`
	Results []batchItemResponse `json:"results"`
	Grouped map[string][]string `json:"grouped"`
}

type retrainRequest struct {
	URLs   []string `json:"urls"`
	UserID string   `json:"user_id"`
}

type retrainResponse struct {
	Documents int    `json:"documents"`
	Message   string `json:"message"`
}

type historyRecordResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	BatchID   string    `json:"batch_id,omitempty"`
}

type contentRequest struct {
	URL string `json:"url"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result, err := s.engine.Predict(r.Context(), req.URL, req.UserID)
	if err != nil {
		s.writeClassifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Label:           result.Label,
		WordFrequencies: result.WordFrequencies,
		FromCache:       result.FromCache,
	})
}

func (s *Server) predictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result, err := s.batch.BatchPredict(r.Context(), req.URLs, req.UserID)
	if err != nil {
		s.writeClassifyError(w, err)
		return
	}
	items := make([]batchItemResponse, 0, len(result.Results))
	for _, item := range result.Results {
		items = append(items, batchItemResponse{
			URL:       item.URL,
			Label:     item.Label,
			FromCache: item.FromCache,
			Error:     item.Err,
		})
	}
	writeJSON(w, http.StatusOK, batchResponse{
		BatchID: result.BatchID,
		Results: items,
		Grouped: result.Grouped,
	})
}

func (s *Server) retrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result, err := s.retrainer.Retrain(r.Context(), req.URLs, req.UserID)
	if err != nil {
		s.writeClassifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retrainResponse{
		Documents: result.DocumentCount,
		Message:   result.Message,
	})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := s.history.List(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("history list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	out := make([]historyRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, historyRecordResponse{
			ID:        rec.ID,
			URL:       rec.URL,
			Label:     rec.Label,
			Timestamp: rec.Timestamp,
			UserID:    rec.UserID,
			BatchID:   rec.BatchID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entry_id")
	userID := r.URL.Query().Get("user_id")
	deleted, err := s.history.Delete(r.Context(), entryID, userID)
	if err != nil {
		s.logger.Error("history delete failed", zap.String("entry_id", entryID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete history record")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "history record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"entry_id": entryID, "status": "deleted"})
}

func (s *Server) saveContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	object, err := s.saver.Save(r.Context(), req.URL)
	if err != nil {
		s.writeClassifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"object": object})
}

func (s *Server) downloadContent(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	data, err := s.saver.Load(r.Context(), url)
	if err != nil {
		var notFound *storage.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "no saved content for URL")
			return
		}
		s.writeClassifyError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("content write failed", zap.Error(err))
	}
}

// writeClassifyError maps pipeline errors onto HTTP statuses. Indeterminate
// retrain failures are flagged so operators know a manual artifact check is
// needed.
func (s *Server) writeClassifyError(w http.ResponseWriter, err error) {
	var fetchErr *classify.FetchError
	switch {
	case errors.Is(err, classify.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, classify.ErrNoUsableData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, classify.ErrIndeterminateState):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         err.Error(),
			"indeterminate": true,
		})
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
