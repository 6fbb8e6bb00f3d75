package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
	"github.com/zatekoja/srq20-api/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

// WelcomeMessage is returned by the root route.
const WelcomeMessage = "Welcome to the SRQ-20 Depression Detection API. Use /predict to get a prediction."

// PredictionService defines the interface for questionnaire scoring
type PredictionService interface {
	Predict(ctx context.Context, q *entities.Questionnaire) (*entities.PredictionResult, error)
}

// PredictionHandler handles prediction-related HTTP requests
type PredictionHandler struct {
	service PredictionService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(service PredictionService) *PredictionHandler {
	return &PredictionHandler{
		service: service,
	}
}

// Root handles GET /
func (h *PredictionHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": WelcomeMessage,
	})
}

// Predict handles POST /predict
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	q, problems := decodeQuestionnaire(r.Body)
	if problems != nil {
		respondWithJSON(w, http.StatusUnprocessableEntity, ValidationErrors{Detail: problems})
		return
	}

	result, err := h.service.Predict(r.Context(), q)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Msg("Prediction failed")
		respondWithError(w, http.StatusInternalServerError, errorDetail(err))
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// errorDetail echoes the root cause of a failure back to the caller.
func errorDetail(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Detail()
	}
	return err.Error()
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"detail": message,
	})
}
