package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/domain"
)

// Handler exposes the REST surface: attempt submission and recommendation
// reads. Recommendations are never returned inline with the grading response;
// clients fetch them later or subscribe to the websocket feed.
type Handler struct {
	grader          *app.AttemptGrader
	recommendations app.RecommendationStore
	engine          *app.DecisionEngine
}

func NewHandler(grader *app.AttemptGrader, recommendations app.RecommendationStore, engine *app.DecisionEngine) *Handler {
	return &Handler{grader: grader, recommendations: recommendations, engine: engine}
}

// Register wires the handler's routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/evaluations/submit", h.SubmitAttempt)
	mux.HandleFunc("/api/recommendations", h.ListRecommendations)
	mux.HandleFunc("/api/decision-trees/stats", h.TreeStats)
}

type submitRequest struct {
	EvaluationID string           `json:"evaluationId"`
	StudentID    string           `json:"studentId"`
	CourseID     string           `json:"courseId"`
	Answers      domain.AnswerSet `json:"answers"`
	TimeSpent    int              `json:"timeSpentSeconds"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// SubmitAttempt grades a submission and returns the persisted attempt. The
// recommendation pipeline runs in the background after this responds.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.EvaluationID == "" || req.StudentID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing evaluationId or studentId"})
		return
	}

	attempt, err := h.grader.Submit(r.Context(), app.Submission{
		EvaluationID: req.EvaluationID,
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		Answers:      req.Answers,
		TimeSpent:    req.TimeSpent,
	})
	switch {
	case errors.Is(err, domain.ErrEvaluationNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
		return
	case errors.Is(err, domain.ErrMaxAttemptsReached):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
		return
	case err != nil:
		log.Printf("submit attempt: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, attempt)
}

// ListRecommendations returns the student's persisted recommendations, newest
// first.
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing studentId"})
		return
	}
	courseID := r.URL.Query().Get("courseId")

	recs, err := h.recommendations.ListRecommendations(r.Context(), studentID, courseID)
	if err != nil {
		log.Printf("list recommendations: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// TreeStats reports the combined shape of the decision trees.
func (h *Handler) TreeStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
