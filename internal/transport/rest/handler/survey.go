package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vitasurvey/internal/model"
	"vitasurvey/internal/service"
	"vitasurvey/internal/transport/rest/middleware"
)

// SurveyHandler handles survey session endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// AnswerRequest is the body of PUT .../answers/{questionId}. Exactly one field is set.
type AnswerRequest struct {
	Text      *string `json:"text,omitempty"`
	OptionID  *int    `json:"optionId,omitempty"`
	OptionIDs []int   `json:"optionIds,omitempty"`
}

func (req AnswerRequest) answer() (model.Answer, bool) {
	set := 0
	var a model.Answer
	if req.Text != nil {
		set++
		a = model.TextAnswer(*req.Text)
	}
	if req.OptionID != nil {
		set++
		a = model.OptionAnswer(*req.OptionID)
	}
	if req.OptionIDs != nil {
		set++
		a = model.OptionsAnswer(req.OptionIDs...)
	}
	return a, set == 1
}

// ToggleRequest is the body of POST .../answers/{questionId}/toggle
type ToggleRequest struct {
	OptionID int `json:"optionId"`
}

// Start handles POST /v1/surveys/sessions
func (h *SurveyHandler) Start(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	if memberID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.surveySvc.StartSession(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/surveys/sessions/{sessionId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	view, err := h.surveySvc.GetSession(r.Context(), memberID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles PUT /v1/surveys/sessions/{sessionId}/answers/{questionId}
func (h *SurveyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, ok := req.answer()
	if !ok {
		writeError(w, http.StatusBadRequest, "exactly one of text, optionId, optionIds is required")
		return
	}

	view, err := h.surveySvc.Answer(r.Context(), memberID, mux.Vars(r)["sessionId"], questionID, a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Toggle handles POST /v1/surveys/sessions/{sessionId}/answers/{questionId}/toggle
func (h *SurveyHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.surveySvc.Toggle(r.Context(), memberID, mux.Vars(r)["sessionId"], questionID, req.OptionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Next handles POST /v1/surveys/sessions/{sessionId}/next
func (h *SurveyHandler) Next(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	view, err := h.surveySvc.Next(r.Context(), memberID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Prev handles POST /v1/surveys/sessions/{sessionId}/prev
func (h *SurveyHandler) Prev(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	view, err := h.surveySvc.Prev(r.Context(), memberID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Abandon handles DELETE /v1/surveys/sessions/{sessionId}
func (h *SurveyHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	if err := h.surveySvc.Abandon(r.Context(), memberID, mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubmissions handles GET /v1/surveys/submissions
func (h *SurveyHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	subs, err := h.surveySvc.ListSubmissions(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}
