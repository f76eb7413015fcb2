package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/infoservices/clara/internal/models"
)

type faceMatchRequest struct {
	Embedding []float64 `json:"embedding"`
}

type faceRegisterRequest struct {
	EmployeeID string    `json:"employee_id"`
	Embedding  []float64 `json:"embedding"`
}

type faceRemoveRequest struct {
	EmployeeID string `json:"employee_id"`
}

// faceResultHandler accepts a match outcome computed elsewhere (for example
// by an edge device running its own detector) and folds it into the flow.
func (s *Server) faceResultHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var result models.FaceResult
	if !decodeJSON(w, r, &result) {
		return
	}
	verified, msg := s.flow.ProcessFaceRecognitionResult(result)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, map[string]bool{"verified": verified}))
}

// faceMatchHandler runs the embedding against the gallery and feeds the
// outcome straight into the flow, so one call covers match plus transition.
func (s *Server) faceMatchHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.engine == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Face match engine is not configured"))
		return
	}
	var req faceMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.Match(r.Context(), req.Embedding)
	if err != nil {
		slog.Error("Server.faceMatchHandler: match failed", "error", err)
		result = models.FaceResult{Status: models.FaceError, Message: err.Error()}
	}
	verified, msg := s.flow.ProcessFaceRecognitionResult(result)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, map[string]interface{}{
		"verified": verified,
		"match":    result,
	}))
}

func (s *Server) faceRegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.engine == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Face match engine is not configured"))
		return
	}
	var req faceRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	warning, err := s.engine.Register(r.Context(), req.EmployeeID, req.Embedding)
	if err != nil {
		slog.Warn("Server.faceRegisterHandler: registration rejected", "employeeID", req.EmployeeID, "error", err)
		switch {
		case errors.Is(err, models.ErrIdentityRegistered):
			writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		case errors.Is(err, models.ErrNoFaceDetected), errors.Is(err, models.ErrEmbeddingDimension):
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		case errors.Is(err, models.ErrGalleryUnavailable):
			writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		default:
			writeJSONResponse(w, http.StatusInternalServerError, models.Error(err.Error()))
		}
		return
	}

	result := map[string]string{}
	if warning != "" {
		result["warning"] = warning
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) faceRemoveHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.engine == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Face match engine is not configured"))
		return
	}
	var req faceRemoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.engine.Remove(r.Context(), req.EmployeeID); err != nil {
		switch {
		case errors.Is(err, models.ErrIdentityNotFound):
			writeJSONResponse(w, http.StatusNotFound, models.Error(err.Error()))
		case errors.Is(err, models.ErrGalleryUnavailable):
			writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		default:
			writeJSONResponse(w, http.StatusInternalServerError, models.Error(err.Error()))
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}
