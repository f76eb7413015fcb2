package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/infoservices/clara/internal/flow"
	"github.com/infoservices/clara/internal/models"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "clara"}))
}

// wakeHandler reacts to a detected wake word: wake the agent and start a
// fresh reception session.
func (s *Server) wakeHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.agent.Wake()
	msg := s.flow.ProcessWakeWord()
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, nil))
}

type utteranceRequest struct {
	Text string `json:"text"`
}

// utteranceResponse reports the gating decision. Respond false means the
// front-end must stay silent, not speak an empty string.
type utteranceResponse struct {
	Respond bool   `json:"respond"`
	Reply   string `json:"reply,omitempty"`
	Lang    string `json:"lang,omitempty"`
}

// utteranceHandler runs the wake/sleep gate over a raw utterance. Canned
// responses come back directly; pass-through goes to the dialogue client
// when one is configured.
func (s *Server) utteranceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req utteranceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision := s.agent.ProcessInput(req.Text)
	resp := utteranceResponse{Respond: decision.Respond, Reply: decision.Reply, Lang: decision.Language}
	if decision.PassThrough() && s.dialogue != nil {
		reply, err := s.dialogue.GenerateReply(r.Context(), dialogueSystemPrompt, req.Text)
		if err != nil {
			slog.Error("Server.utteranceHandler: dialogue generation failed", "error", err)
			writeJSONResponse(w, http.StatusBadGateway, models.Error("Dialogue service unavailable"))
			return
		}
		resp.Reply = reply
	}
	writeJSONResponse(w, http.StatusOK, models.Success(resp))
}

func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req utteranceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg := s.flow.ProcessUserClassification(req.Text)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, s.flow.Status()))
}

type manualVerifyRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	OTP        string `json:"otp"`
}

func (s *Server) manualVerifyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req manualVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := s.flow.ProcessManualVerificationStep(r.Context(), flow.ManualVerificationRequest{
		Name:       req.Name,
		Email:      req.Email,
		EmployeeID: req.EmployeeID,
		OTP:        req.OTP,
	})
	switch {
	case errors.Is(err, models.ErrNoActiveSession):
		writeJSONResponse(w, http.StatusConflict, models.Error(msg))
		return
	case errors.Is(err, models.ErrMissingEmployeeID):
		writeJSONResponse(w, http.StatusBadRequest, models.Error(msg))
		return
	case errors.Is(err, models.ErrEmployeeNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error(msg))
		return
	case errors.Is(err, models.ErrDirectoryUnavailable):
		writeJSONResponse(w, http.StatusBadGateway, models.Error(msg))
		return
	}

	// OTP mismatches and exhaustion are part of the dialogue, not transport
	// failures; the message tells the user what to do next.
	sess := s.flow.CurrentSession()
	verified := sess != nil && sess.IsVerified
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, map[string]bool{"verified": verified}))
}

type registrationChoiceRequest struct {
	Register bool `json:"register"`
}

func (s *Server) registrationChoiceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req registrationChoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := s.flow.ProcessFaceRegistrationChoice(req.Register)
	if code, handled := registrationErrorCode(err); handled {
		writeJSONResponse(w, code, models.Error(msg))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, nil))
}

type registrationCompleteRequest struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registrationCompleteHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req registrationCompleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := s.flow.ProcessFaceRegistrationCompletion(req.Success, req.Message)
	if code, handled := registrationErrorCode(err); handled {
		writeJSONResponse(w, code, models.Error(msg))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, nil))
}

func registrationErrorCode(err error) (int, bool) {
	switch {
	case errors.Is(err, models.ErrNoActiveSession):
		return http.StatusConflict, true
	case errors.Is(err, models.ErrSessionNotVerified):
		return http.StatusForbidden, true
	case err != nil:
		return http.StatusInternalServerError, true
	}
	return 0, false
}

type visitorInfoRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	Host    string `json:"host"`
}

func (s *Server) visitorInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req visitorInfoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg := s.flow.ProcessVisitorInfo(r.Context(), flow.VisitorFields{
		Name:    req.Name,
		Phone:   req.Phone,
		Purpose: req.Purpose,
		Host:    req.Host,
	})
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, s.flow.Status()))
}

type visitorPhotoRequest struct {
	Captured      bool   `json:"captured"`
	PhotoLocation string `json:"photo_location,omitempty"`
}

func (s *Server) visitorPhotoHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req visitorPhotoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg := s.flow.ProcessVisitorFaceCapture(req.Captured, req.PhotoLocation)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, nil))
}

type accessCheckRequest struct {
	Tool string `json:"tool"`
}

func (s *Server) accessHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req accessCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	allowed, msg := s.flow.CheckToolAccess(req.Tool)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, map[string]bool{"allowed": allowed}))
}

// signalHandler lets the front-end poll the single-slot signal channel.
// ?clear=1 consumes the pending signal.
func (s *Server) signalHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	clear := r.URL.Query().Get("clear") == "1" || r.URL.Query().Get("clear") == "true"
	sig := s.signals.Get(clear)
	if sig == nil {
		writeJSONResponse(w, http.StatusOK, models.Success(nil))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sig))
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"flow":  s.flow.Status(),
		"agent": s.agent.Snapshot(),
	}))
}

func (s *Server) sessionEndHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	msg := s.flow.EndSession()
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(msg, nil))
}
