// Package api exposes the receptionist over thin JSON endpoints.
//
// The voice front-end drives the conversation through these handlers: wake
// word and utterance gating, user classification, face match results, manual
// OTP verification, visitor intake, and the single-slot signal channel it
// polls for camera instructions.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/infoservices/clara/internal/agentstate"
	"github.com/infoservices/clara/internal/facematch"
	"github.com/infoservices/clara/internal/flow"
	"github.com/infoservices/clara/internal/signal"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 5 * time.Second

// dialogueSystemPrompt frames pass-through utterances for the LLM.
const dialogueSystemPrompt = "You are Clara, the virtual receptionist at Info Services. " +
	"Keep replies short, polite, and helpful. Answer in the language the guest is speaking."

// DialogueClient generates a free-form reply when the wake/sleep gate lets
// an utterance pass through.
type DialogueClient interface {
	GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Opts holds configuration for the API server.
type Opts struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the flow manager and its collaborators to HTTP handlers.
type Server struct {
	flow     *flow.Manager
	agent    *agentstate.Manager
	engine   *facematch.Engine
	signals  *signal.Register
	dialogue DialogueClient
	addr     string
}

// NewServer creates an API server. The face engine and dialogue client are
// optional; their endpoints report unavailability when absent.
func NewServer(flowMgr *flow.Manager, agent *agentstate.Manager, signals *signal.Register, engine *facematch.Engine, dialogue DialogueClient, opts ...Option) *Server {
	var o Opts
	for _, opt := range opts {
		opt(&o)
	}
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	slog.Debug("Server configured", "addr", o.Addr, "faceEngine", engine != nil, "dialogue", dialogue != nil)
	return &Server{
		flow:     flowMgr,
		agent:    agent,
		engine:   engine,
		signals:  signals,
		dialogue: dialogue,
		addr:     o.Addr,
	}
}

// Handler returns the routed handler, exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/wake", s.wakeHandler)
	mux.HandleFunc("/utterance", s.utteranceHandler)
	mux.HandleFunc("/classify", s.classifyHandler)
	mux.HandleFunc("/face/result", s.faceResultHandler)
	mux.HandleFunc("/face/match", s.faceMatchHandler)
	mux.HandleFunc("/face/register", s.faceRegisterHandler)
	mux.HandleFunc("/face/remove", s.faceRemoveHandler)
	mux.HandleFunc("/verify/manual", s.manualVerifyHandler)
	mux.HandleFunc("/registration/choice", s.registrationChoiceHandler)
	mux.HandleFunc("/registration/complete", s.registrationCompleteHandler)
	mux.HandleFunc("/visitor/info", s.visitorInfoHandler)
	mux.HandleFunc("/visitor/photo", s.visitorPhotoHandler)
	mux.HandleFunc("/access/check", s.accessHandler)
	mux.HandleFunc("/signal", s.signalHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/session/end", s.sessionEndHandler)
	return mux
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
			return err
		}
		return nil
	}
}
