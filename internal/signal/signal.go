// Package signal implements the single-slot signal channel between the flow
// manager and the external front-end.
//
// The channel holds at most one pending signal; posting overwrites whatever
// was there (last write wins). When configured with a file path the pending
// signal is mirrored to disk so a front-end served by a different process
// can poll it.
package signal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/infoservices/clara/internal/models"
)

// Register is the single-slot, overwrite-latest signal mailbox.
type Register struct {
	mu      sync.Mutex
	pending *models.Signal
	path    string // optional persistence file, empty for memory-only
}

// Option configures a Register.
type Option func(*Register)

// WithFile mirrors the pending signal to the given JSON file so other
// processes can observe it.
func WithFile(path string) Option {
	return func(r *Register) { r.path = path }
}

// NewRegister creates a signal register, loading any pending signal left on
// disk by a previous process.
func NewRegister(opts ...Option) *Register {
	r := &Register{}
	for _, opt := range opts {
		opt(r)
	}
	if r.path != "" {
		r.loadFromFile()
	}
	return r
}

// Post stores a signal for the front-end, replacing any pending one.
func (r *Register) Post(name string, payload map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = &models.Signal{Name: name, Payload: payload, PostedAt: time.Now()}
	slog.Debug("Signal posted", "name", name, "payload_keys", len(payload))

	if r.path == "" {
		return nil
	}
	if err := r.writeFile(r.pending); err != nil {
		slog.Error("Signal file write failed", "error", err, "path", r.path)
		return fmt.Errorf("failed to persist signal %s: %w", name, err)
	}
	return nil
}

// Get returns the pending signal, or nil when the slot is empty. With clear
// set, the slot (and its file mirror) is emptied.
func (r *Register) Get(clear bool) *models.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil && r.path != "" {
		// Another process may have posted since we last looked.
		r.loadFromFile()
	}
	sig := r.pending
	if sig == nil {
		return nil
	}

	if clear {
		r.pending = nil
		if r.path != "" {
			if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
				slog.Warn("Signal file remove failed", "error", err, "path", r.path)
			}
		}
	}
	return sig
}

// Clear empties the slot without reading it.
func (r *Register) Clear() {
	r.Get(true)
}

func (r *Register) writeFile(sig *models.Signal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *Register) loadFromFile() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Signal file read failed", "error", err, "path", r.path)
		}
		return
	}
	var sig models.Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		slog.Warn("Signal file unmarshal failed, ignoring", "error", err, "path", r.path)
		return
	}
	r.pending = &sig
}
