package signal

import (
	"path/filepath"
	"testing"

	"github.com/infoservices/clara/internal/models"
)

func TestPostOverwritesPending(t *testing.T) {
	r := NewRegister()

	if err := r.Post(models.SignalStartFaceCapture, map[string]string{"session_id": "s1"}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if err := r.Post(models.SignalStopFaceCapture, nil); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	sig := r.Get(false)
	if sig == nil {
		t.Fatal("expected a pending signal")
	}
	if sig.Name != models.SignalStopFaceCapture {
		t.Errorf("pending signal = %q, want the most recent post", sig.Name)
	}
}

func TestGetWithClearEmptiesSlot(t *testing.T) {
	r := NewRegister()
	if err := r.Post(models.SignalStartVisitorPhoto, map[string]string{"host": "Asha Rao"}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	sig := r.Get(true)
	if sig == nil || sig.Payload["host"] != "Asha Rao" {
		t.Fatalf("Get returned %+v, want the posted signal", sig)
	}
	if r.Get(false) != nil {
		t.Error("slot should be empty after a clearing read")
	}
}

func TestGetEmptySlotReturnsNil(t *testing.T) {
	r := NewRegister()
	if sig := r.Get(true); sig != nil {
		t.Errorf("Get on empty register = %+v, want nil", sig)
	}
}

func TestFileMirrorSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signal.json")

	first := NewRegister(WithFile(path))
	if err := first.Post(models.SignalStartFaceRegistration, map[string]string{"employee_id": "E100"}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	second := NewRegister(WithFile(path))
	sig := second.Get(true)
	if sig == nil {
		t.Fatal("expected the mirrored signal after restart")
	}
	if sig.Name != models.SignalStartFaceRegistration || sig.Payload["employee_id"] != "E100" {
		t.Errorf("restored signal = %+v", sig)
	}

	third := NewRegister(WithFile(path))
	if third.Get(false) != nil {
		t.Error("clearing read should have removed the file mirror")
	}
}
