package facematch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/infoservices/clara/internal/blobstore"
	"github.com/infoservices/clara/internal/models"
)

// memBlob is an in-memory blobstore.Store for tests.
type memBlob struct {
	data []byte
	err  error
}

func (m *memBlob) Read(ctx context.Context) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *memBlob) Write(ctx context.Context, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data = data
	return nil
}

// stubNames resolves one fixed id.
type stubNames struct {
	id   string
	name string
	err  error
}

func (s *stubNames) Lookup(employeeID string) (*models.EmployeeRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if employeeID == s.id {
		return &models.EmployeeRecord{EmployeeID: s.id, Name: s.name}, nil
	}
	return nil, models.ErrEmployeeNotFound
}

func TestMatchEmptyGalleryNotRecognized(t *testing.T) {
	e := NewEngine(&memBlob{})
	res, err := e.Match(context.Background(), []float64{0.1, 0.2})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceNotRecognized {
		t.Errorf("Status = %q, want not_recognized for empty gallery", res.Status)
	}
}

func TestMatchNoEmbeddingIsError(t *testing.T) {
	e := NewEngine(&memBlob{})
	res, err := e.Match(context.Background(), nil)
	if !errors.Is(err, models.ErrNoFaceDetected) {
		t.Fatalf("error = %v, want ErrNoFaceDetected", err)
	}
	if res.Status != models.FaceError {
		t.Errorf("Status = %q, want error", res.Status)
	}
}

func TestMatchGalleryUnavailableIsError(t *testing.T) {
	e := NewEngine(&memBlob{err: errors.New("s3 down")})
	res, err := e.Match(context.Background(), []float64{0.1})
	if !errors.Is(err, models.ErrGalleryUnavailable) {
		t.Fatalf("error = %v, want ErrGalleryUnavailable", err)
	}
	if res.Status != models.FaceError {
		t.Errorf("Status = %q, want error", res.Status)
	}
}

func TestMatchAcceptsCloseSingleEntry(t *testing.T) {
	blob := &memBlob{}
	e := NewEngine(blob, WithNameResolver(&stubNames{id: "E1001", name: "Priya Sharma"}))

	if _, err := e.Register(context.Background(), "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := e.Match(context.Background(), []float64{1, 0.1, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceMatchSuccess {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if res.EmployeeID != "E1001" || res.Name != "Priya Sharma" {
		t.Errorf("matched %q/%q, want E1001/Priya Sharma", res.EmployeeID, res.Name)
	}
	if res.Distance <= 0 {
		t.Errorf("Distance = %v, want positive", res.Distance)
	}
}

func TestMatchRejectsOverThreshold(t *testing.T) {
	e := NewEngine(&memBlob{})
	if _, err := e.Register(context.Background(), "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := e.Match(context.Background(), []float64{0, 1, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceNotRecognized {
		t.Errorf("Status = %q, want not_recognized for distant face", res.Status)
	}
}

func TestMatchRejectsAmbiguousNearThreshold(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	// Two entries nearly equidistant from the probe, both just under the
	// threshold, so neither can be trusted.
	if _, err := e.Register(ctx, "E1001", []float64{0.57, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := e.Register(ctx, "E2002", []float64{0, 0.58, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := e.Match(ctx, []float64{0, 0, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceNotRecognized {
		t.Errorf("Status = %q, want not_recognized for ambiguous candidates", res.Status)
	}
}

func TestMatchAcceptsClearWinnerDespiteCloseRunnerUp(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	// Both candidates are close to each other but the best is well under the
	// threshold; the gap rule only guards near-threshold matches.
	if _, err := e.Register(ctx, "E1001", []float64{0.10, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := e.Register(ctx, "E2002", []float64{0, 0.12, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := e.Match(ctx, []float64{0, 0, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceMatchSuccess || res.EmployeeID != "E1001" {
		t.Errorf("result = %+v, want success for E1001", res)
	}
}

func TestTighteningThresholdNeverReadmitsAMatch(t *testing.T) {
	blob := &memBlob{}
	ctx := context.Background()
	seed := NewEngine(blob)
	for id, emb := range map[string][]float64{
		"E1001": {1, 0, 0},
		"E2002": {0, 1, 0},
		"E3003": {0.5, 0.5, 0},
	} {
		if _, err := seed.Register(ctx, id, emb); err != nil {
			t.Fatalf("Register %s failed: %v", id, err)
		}
	}

	probes := [][]float64{
		{1, 0, 0},
		{0.9, 0.2, 0},
		{0.6, 0.5, 0},
		{0, 0, 1},
		{0.55, 0.55, 0.1},
	}

	accepted := make([]bool, len(probes))
	for i := range accepted {
		accepted[i] = true
	}
	for threshold := 0.70; threshold >= 0.09; threshold -= 0.05 {
		e := NewEngine(blob, WithThreshold(threshold))
		for i, probe := range probes {
			res, err := e.Match(ctx, probe)
			if err != nil {
				t.Fatalf("Match at threshold %.2f failed: %v", threshold, err)
			}
			ok := res.Status == models.FaceMatchSuccess
			if ok && !accepted[i] {
				t.Errorf("probe %d accepted at threshold %.2f after being rejected at a looser one", i, threshold)
			}
			accepted[i] = accepted[i] && ok
		}
	}
}

func TestMatchNameLookupFailureStillSucceeds(t *testing.T) {
	e := NewEngine(&memBlob{}, WithNameResolver(&stubNames{err: errors.New("directory down")}))
	ctx := context.Background()
	if _, err := e.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := e.Match(ctx, []float64{1, 0, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceMatchSuccess {
		t.Fatalf("Status = %q, want success despite name lookup failure", res.Status)
	}
	if res.Name != "E1001" {
		t.Errorf("Name = %q, want id fallback", res.Name)
	}
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	if _, err := e.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := e.Register(ctx, "E1001", []float64{0, 1, 0}); !errors.Is(err, models.ErrIdentityRegistered) {
		t.Errorf("duplicate Register error = %v, want ErrIdentityRegistered", err)
	}
}

func TestRegisterWarnsOnNearDuplicateFace(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	if _, err := e.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	warning, err := e.Register(ctx, "E2002", []float64{1, 0.01, 0})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if warning == "" {
		t.Error("expected near-duplicate warning")
	}

	n, err := e.GallerySize(ctx)
	if err != nil || n != 2 {
		t.Errorf("GallerySize = %d (%v), want 2", n, err)
	}
}

func TestRegisterRejectsDimensionMismatch(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	if _, err := e.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := e.Register(ctx, "E2002", []float64{1, 0}); !errors.Is(err, models.ErrEmbeddingDimension) {
		t.Errorf("mismatched Register error = %v, want ErrEmbeddingDimension", err)
	}
}

func TestRemove(t *testing.T) {
	e := NewEngine(&memBlob{})
	ctx := context.Background()
	if _, err := e.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := e.Remove(ctx, "E1001"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := e.Remove(ctx, "E1001"); !errors.Is(err, models.ErrIdentityNotFound) {
		t.Errorf("second Remove error = %v, want ErrIdentityNotFound", err)
	}

	res, err := e.Match(ctx, []float64{1, 0, 0})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if res.Status != models.FaceNotRecognized {
		t.Errorf("Status = %q, want not_recognized after removal", res.Status)
	}
}

func TestGallerySurvivesReopenOnFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.json")
	fs, err := blobstore.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	e1 := NewEngine(fs)
	if _, err := e1.Register(ctx, "E1001", []float64{1, 0, 0}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	fs2, err := blobstore.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore reopen failed: %v", err)
	}
	e2 := NewEngine(fs2)
	res, err := e2.Match(ctx, []float64{1, 0, 0})
	if err != nil {
		t.Fatalf("Match after reopen failed: %v", err)
	}
	if res.Status != models.FaceMatchSuccess || res.EmployeeID != "E1001" {
		t.Errorf("result after reopen = %+v, want success E1001", res)
	}
}
