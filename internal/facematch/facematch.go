// Package facematch implements the face gallery and the match decision.
//
// The engine works on embeddings produced by the capture front-end. The
// gallery is a single JSON blob behind a blobstore.Store; every mutation is a
// whole-blob read-modify-write under the engine lock, so concurrent
// registrations cannot drop each other's entries.
package facematch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/infoservices/clara/internal/blobstore"
	"github.com/infoservices/clara/internal/models"
)

// Default decision parameters.
const (
	// DefaultMatchThreshold is the maximum embedding distance accepted as a
	// match.
	DefaultMatchThreshold = 0.6
	// DefaultAmbiguityMargin is the minimum gap required between the best and
	// second-best candidate before a near-threshold match is trusted.
	DefaultAmbiguityMargin = 0.05
)

// NameResolver enriches a matched employee id with a display name.
// directory.Service satisfies this.
type NameResolver interface {
	Lookup(employeeID string) (*models.EmployeeRecord, error)
}

// Engine matches input embeddings against the persisted gallery.
type Engine struct {
	mu        sync.Mutex
	blobs     blobstore.Store
	names     NameResolver
	threshold float64
	margin    float64
}

// Opts holds configuration for the face match engine.
type Opts struct {
	Threshold float64
	Margin    float64
	Names     NameResolver
}

// Option configures engine construction.
type Option func(*Opts)

// WithThreshold overrides the match distance threshold.
func WithThreshold(t float64) Option {
	return func(o *Opts) { o.Threshold = t }
}

// WithAmbiguityMargin overrides the best-to-second-best gap requirement.
func WithAmbiguityMargin(m float64) Option {
	return func(o *Opts) { o.Margin = m }
}

// WithNameResolver wires a directory lookup for greeting names.
func WithNameResolver(n NameResolver) Option {
	return func(o *Opts) { o.Names = n }
}

// NewEngine creates a face match engine over the given blob store.
func NewEngine(blobs blobstore.Store, opts ...Option) *Engine {
	cfg := Opts{Threshold: DefaultMatchThreshold, Margin: DefaultAmbiguityMargin}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("FaceMatch engine initialized", "threshold", cfg.Threshold, "margin", cfg.Margin)
	return &Engine{blobs: blobs, names: cfg.Names, threshold: cfg.Threshold, margin: cfg.Margin}
}

// loadGallery reads the persisted gallery. A missing blob is an empty
// gallery, not an error.
func (e *Engine) loadGallery(ctx context.Context) (*models.FaceGallery, error) {
	data, err := e.blobs.Read(ctx)
	if err != nil {
		slog.Error("FaceMatch loadGallery read failed", "error", err)
		return nil, fmt.Errorf("%w: %v", models.ErrGalleryUnavailable, err)
	}
	if data == nil {
		return &models.FaceGallery{}, nil
	}
	var gallery models.FaceGallery
	if err := json.Unmarshal(data, &gallery); err != nil {
		slog.Error("FaceMatch loadGallery unmarshal failed", "error", err)
		return nil, fmt.Errorf("%w: corrupt gallery blob: %v", models.ErrGalleryUnavailable, err)
	}
	return &gallery, nil
}

func (e *Engine) saveGallery(ctx context.Context, gallery *models.FaceGallery) error {
	data, err := json.Marshal(gallery)
	if err != nil {
		return fmt.Errorf("failed to marshal gallery: %w", err)
	}
	if err := e.blobs.Write(ctx, data); err != nil {
		slog.Error("FaceMatch saveGallery write failed", "error", err)
		return fmt.Errorf("%w: %v", models.ErrGalleryUnavailable, err)
	}
	return nil
}

// candidate pairs a gallery identity with its distance to the input.
type candidate struct {
	employeeID string
	distance   float64
}

// Match compares the input embedding against every gallery entry and decides
// whether the closest identity can be trusted.
//
// An empty gallery yields FaceNotRecognized so the flow degrades to manual
// verification. A missing or zero-length embedding is FaceError: the capture
// produced nothing usable and retrying is pointless.
func (e *Engine) Match(ctx context.Context, embedding []float64) (models.FaceResult, error) {
	if len(embedding) == 0 {
		return models.FaceResult{Status: models.FaceError, Message: "no face detected"}, models.ErrNoFaceDetected
	}

	gallery, err := e.loadGallery(ctx)
	if err != nil {
		return models.FaceResult{Status: models.FaceError, Message: "face gallery unavailable"}, err
	}
	if len(gallery.Entries) == 0 {
		slog.Debug("FaceMatch.Match: gallery empty, not recognized")
		return models.FaceResult{Status: models.FaceNotRecognized, Message: "no registered faces"}, nil
	}

	candidates := make([]candidate, 0, len(gallery.Entries))
	for _, entry := range gallery.Entries {
		d, err := euclideanDistance(embedding, entry.Embedding)
		if err != nil {
			slog.Warn("FaceMatch.Match: skipping entry with mismatched embedding", "employeeID", entry.EmployeeID, "error", err)
			continue
		}
		candidates = append(candidates, candidate{employeeID: entry.EmployeeID, distance: d})
	}
	if len(candidates) == 0 {
		return models.FaceResult{Status: models.FaceError, Message: "embedding dimension mismatch"}, models.ErrEmbeddingDimension
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	best := candidates[0]

	if best.distance > e.threshold {
		slog.Debug("FaceMatch.Match: best candidate over threshold", "employeeID", best.employeeID, "distance", best.distance)
		return models.FaceResult{Status: models.FaceNotRecognized, Distance: best.distance}, nil
	}

	// A near-threshold match is rejected when the runner-up is almost as
	// close. A comfortably close match stands on its own.
	if len(candidates) > 1 {
		gap := candidates[1].distance - best.distance
		if gap < e.margin && best.distance > e.threshold-e.margin {
			slog.Debug("FaceMatch.Match: ambiguous between top candidates",
				"best", best.employeeID, "bestDistance", best.distance,
				"second", candidates[1].employeeID, "gap", gap)
			return models.FaceResult{Status: models.FaceNotRecognized, Distance: best.distance}, nil
		}
	}

	result := models.FaceResult{
		Status:     models.FaceMatchSuccess,
		EmployeeID: best.employeeID,
		Name:       e.resolveName(best.employeeID),
		Distance:   best.distance,
	}
	slog.Debug("FaceMatch.Match succeeded", "employeeID", best.employeeID, "distance", best.distance)
	return result, nil
}

// resolveName looks up the directory name for an id. Falls back to the id
// itself so a directory outage never blocks a successful match.
func (e *Engine) resolveName(employeeID string) string {
	if e.names == nil {
		return employeeID
	}
	rec, err := e.names.Lookup(employeeID)
	if err != nil || rec == nil || rec.Name == "" {
		slog.Warn("FaceMatch.resolveName: directory lookup failed, using id", "employeeID", employeeID, "error", err)
		return employeeID
	}
	return rec.Name
}

// Register adds an embedding for a new identity. The returned warning is
// non-empty when the new face sits within match distance of an existing
// entry, which usually means a duplicate registration under a second id.
func (e *Engine) Register(ctx context.Context, employeeID string, embedding []float64) (string, error) {
	if len(embedding) == 0 {
		return "", models.ErrNoFaceDetected
	}
	if employeeID == "" {
		return "", models.ErrMissingEmployeeID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	gallery, err := e.loadGallery(ctx)
	if err != nil {
		return "", err
	}
	if gallery.Find(employeeID) != nil {
		slog.Warn("FaceMatch.Register: identity already registered", "employeeID", employeeID)
		return "", models.ErrIdentityRegistered
	}
	if len(gallery.Entries) > 0 {
		dim := len(gallery.Entries[0].Embedding)
		if len(embedding) != dim {
			return "", fmt.Errorf("%w: got %d, gallery uses %d", models.ErrEmbeddingDimension, len(embedding), dim)
		}
	}

	var warning string
	for _, entry := range gallery.Entries {
		d, err := euclideanDistance(embedding, entry.Embedding)
		if err != nil {
			continue
		}
		if d <= e.threshold {
			warning = fmt.Sprintf("new face is within match distance (%.3f) of %s", d, entry.EmployeeID)
			slog.Warn("FaceMatch.Register: near-duplicate face", "employeeID", employeeID, "existing", entry.EmployeeID, "distance", d)
			break
		}
	}

	gallery.Entries = append(gallery.Entries, models.GalleryEntry{
		EmployeeID:   employeeID,
		Embedding:    embedding,
		RegisteredAt: time.Now(),
	})
	if err := e.saveGallery(ctx, gallery); err != nil {
		return "", err
	}
	slog.Info("FaceMatch.Register added identity", "employeeID", employeeID, "gallerySize", len(gallery.Entries))
	return warning, nil
}

// Remove deletes an identity from the gallery.
func (e *Engine) Remove(ctx context.Context, employeeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	gallery, err := e.loadGallery(ctx)
	if err != nil {
		return err
	}
	kept := gallery.Entries[:0]
	found := false
	for _, entry := range gallery.Entries {
		if entry.EmployeeID == employeeID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return models.ErrIdentityNotFound
	}
	gallery.Entries = kept
	if err := e.saveGallery(ctx, gallery); err != nil {
		return err
	}
	slog.Info("FaceMatch.Remove deleted identity", "employeeID", employeeID, "gallerySize", len(gallery.Entries))
	return nil
}

// GallerySize reports the number of registered identities.
func (e *Engine) GallerySize(ctx context.Context) (int, error) {
	gallery, err := e.loadGallery(ctx)
	if err != nil {
		return 0, err
	}
	return len(gallery.Entries), nil
}

func euclideanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, models.ErrEmbeddingDimension
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
