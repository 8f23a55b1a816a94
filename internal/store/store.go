// Package store persists resonance results so earlier runs can be listed,
// exported, and re-read.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/models"
)

// Record is one persisted outcome. Payload holds the full typed result as JSON.
type Record struct {
	ID        string               `json:"id"`
	Kind      constants.RecordKind `json:"kind"`
	CreatedAt time.Time            `json:"created_at"`
	Cycles    int                  `json:"cycles"`
	Summary   string               `json:"summary"`
	Payload   json.RawMessage      `json:"payload"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind  constants.RecordKind
	Limit int // 0 = no limit
}

// ResultStore saves and lists records, newest first.
type ResultStore interface {
	// Save inserts rec, or replaces the record with the same ID.
	// An empty ID is assigned a new UUID; the ID is returned.
	Save(ctx context.Context, rec Record) (string, error)

	// Get returns the record with id, or nil if none exists.
	Get(ctx context.Context, id string) (*Record, error)

	List(ctx context.Context, filter Filter) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewRunRecord wraps a simulation result.
func NewRunRecord(r *models.ResonanceResult) (Record, error) {
	summary := fmt.Sprintf("final harmony %.4f, deficit %s", r.FinalHarmony, r.Deficit)
	return newRecord(constants.KindRun, r.Cycles, summary, r)
}

// NewComparisonRecord wraps a pair comparison.
func NewComparisonRecord(r *models.ComparisonResult) (Record, error) {
	cycles := 0
	if r.A != nil {
		cycles = r.A.Cycles
	}
	summary := fmt.Sprintf("%s, distance %.4f", r.Quality, r.ConvergenceDistance)
	return newRecord(constants.KindComparison, cycles, summary, r)
}

// NewDeficitRecord wraps a deficit analysis.
func NewDeficitRecord(a *models.DeficitAnalysis) (Record, error) {
	cycles := 0
	if a.Result != nil {
		cycles = a.Result.Cycles
	}
	summary := fmt.Sprintf("deficit %s, %s", a.Deficit, a.HarmonyNote)
	return newRecord(constants.KindDeficit, cycles, summary, a)
}

func newRecord(kind constants.RecordKind, cycles int, summary string, v any) (Record, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Cycles:    cycles,
		Summary:   summary,
		Payload:   payload,
	}, nil
}

// DecodeRun decodes the payload of a run record.
func (r Record) DecodeRun() (*models.ResonanceResult, error) {
	var out models.ResonanceResult
	if err := r.decode(constants.KindRun, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeComparison decodes the payload of a comparison record.
func (r Record) DecodeComparison() (*models.ComparisonResult, error) {
	var out models.ComparisonResult
	if err := r.decode(constants.KindComparison, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeDeficit decodes the payload of a deficit record.
func (r Record) DecodeDeficit() (*models.DeficitAnalysis, error) {
	var out models.DeficitAnalysis
	if err := r.decode(constants.KindDeficit, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Record) decode(want constants.RecordKind, v any) error {
	if r.Kind != want {
		return fmt.Errorf("record %s is a %s, not a %s", r.ID, r.Kind, want)
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return nil
}

// prepare validates rec and fills in the ID and timestamp.
func prepare(rec Record) (Record, error) {
	if !rec.Kind.Valid() {
		return rec, fmt.Errorf("invalid record kind %q", rec.Kind)
	}
	if rec.Cycles < 0 {
		return rec, fmt.Errorf("record cycles must be non-negative, got %d", rec.Cycles)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Round(0)
	if len(rec.Payload) == 0 {
		rec.Payload = json.RawMessage("null")
	}
	return rec, nil
}
