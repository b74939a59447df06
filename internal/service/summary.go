package service

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/unionretail/promosync/internal/domain"
)

// RunSummary is the run artifact consumed by downstream reporting tools.
// The per-vendor entries are a stable JSON contract.
type RunSummary struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	DryRun      bool                   `json:"dry_run"`
	Vendors     []domain.VendorSummary `json:"vendors"`
}

// NewRunSummary creates an empty summary with a fresh run id
func NewRunSummary(dryRun bool) *RunSummary {
	return &RunSummary{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		DryRun:      dryRun,
		Vendors:     []domain.VendorSummary{},
	}
}

// Append adds one vendor entry
func (s *RunSummary) Append(v domain.VendorSummary) {
	s.Vendors = append(s.Vendors, v)
}

// WriteFile rewrites the summary file in full. Called after every vendor so
// a forcibly terminated run still leaves a usable partial artifact.
func (s *RunSummary) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
