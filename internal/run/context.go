// Package run carries the per-invocation state threaded through both pipelines.
package run

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/budget"
	"github.com/google/uuid"
)

// ResumePoint is the first unit a stopped run did not process
type ResumePoint struct {
	SourceKey string `json:"source_key"`
	WindowKey string `json:"window_key"`
}

// Context holds the counters and ledger for one run. It replaces process-wide
// accumulators and is discarded when the run ends.
type Context struct {
	ID        string
	Pipeline  string
	StartedAt time.Time
	DryRun    bool
	Ledger    *budget.Ledger

	UnitsProcessed  int
	UnitsSkipped    int
	RecordsImported int
	Errors          int

	resume  *ResumePoint
	aborted error
	now     func() time.Time
}

// New starts a run with a fresh ledger
func New(pipeline string, maxUnits int, dryRun bool) *Context {
	return &Context{
		ID:        uuid.NewString(),
		Pipeline:  pipeline,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Ledger:    budget.NewLedger(maxUnits),
		now:       time.Now,
	}
}

// StopAt records where a budget-stopped run should continue from
func (c *Context) StopAt(sourceKey, windowKey string) {
	if c.resume == nil {
		c.resume = &ResumePoint{SourceKey: sourceKey, WindowKey: windowKey}
	}
}

// Abort marks the run as failed with a run-fatal error
func (c *Context) Abort(err error) {
	if c.aborted == nil {
		c.aborted = err
	}
}

// Stopped reports whether the run must not start another unit
func (c *Context) Stopped() bool {
	return c.resume != nil || c.aborted != nil
}

// Err returns the run-fatal error, if any
func (c *Context) Err() error {
	return c.aborted
}

// Resume returns the resumption point of a budget-stopped run
func (c *Context) Resume() *ResumePoint {
	return c.resume
}

// Summary is the run report produced on completion or early stop
type Summary struct {
	RunID           string       `json:"run_id"`
	Pipeline        string       `json:"pipeline"`
	DryRun          bool         `json:"dry_run"`
	StartedAt       time.Time    `json:"started_at"`
	Duration        string       `json:"duration"`
	UnitsProcessed  int          `json:"units_processed"`
	UnitsSkipped    int          `json:"units_skipped"`
	RecordsImported int          `json:"records_imported"`
	UnitsConsumed   int          `json:"units_consumed"`
	MaxUnits        int          `json:"max_units"`
	Errors          int          `json:"errors"`
	Resume          *ResumePoint `json:"resume,omitempty"`
	Aborted         string       `json:"aborted,omitempty"`
}

// Summary snapshots the counters
func (c *Context) Summary() Summary {
	s := Summary{
		RunID:           c.ID,
		Pipeline:        c.Pipeline,
		DryRun:          c.DryRun,
		StartedAt:       c.StartedAt,
		Duration:        c.now().Sub(c.StartedAt).Round(time.Millisecond).String(),
		UnitsProcessed:  c.UnitsProcessed,
		UnitsSkipped:    c.UnitsSkipped,
		RecordsImported: c.RecordsImported,
		UnitsConsumed:   c.Ledger.Consumed(),
		MaxUnits:        c.Ledger.Max(),
		Errors:          c.Errors,
		Resume:          c.resume,
	}
	if c.aborted != nil {
		s.Aborted = c.aborted.Error()
	}
	return s
}

// String renders the summary for operators
func (s Summary) String() string {
	var b strings.Builder

	status := "✓ completed"
	switch {
	case s.Aborted != "":
		status = "✗ aborted: " + s.Aborted
	case s.Resume != nil:
		status = "⚠ stopped early (budget exhausted)"
	}
	if s.DryRun {
		status += " [dry run]"
	}

	fmt.Fprintf(&b, "%s run %s %s in %s\n", s.Pipeline, s.RunID, status, s.Duration)
	fmt.Fprintf(&b, "  units processed:  %d (skipped %d)\n", s.UnitsProcessed, s.UnitsSkipped)
	fmt.Fprintf(&b, "  records imported: %d\n", s.RecordsImported)
	fmt.Fprintf(&b, "  units consumed:   %d / %d\n", s.UnitsConsumed, s.MaxUnits)
	fmt.Fprintf(&b, "  errors:           %d\n", s.Errors)
	if s.Resume != nil {
		fmt.Fprintf(&b, "  continue from:    %s @ %s\n", s.Resume.SourceKey, s.Resume.WindowKey)
	}
	return b.String()
}
