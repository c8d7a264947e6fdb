package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"encore-ai/config"
	"encore-ai/internal/types"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
	"encore-ai/pkg/util"
)

// Swapped out in tests; chunk joins and stitches share it.
var concatFiles = util.ConcatVideoFiles

// Unit is one schedulable render: a single timeline segment together with
// its mini-composition window and on-disk artifacts.
type Unit struct {
	Index      int
	Hash       string
	Comp       *types.MiniComposition
	OutputPath string
	HashPath   string
	// Skip means the unit's previous output is already up to date.
	Skip bool
}

// Scheduler plans which units need rendering and drives a bounded worker
// pool over them. One unit failure never cancels the others; work that
// can finish does, so a retry only re-renders what is still missing.
type Scheduler struct {
	Engine         Engine
	Workers        int
	MaxChunkFrames int
	CallTimeout    time.Duration
	UnitsDir       string

	// OnUnitDone, when set, receives progress after each unit settles.
	OnUnitDone func(done, total int)
}

func NewScheduler(engine Engine, cfg config.Render, unitsDir string) *Scheduler {
	maxChunk := cfg.MaxChunkFrames
	if maxChunk <= 0 {
		maxChunk = types.MaxChunkFrames
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		Engine:         engine,
		Workers:        workers,
		MaxChunkFrames: maxChunk,
		CallTimeout:    time.Duration(cfg.CallTimeoutSec) * time.Second,
		UnitsDir:       unitsDir,
	}
}

func (s *Scheduler) unitOutputPath(i int) string {
	return filepath.Join(s.UnitsDir, fmt.Sprintf("segment-%03d.mp4", i))
}

func (s *Scheduler) unitHashPath(i int) string {
	return s.unitOutputPath(i) + ".hash"
}

// PlanUnits hashes every segment and compares against the sidecar written
// by the previous run. A unit is skipped only when both the sidecar hash
// matches and the output file is still present.
func (s *Scheduler) PlanUnits(t *types.Timeline) ([]Unit, error) {
	if err := os.MkdirAll(s.UnitsDir, 0o755); err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(t.Segments))
	for i := range t.Segments {
		hash, err := SegmentHash(t, i)
		if err != nil {
			return nil, fmt.Errorf("hash segment %d: %w", i, err)
		}
		unit := Unit{
			Index:      i,
			Hash:       hash,
			Comp:       WindowTimeline(t, i),
			OutputPath: s.unitOutputPath(i),
			HashPath:   s.unitHashPath(i),
		}
		if prev, err := os.ReadFile(unit.HashPath); err == nil && strings.TrimSpace(string(prev)) == hash {
			if _, err := os.Stat(unit.OutputPath); err == nil {
				unit.Skip = true
			}
		}
		units = append(units, unit)
	}
	return units, nil
}

// Render executes every non-skipped unit on the worker pool and reports
// the combined failures, if any.
func (s *Scheduler) Render(ctx context.Context, units []Unit) error {
	pending := 0
	for _, unit := range units {
		if !unit.Skip {
			pending++
		}
	}
	log.GetLogger().Info("render plan",
		zap.Int("total units", len(units)),
		zap.Int("to render", pending),
		zap.Int("up to date", len(units)-pending))
	if pending == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		failures []error
		done     int
	)
	settle := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures = append(failures, err)
		}
		done++
		if s.OnUnitDone != nil {
			s.OnUnitDone(done, pending)
		}
	}

	// A plain errgroup (no WithContext) so one failed unit does not
	// cancel its siblings.
	var group errgroup.Group
	group.SetLimit(s.Workers)
	for _, unit := range units {
		unit := unit
		if unit.Skip {
			continue
		}
		group.Go(func() error {
			settle(s.renderUnit(ctx, unit))
			return nil
		})
	}
	group.Wait()

	if len(failures) > 0 {
		return apperrors.Wrap(apperrors.CodeRenderFailed,
			fmt.Sprintf("%d of %d units failed", len(failures), pending),
			errors.Join(failures...))
	}
	return nil
}

// renderUnit renders one unit's target span, splitting into sub-chunks
// when the span exceeds the engine's frame ceiling, and writes the hash
// sidecar only after the output exists. Only the target's frames inside
// the mini-composition are rendered; the neighbors exist so crossfades
// and automation resolve, not to appear in the output.
func (s *Scheduler) renderUnit(ctx context.Context, unit Unit) error {
	first, last := unit.Comp.TargetStart, unit.Comp.TargetEnd-1
	if last < first {
		return fmt.Errorf("unit %d has no frames", unit.Index)
	}

	// Stale sidecar must not survive a failed render.
	os.Remove(unit.HashPath)

	if last-first+1 <= s.MaxChunkFrames {
		if err := s.renderCall(ctx, unit.Comp, first, last, unit.OutputPath); err != nil {
			return fmt.Errorf("unit %d: %w", unit.Index, err)
		}
	} else if err := s.renderChunked(ctx, unit, first, last); err != nil {
		return err
	}

	if err := os.WriteFile(unit.HashPath, []byte(unit.Hash), 0o644); err != nil {
		return fmt.Errorf("unit %d: write hash sidecar: %w", unit.Index, err)
	}
	return nil
}

func (s *Scheduler) renderChunked(ctx context.Context, unit Unit, first, last int) error {
	var parts []string
	cleanup := func() {
		for _, part := range parts {
			os.Remove(part)
		}
	}
	defer cleanup()

	for part, start := 0, first; start <= last; part, start = part+1, start+s.MaxChunkFrames {
		end := start + s.MaxChunkFrames - 1
		if end > last {
			end = last
		}
		partPath := strings.TrimSuffix(unit.OutputPath, ".mp4") + fmt.Sprintf(".part%02d.mp4", part)
		if err := s.renderCall(ctx, unit.Comp, start, end, partPath); err != nil {
			return fmt.Errorf("unit %d part %d: %w", unit.Index, part, err)
		}
		parts = append(parts, partPath)
	}

	if err := concatFiles(parts, unit.OutputPath); err != nil {
		return apperrors.Wrap(apperrors.CodeChunkConcat,
			fmt.Sprintf("unit %d: join %d chunks", unit.Index, len(parts)), err)
	}
	return nil
}

func (s *Scheduler) renderCall(ctx context.Context, comp *types.MiniComposition, startFrame, endFrame int, outputPath string) error {
	callCtx := ctx
	if s.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.CallTimeout)
		defer cancel()
	}
	err := s.Engine.RenderFrames(callCtx, comp, startFrame, endFrame, outputPath)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.CodeRenderTimeout,
			fmt.Sprintf("engine call exceeded %s", s.CallTimeout), err)
	}
	return err
}
