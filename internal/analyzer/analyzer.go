// Package analyzer orchestrates one analysis pass over an application archive
// and aggregates its records into an AnalysisResult.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/su1ph3r/effodio/internal/archive"
	"github.com/su1ph3r/effodio/internal/security"
	"github.com/su1ph3r/effodio/pkg/types"
)

// Analyzer runs archive analyses. It holds no per-pass state, so one value
// may serve concurrent calls.
type Analyzer struct {
	config    *types.Config
	logger    hclog.Logger
	extractor *Extractor
}

// New creates an archive analyzer
func New(config *types.Config, logger hclog.Logger) *Analyzer {
	if config == nil {
		config = types.DefaultConfig()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{
		config:    config,
		logger:    logger.Named("analyzer"),
		extractor: NewExtractor(config.Analysis.URLContextRadius, config.Analysis.UIContextRadius),
	}
}

// AnalyzeArchive extracts the zip archive at path and runs the full pass over
// its allow-listed members. Invalid archives fail with types.ErrInvalidInput;
// unexpected failures are wrapped in types.ErrAnalysisFailed. The scratch
// directory is removed on every exit path.
func (a *Analyzer) AnalyzeArchive(ctx context.Context, path string) (result *types.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis panicked", "archive", path, "panic", r, "stack", string(debug.Stack()))
			result, err = nil, fmt.Errorf("%w: %v", types.ErrAnalysisFailed, r)
		}
	}()

	if err := types.ValidateInputFile(path); err != nil {
		return nil, err
	}

	start := time.Now()
	settings := a.config.Analysis

	scratch, err := archive.Extract(ctx, path, archive.Options{
		MaxMemberSize:  settings.MaxMemberSize,
		MaxArchiveSize: settings.MaxArchiveSize,
		Logger:         a.logger.Named("archive"),
	})
	if err != nil {
		return nil, WrapFailure(err)
	}
	defer func() {
		if cerr := scratch.Close(); cerr != nil {
			a.logger.Warn("failed to remove scratch directory", "dir", scratch.Dir, "error", cerr)
		}
	}()

	members, err := scratch.Members()
	if err != nil {
		return nil, WrapFailure(err)
	}
	a.logger.Debug("archive extracted", "archive", path, "members", len(members), "skipped", scratch.Skipped)

	agg := NewAggregator()
	agg.FileSkipped(scratch.Skipped)

	workers := settings.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, m := range members {
		m := m
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("member processing panicked", "member", m.Path, "panic", r)
					err = fmt.Errorf("%w: %s: %v", types.ErrAnalysisFailed, m.Path, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}

			text, err := scratch.Read(m)
			if err != nil {
				a.logger.Debug("skipping member", "member", m.Path, "error", err)
				agg.FileSkipped(1)
				return nil
			}
			agg.FileScanned()

			a.extractor.Process(agg, Buffer{Index: m.Index, Location: m.Path, Text: text})
			if m.Path == settings.ManifestName {
				perms := security.ParsePermissions(text)
				agg.AddPermissions(perms)
				agg.AddFindings(m.Index, security.PermissionFindings(perms, m.Path))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, WrapFailure(err)
	}

	maxFindings := settings.MaxFindings
	if maxFindings <= 0 {
		maxFindings = security.DefaultMaxFindings
	}
	result = agg.Result(types.ModeArchive, path, maxFindings)
	result.ScanID = uuid.New().String()
	result.StartTime = start
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)

	a.logger.Info("archive analyzed",
		"archive", path,
		"endpoints", len(result.Endpoints),
		"findings", len(result.SecurityFindings),
		"files", result.Summary.FilesScanned,
		"duration", result.Duration)

	return result, nil
}

// WrapFailure keeps the error taxonomy: input errors, policy refusals and
// cancellation pass through, anything else becomes an analysis failure
func WrapFailure(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidInput),
		errors.Is(err, types.ErrPolicyViolation),
		errors.Is(err, types.ErrAnalysisFailed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", types.ErrAnalysisFailed, err)
	}
}
