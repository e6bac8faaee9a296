// Package webscan runs the web-app variant of the analysis: it fetches a page
// and its scripts through the SSRF-safe fetcher, extracts call sites and
// endpoints, and probes conventional API documentation locations.
package webscan

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/su1ph3r/effodio/internal/analyzer"
	"github.com/su1ph3r/effodio/internal/classifier"
	"github.com/su1ph3r/effodio/internal/fetch"
	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/internal/security"
	"github.com/su1ph3r/effodio/pkg/types"
)

// Fetcher performs policy-checked GETs. *fetch.SafeFetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, maxBytes int64) (*fetch.Response, error)
}

// Scanner runs web-app scans. Like the archive analyzer it keeps no per-scan
// state and may serve concurrent calls.
type Scanner struct {
	config  *types.Config
	fetcher Fetcher
	logger  hclog.Logger
}

// New creates a web scanner. A nil fetcher gets a SafeFetcher built from
// cfg.Fetch.
func New(cfg *types.Config, fetcher Fetcher, logger hclog.Logger) *Scanner {
	if cfg == nil {
		cfg = types.DefaultConfig()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if fetcher == nil {
		fetcher = fetch.New(fetch.OptionsFromConfig(cfg.Fetch, logger))
	}
	return &Scanner{
		config:  cfg,
		fetcher: fetcher,
		logger:  logger.Named("webscan"),
	}
}

// scan is the state of one pass
type scan struct {
	agg       *analyzer.Aggregator
	extractor *analyzer.Extractor
	base      *url.URL
	fetched   atomic.Int64
	failed    atomic.Int64
}

// Scan fetches rawURL and analyzes the page, its scripts and any API
// documentation found on its origin. A policy refusal or failure on the page
// itself aborts the scan; failures on scripts and documentation probes only
// drop their contribution.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (result *types.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan panicked", "url", rawURL, "panic", r, "stack", string(debug.Stack()))
			result, err = nil, fmt.Errorf("%w: %v", types.ErrAnalysisFailed, r)
		}
	}()

	if err := types.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	start := time.Now()
	settings := s.config.Fetch

	resp, err := s.fetcher.Fetch(ctx, rawURL, settings.MaxHTMLBytes)
	if err != nil {
		return nil, analyzer.WrapFailure(err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s returned status %d", types.ErrInvalidInput, rawURL, resp.StatusCode)
	}

	base, err := url.Parse(resp.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	pg, err := parsePage(resp.Body, base)
	if err != nil {
		return nil, analyzer.WrapFailure(err)
	}

	x := analyzer.NewExtractor(s.config.Analysis.URLContextRadius, s.config.Analysis.UIContextRadius)
	x.Classifier = classifier.NewWeb()
	x.Resolve = endpointResolver(base)
	sc := &scan{agg: analyzer.NewAggregator(), extractor: x, base: base}

	// walk order: forms, markup, inline scripts, external scripts, docs
	index := 0
	sc.addForms(index, resp.URL, pg.forms)
	index++

	sc.agg.FileScanned()
	x.Process(sc.agg, analyzer.Buffer{Index: index, Location: resp.URL, Source: types.SourceHTML, Text: strings.ToValidUTF8(pg.markup, "")})
	index++

	for i, body := range pg.inline {
		sc.agg.FileScanned()
		sc.processScript(analyzer.Buffer{
			Index:    index,
			Location: resp.URL + "#inline-" + strconv.Itoa(i+1),
			Source:   types.SourceInlineScript,
			Text:     strings.ToValidUTF8(body, ""),
		})
		index++
	}

	scripts := pg.scripts
	if limit := settings.MaxScripts; limit > 0 && len(scripts) > limit {
		s.logger.Info("script limit reached", "found", len(scripts), "fetching", limit)
		scripts = scripts[:limit]
	}
	if err := s.fetchScripts(ctx, sc, scripts, index); err != nil {
		return nil, analyzer.WrapFailure(err)
	}
	index += len(scripts)

	if settings.ProbeDocs {
		if err := s.probeDocs(ctx, sc, index); err != nil {
			return nil, analyzer.WrapFailure(err)
		}
	}

	maxFindings := s.config.Analysis.MaxFindings
	if maxFindings <= 0 {
		maxFindings = security.DefaultMaxFindings
	}
	result = sc.agg.Result(types.ModeWebApp, rawURL, maxFindings)
	result.ScanID = uuid.New().String()
	result.ScriptURLs = reportedScripts(pg.scripts, settings.MaxReportedScript)
	result.Summary.ScriptsFound = len(pg.scripts)
	result.Summary.ScriptsFetched = int(sc.fetched.Load())
	result.Summary.ScriptsFailed = int(sc.failed.Load())
	result.StartTime = start
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)

	s.logger.Info("web app scanned",
		"url", rawURL,
		"endpoints", len(result.Endpoints),
		"findings", len(result.SecurityFindings),
		"scripts", result.Summary.ScriptsFetched,
		"failed", result.Summary.ScriptsFailed,
		"duration", result.Duration)

	return result, nil
}

// processScript extracts call sites first so their verb, headers and body
// shape stick, then runs the generic pass over what they did not cover
func (sc *scan) processScript(buf analyzer.Buffer) {
	sites := FindCallSites(buf.Text)
	for _, cs := range sites {
		ep, ok := sc.extractor.CandidateAs(cs.Method, cs.URL, buf.Text, cs.Start, buf.Location)
		if !ok {
			continue
		}
		ep.Source = buf.Source
		ep.Headers = cs.Headers
		ep.BodyType = cs.BodyType
		if cs.BodyType != "" {
			classifier.AddPayloadIndicator(&ep, cs.BodyType)
		}
		sc.agg.AddEndpoint(ep, analyzer.Order{Source: buf.Index, Offset: cs.Start})
	}

	covered := func(m patterns.Match) bool {
		for _, cs := range sites {
			if cs.Covers(m.Start) {
				return true
			}
		}
		return false
	}
	sc.extractor.ProcessWith(sc.agg, buf, covered)
	sc.agg.AddDataOperations(buf.Index, FindDataOperations(buf.Text, buf.Source))
}

// addForms turns each form into an endpoint tagged with the form source
func (sc *scan) addForms(index int, location string, forms []form) {
	for i, f := range forms {
		ep, ok := sc.extractor.CandidateAs(f.method, f.action, f.html, 0, location)
		if !ok {
			continue
		}
		ep.Source = types.SourceForm
		if f.method != types.MethodGET {
			ep.BodyType = formBodyType(f.enctype)
			classifier.AddPayloadIndicator(&ep, ep.BodyType)
		}
		sc.agg.AddEndpoint(ep, analyzer.Order{Source: index, Offset: i})
	}
}

// fetchScripts fetches and analyzes external scripts concurrently. A failed
// fetch is logged and counted, never fatal.
func (s *Scanner) fetchScripts(ctx context.Context, sc *scan, scripts []string, firstIndex int) error {
	settings := s.config.Fetch
	workers := settings.Concurrency
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, scriptURL := range scripts {
		i, scriptURL := i, scriptURL
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("script processing panicked", "script", scriptURL, "panic", r)
					err = fmt.Errorf("%w: %s: %v", types.ErrAnalysisFailed, scriptURL, r)
				}
			}()

			fctx, cancel := context.WithTimeout(ctx, s.timeout())
			defer cancel()

			resp, err := s.fetcher.Fetch(fctx, scriptURL, settings.MaxScriptBytes)
			if err == nil && !resp.OK() {
				err = fmt.Errorf("status %d", resp.StatusCode)
			}
			if err != nil {
				s.logger.Warn("script skipped", "script", scriptURL, "error", err)
				sc.failed.Add(1)
				sc.agg.FileSkipped(1)
				return nil
			}
			sc.fetched.Add(1)
			sc.agg.FileScanned()

			sc.processScript(analyzer.Buffer{
				Index:    firstIndex + i,
				Location: scriptURL,
				Source:   scriptURL,
				Text:     strings.ToValidUTF8(string(resp.Body), ""),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// probeDocs tries every documentation location on the page's origin
func (s *Scanner) probeDocs(ctx context.Context, sc *scan, firstIndex int) error {
	workers := s.config.Fetch.Concurrency
	if workers < 1 {
		workers = 1
	}
	origin := sc.base.Scheme + "://" + sc.base.Host

	var g errgroup.Group
	g.SetLimit(workers)
	for i, docURL := range docURLs(sc.base) {
		i, docURL := i, docURL
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("doc probe panicked", "url", docURL, "panic", r)
					err = fmt.Errorf("%w: %s: %v", types.ErrAnalysisFailed, docURL, r)
				}
			}()

			fctx, cancel := context.WithTimeout(ctx, s.timeout())
			defer cancel()

			hit, ok := s.probeDoc(fctx, docURL)
			if !ok {
				return nil
			}
			s.logger.Info("api documentation found", "url", docURL, "operations", len(hit.operations))
			for j, ep := range docEndpoints(sc.extractor.Classifier, origin, hit) {
				sc.agg.AddEndpoint(ep, analyzer.Order{Source: firstIndex + i, Offset: j})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// timeout bounds each secondary fetch
func (s *Scanner) timeout() time.Duration {
	if t := s.config.Fetch.Timeout; t > 0 {
		return t
	}
	return types.DefaultConfig().Fetch.Timeout
}

func reportedScripts(scripts []string, limit int) []string {
	if limit > 0 && len(scripts) > limit {
		scripts = scripts[:limit]
	}
	out := make([]string, len(scripts))
	copy(out, scripts)
	return out
}
