package analyzer

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/su1ph3r/effodio/internal/security"
	"github.com/su1ph3r/effodio/pkg/types"
)

// Order locates a record in walk order: the source index (archive member or
// fetched script) and the byte offset of the match inside it
type Order struct {
	Source int
	Offset int
}

// Before reports whether o precedes other in walk order
func (o Order) Before(other Order) bool {
	if o.Source != other.Source {
		return o.Source < other.Source
	}
	return o.Offset < other.Offset
}

type endpointEntry struct {
	endpoint types.Endpoint
	order    Order
}

type uiEntry struct {
	component types.UIComponent
	order     Order
}

// Aggregator accumulates the records of one analysis pass. All methods are
// safe for concurrent use. When two goroutines report the same endpoint key,
// the record that comes first in walk order survives regardless of which
// arrived first.
type Aggregator struct {
	mu         sync.Mutex
	endpoints  map[string]endpointEntry
	components map[string]uiEntry
	findings   map[int][]types.SecurityFinding
	perms      map[string]struct{}
	libs       map[string]struct{}
	dataOps    map[int][]types.DataOperation

	hardcodedKeys  atomic.Int64
	weakAlgorithms atomic.Int64
	sslIssues      atomic.Int64
	filesScanned   atomic.Int64
	filesSkipped   atomic.Int64
}

// NewAggregator creates an empty, pass-scoped aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		endpoints:  make(map[string]endpointEntry),
		components: make(map[string]uiEntry),
		findings:   make(map[int][]types.SecurityFinding),
		perms:      make(map[string]struct{}),
		libs:       make(map[string]struct{}),
		dataOps:    make(map[int][]types.DataOperation),
	}
}

// AddEndpoint records ep unless an earlier record with the same key exists.
// It reports whether ep is now the surviving record.
func (a *Aggregator) AddEndpoint(ep types.Endpoint, order Order) bool {
	key := ep.Key()

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.endpoints[key]; ok && !order.Before(existing.order) {
		return false
	}
	a.endpoints[key] = endpointEntry{endpoint: ep, order: order}
	return true
}

// AddUIComponent records c unless its key was already seen earlier
func (a *Aggregator) AddUIComponent(c types.UIComponent, order Order) {
	if len(c.Listeners) == 0 {
		return
	}
	key := c.Key()

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.components[key]; ok && !order.Before(existing.order) {
		return
	}
	a.components[key] = uiEntry{component: c, order: order}
}

// AddFindings appends findings reported for one source, keeping their order
func (a *Aggregator) AddFindings(source int, findings []types.SecurityFinding) {
	if len(findings) == 0 {
		return
	}
	a.mu.Lock()
	a.findings[source] = append(a.findings[source], findings...)
	a.mu.Unlock()
}

// AddCounters accumulates security tallies
func (a *Aggregator) AddCounters(c types.Counters) {
	a.hardcodedKeys.Add(int64(c.HardcodedKeys))
	a.weakAlgorithms.Add(int64(c.WeakAlgorithms))
	a.sslIssues.Add(int64(c.SSLIssues))
}

// AddPermissions records declared permissions
func (a *Aggregator) AddPermissions(perms []string) {
	a.mu.Lock()
	for _, p := range perms {
		a.perms[p] = struct{}{}
	}
	a.mu.Unlock()
}

// AddLibraries records detected third-party libraries
func (a *Aggregator) AddLibraries(libs []string) {
	a.mu.Lock()
	for _, l := range libs {
		a.libs[l] = struct{}{}
	}
	a.mu.Unlock()
}

// AddDataOperations records ORM calls and SQL literals found in one source
func (a *Aggregator) AddDataOperations(source int, ops []types.DataOperation) {
	if len(ops) == 0 {
		return
	}
	a.mu.Lock()
	a.dataOps[source] = append(a.dataOps[source], ops...)
	a.mu.Unlock()
}

// FileScanned counts a processed source
func (a *Aggregator) FileScanned() { a.filesScanned.Add(1) }

// FileSkipped counts n sources that could not be read
func (a *Aggregator) FileSkipped(n int) { a.filesSkipped.Add(int64(n)) }

// Endpoints returns the surviving endpoints ordered by confidence (high
// first), then method, then url
func (a *Aggregator) Endpoints() []types.Endpoint {
	a.mu.Lock()
	endpoints := make([]types.Endpoint, 0, len(a.endpoints))
	for _, e := range a.endpoints {
		endpoints = append(endpoints, e.endpoint)
	}
	a.mu.Unlock()

	SortEndpoints(endpoints)
	return endpoints
}

// SortEndpoints applies the output ordering in place
func SortEndpoints(endpoints []types.Endpoint) {
	sort.Slice(endpoints, func(i, j int) bool {
		ci, cj := types.ConfidenceRank(endpoints[i].Confidence), types.ConfidenceRank(endpoints[j].Confidence)
		if ci != cj {
			return ci < cj
		}
		if endpoints[i].Method != endpoints[j].Method {
			return endpoints[i].Method < endpoints[j].Method
		}
		return endpoints[i].URL < endpoints[j].URL
	})
}

// Result assembles the final record. Findings are ordered by severity, ties
// in walk order, and truncated to maxFindings.
func (a *Aggregator) Result(mode, target string, maxFindings int) *types.AnalysisResult {
	endpoints := a.Endpoints()

	a.mu.Lock()
	uiEntries := make([]uiEntry, 0, len(a.components))
	for _, e := range a.components {
		uiEntries = append(uiEntries, e)
	}

	findings := flatten(a.findings)
	dataOps := flatten(a.dataOps)
	perms := sortedSet(a.perms)
	libs := sortedSet(a.libs)
	a.mu.Unlock()

	sort.Slice(uiEntries, func(i, j int) bool {
		return uiEntries[i].order.Before(uiEntries[j].order)
	})
	components := make([]types.UIComponent, len(uiEntries))
	for i, e := range uiEntries {
		components[i] = e.component
	}

	findings = security.Finalize(findings, maxFindings)

	counters := types.Counters{
		HardcodedKeys:  int(a.hardcodedKeys.Load()),
		WeakAlgorithms: int(a.weakAlgorithms.Load()),
		SSLIssues:      int(a.sslIssues.Load()),
	}
	summary := types.NewAnalysisSummary(endpoints, findings, counters)
	summary.FilesScanned = int(a.filesScanned.Load())
	summary.FilesSkipped = int(a.filesSkipped.Load())

	return &types.AnalysisResult{
		Mode:             mode,
		Target:           target,
		Endpoints:        endpoints,
		UIComponents:     components,
		SecurityFindings: findings,
		Permissions:      perms,
		Libraries:        libs,
		DataOperations:   dataOps,
		Summary:          summary,
	}
}

// flatten concatenates per-source records in source order
func flatten[T any](bySource map[int][]T) []T {
	sources := make([]int, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Ints(sources)
	var out []T
	for _, s := range sources {
		out = append(out, bySource[s]...)
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
