package webscan

import (
	"sort"
	"strings"

	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

const (
	snippetTail   = 80
	snippetLength = 120
)

// FindDataOperations reports ORM verb calls and SQL literals passed to
// query calls, ordered by offset
func FindDataOperations(text, source string) []types.DataOperation {
	type located struct {
		start int
		op    types.DataOperation
	}
	var found []located

	for _, rule := range patterns.ORMRules {
		for _, m := range rule.FindAll(text) {
			target, verb := m.Groups[1], m.Groups[2]
			if rule.Name == "model" && patterns.IsBuiltinReceiver(target) {
				continue
			}
			found = append(found, located{m.Start, types.DataOperation{
				Kind:      types.DataOpORM,
				Target:    target,
				Operation: patterns.ORMVerbOp(verb),
				Source:    source,
				Snippet:   snippet(text, m.Start, m.End),
			}})
		}
	}

	for _, m := range patterns.SQLLiteralRule.FindAll(text) {
		found = append(found, located{m.Start, types.DataOperation{
			Kind:      types.DataOpSQL,
			Target:    patterns.SQLStatementTarget(m.Value),
			Operation: patterns.SQLStatementOp(m.Value),
			Source:    source,
			Snippet:   snippet(text, m.Start, m.End),
		}})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	ops := make([]types.DataOperation, len(found))
	for i, f := range found {
		ops[i] = f.op
	}
	return ops
}

// snippet is the matched call plus a little trailing context, whitespace
// collapsed
func snippet(text string, start, end int) string {
	to := end + snippetTail
	if to > len(text) {
		to = len(text)
	}
	s := strings.ToValidUTF8(strings.Join(strings.Fields(text[start:to]), " "), "")
	if r := []rune(s); len(r) > snippetLength {
		return string(r[:snippetLength])
	}
	return s
}
