// Package patterns holds the static detection corpus: tagged rules grouped into
// families and evaluated by a small set of generic matchers.
package patterns

import (
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Matcher is a compiled pattern. Offsets are byte offsets into the searched
// string, laid out like regexp.FindAllStringSubmatchIndex.
type Matcher interface {
	MatchString(text string) bool
	FindAllSubmatchIndex(text string) [][]int
}

// Rule is a named detection pattern. Group selects the capture group that
// holds the extracted value; 0 means the whole match.
type Rule struct {
	Name    string
	Pattern Matcher
	Group   int
}

// Match is one occurrence of a rule inside a buffer
type Match struct {
	Rule  *Rule
	Start int // start of the whole match
	End   int
	Value string // text of the selected group

	// Groups holds every capture group; unmatched groups are empty
	Groups []string
}

// NewRule builds a rule backed by the standard regexp engine
func NewRule(name, pattern string, group int) *Rule {
	return &Rule{Name: name, Pattern: stdMatcher{regexp.MustCompile(pattern)}, Group: group}
}

// NewLookaroundRule builds a rule backed by regexp2 for patterns that need
// lookahead or lookbehind
func NewLookaroundRule(name, pattern string, group int) *Rule {
	re := regexp2.MustCompile(pattern, regexp2.None)
	re.MatchTimeout = 2 * time.Second
	return &Rule{Name: name, Pattern: lookaroundMatcher{re}, Group: group}
}

// Matches reports whether the rule matches anywhere in text
func (r *Rule) Matches(text string) bool {
	return r.Pattern.MatchString(text)
}

// FindAll returns every non-overlapping match of the rule in text
func (r *Rule) FindAll(text string) []Match {
	idx := r.Pattern.FindAllSubmatchIndex(text)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(idx))
	for _, loc := range idx {
		g := r.Group
		if 2*g+1 >= len(loc) || loc[2*g] < 0 {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		matches = append(matches, Match{
			Rule:   r,
			Start:  loc[0],
			End:    loc[1],
			Value:  text[loc[2*g]:loc[2*g+1]],
			Groups: groups,
		})
	}
	return matches
}

// FirstMatching returns the first rule in declared order that matches text
func FirstMatching(rules []*Rule, text string) *Rule {
	for _, r := range rules {
		if r.Matches(text) {
			return r
		}
	}
	return nil
}

// MatchingNames returns the names of all rules matching text, in declared order
func MatchingNames(rules []*Rule, text string) []string {
	var names []string
	for _, r := range rules {
		if r.Matches(text) {
			names = append(names, r.Name)
		}
	}
	return names
}

// RuleSet ties a group of rules to the effect they imply
type RuleSet[T any] struct {
	Effect T
	Rules  []*Rule
}

// FirstEffect evaluates sets in declared order and returns the effect of the
// first set with any matching rule
func FirstEffect[T any](sets []RuleSet[T], text string) (T, bool) {
	for _, s := range sets {
		if FirstMatching(s.Rules, text) != nil {
			return s.Effect, true
		}
	}
	var zero T
	return zero, false
}

type stdMatcher struct {
	re *regexp.Regexp
}

func (m stdMatcher) MatchString(text string) bool {
	return m.re.MatchString(text)
}

func (m stdMatcher) FindAllSubmatchIndex(text string) [][]int {
	return m.re.FindAllStringSubmatchIndex(text, -1)
}

// lookaroundMatcher adapts regexp2, whose offsets are rune based, to byte offsets
type lookaroundMatcher struct {
	re *regexp2.Regexp
}

func (m lookaroundMatcher) MatchString(text string) bool {
	ok, err := m.re.MatchString(text)
	return err == nil && ok
}

func (m lookaroundMatcher) FindAllSubmatchIndex(text string) [][]int {
	runes := []rune(text)
	offsets := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offsets[i] = pos
		pos += len(string(r))
	}
	offsets[len(runes)] = pos

	var out [][]int
	match, err := m.re.FindRunesMatch(runes)
	for err == nil && match != nil {
		groups := match.Groups()
		loc := make([]int, 2*len(groups))
		for i, g := range groups {
			if len(g.Captures) == 0 {
				loc[2*i], loc[2*i+1] = -1, -1
				continue
			}
			loc[2*i] = offsets[g.Index]
			loc[2*i+1] = offsets[g.Index+g.Length]
		}
		out = append(out, loc)
		match, err = m.re.FindNextMatch(match)
	}
	return out
}
