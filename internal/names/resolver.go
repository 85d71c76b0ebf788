// Package names resolves todo references typed on the command line.
//
// A reference is either a numeric ID, optionally written "#12", or a
// title. Titles are matched against the cached list in priority order:
// exact, then case-insensitive, then substring.
package names

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/output"
)

// Ref is a parsed todo reference. Exactly one of ID or Title is set.
type Ref struct {
	ID    int64
	Title string
}

// IsID reports whether the reference names a todo by ID.
func (r Ref) IsID() bool {
	return r.ID > 0
}

func (r Ref) String() string {
	if r.IsID() {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Title
}

// Parse parses a single reference. A '#' prefix forces ID parsing.
func Parse(arg string) (Ref, error) {
	s := strings.TrimSpace(arg)
	if s == "" {
		return Ref{}, output.ErrUsage("Empty todo reference")
	}

	if rest, ok := strings.CutPrefix(s, "#"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return Ref{}, output.ErrUsage(fmt.Sprintf("Invalid todo ID %q", arg))
		}
		return Ref{ID: id}, nil
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id <= 0 {
			return Ref{}, output.ErrUsage(fmt.Sprintf("Invalid todo ID %q", arg))
		}
		return Ref{ID: id}, nil
	}

	return Ref{Title: s}, nil
}

// ParseAll parses every argument, stopping at the first bad one.
func ParseAll(args []string) ([]Ref, error) {
	refs := make([]Ref, 0, len(args))
	for _, arg := range args {
		ref, err := Parse(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Resolve returns the ID a reference names.
// IDs pass through unchecked; the sync engine reports unknown IDs itself.
func Resolve(ref Ref, tasks []models.Task) (int64, error) {
	if ref.IsID() {
		return ref.ID, nil
	}

	match, matches := resolve(ref.Title, tasks, func(t models.Task) (int64, string) {
		return t.ID, t.Title
	})
	if match != nil {
		return match.ID, nil
	}

	if len(matches) > 1 {
		labels := make([]string, len(matches))
		for i, m := range matches {
			labels[i] = fmt.Sprintf("#%d %s", m.ID, m.Title)
		}
		return 0, output.ErrAmbiguous("todo", labels)
	}

	suggestions := suggest(ref.Title, tasks, func(t models.Task) string { return t.Title })
	if len(suggestions) > 0 {
		return 0, output.ErrNotFoundHint("Todo", ref.Title, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return 0, output.ErrNotFoundHint("Todo", ref.Title, "Run: todolite list")
}

// ResolveAll resolves refs in order, stopping at the first failure.
func ResolveAll(refs []Ref, tasks []models.Task) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		id, err := Resolve(ref, tasks)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolve performs name resolution in priority order:
// 1. Exact match (case-sensitive)
// 2. Case-insensitive match
// 3. Partial match (contains)
// Returns the single match if unambiguous, or all candidates if ambiguous.
func resolve[T any](input string, items []T, extract func(T) (int64, string)) (*T, []T) {
	inputLower := strings.ToLower(input)

	// Phase 1: Exact match
	var exact []T
	for i := range items {
		_, name := extract(items[i])
		if name == input {
			exact = append(exact, items[i])
		}
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		return nil, exact
	}

	// Phase 2: Case-insensitive match
	var caseMatches []T
	for i := range items {
		_, name := extract(items[i])
		if strings.ToLower(name) == inputLower {
			caseMatches = append(caseMatches, items[i])
		}
	}
	if len(caseMatches) == 1 {
		return &caseMatches[0], nil
	}
	if len(caseMatches) > 1 {
		return nil, caseMatches
	}

	// Phase 3: Partial match (contains)
	var partialMatches []T
	for i := range items {
		_, name := extract(items[i])
		if strings.Contains(strings.ToLower(name), inputLower) {
			partialMatches = append(partialMatches, items[i])
		}
	}
	if len(partialMatches) == 1 {
		return &partialMatches[0], nil
	}
	return nil, partialMatches
}

// suggest returns up to 3 suggestions for similar names.
func suggest[T any](input string, items []T, getName func(T) string) []string {
	inputLower := strings.ToLower(input)
	var suggestions []string

	for _, item := range items {
		name := getName(item)
		nameLower := strings.ToLower(name)

		commonLen := 0
		for i := 0; i < len(inputLower) && i < len(nameLower); i++ {
			if inputLower[i] != nameLower[i] {
				break
			}
			commonLen++
		}

		if commonLen >= 2 || containsWord(nameLower, inputLower) {
			suggestions = append(suggestions, name)
			if len(suggestions) >= 3 {
				break
			}
		}
	}

	return suggestions
}

// containsWord checks if haystack contains any word from needle.
func containsWord(haystack, needle string) bool {
	for _, word := range strings.Fields(needle) {
		if len(word) >= 2 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
