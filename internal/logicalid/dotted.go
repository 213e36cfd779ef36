package logicalid

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// ExtractDottedID applies pattern to name and returns the captured id: the
// group named "id" when present, otherwise the first group.
func ExtractDottedID(name string, pattern *regexp.Regexp) (string, bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	idx := pattern.SubexpIndex("id")
	if idx < 0 {
		idx = 1
	}
	if idx >= len(m) || m[idx] == "" {
		return "", false
	}
	return m[idx], true
}

// CompareDottedIDs orders ids such as 3.b < 3.c.0 < 10.a. Tokens that are
// both all-digit compare as integers, anything else compares as
// case-insensitive text. An id that is a prefix of another sorts first.
func CompareDottedIDs(a, b string) int {
	ta, tb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if c := compareToken(ta[i], tb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	}
	return 0
}

func compareToken(x, y string) int {
	if isDigits(x) && isDigits(y) {
		return compareDigits(x, y)
	}
	return strings.Compare(strings.ToLower(x), strings.ToLower(y))
}

// CanonicalDottedID lowercases text tokens and strips leading zeros from
// numeric ones, so ids that compare equal are also string-equal.
func CanonicalDottedID(id string) string {
	tokens := strings.Split(id, ".")
	for i, tok := range tokens {
		if isDigits(tok) {
			tokens[i] = trimZeros(tok)
		} else {
			tokens[i] = strings.ToLower(tok)
		}
	}
	return strings.Join(tokens, ".")
}

type dotted struct {
	patterns Patterns
}

func (d *dotted) Name() string { return DottedHierarchical }

func (d *dotted) Extract(kind models.MediaKind, name string) (string, bool) {
	re := d.patterns[kind]
	if re == nil {
		re = fallbackPattern
	}
	id, ok := ExtractDottedID(name, re)
	if !ok {
		return "", false
	}
	return CanonicalDottedID(id), true
}

func (d *dotted) Compare(a, b string) int { return CompareDottedIDs(a, b) }

// Validate rejects sibling ids whose tokens at one position disagree on
// being numeric. The comparator would order them by text, which is almost
// never what the author of the filenames meant.
func (d *dotted) Validate(ids []string) error {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, CompareDottedIDs)

	type first struct {
		id      string
		numeric bool
	}
	seen := make(map[string]first)

	for _, id := range sorted {
		tokens := strings.Split(id, ".")
		for i, tok := range tokens {
			parent := strings.ToLower(strings.Join(tokens[:i], "."))
			key := strconv.Itoa(i) + ":" + parent
			numeric := isDigits(tok)

			f, ok := seen[key]
			if !ok {
				seen[key] = first{id: id, numeric: numeric}
				continue
			}
			if f.numeric != numeric {
				return &MixedTokenError{Parent: parent, Position: i, First: f.id, Second: id}
			}
		}
	}
	return nil
}
