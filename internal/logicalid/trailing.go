package logicalid

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

var reTrailingDigits = regexp.MustCompile(`(\d+)$`)

// ExtractTrailingInt returns the integer formed by the trailing digit run of
// the filename stem, or 0 when the stem does not end in a digit.
// Runs too large for an int saturate at math.MaxInt.
func ExtractTrailingInt(name string) int {
	n, err := strconv.Atoi(trailingDigits(name))
	if err != nil {
		return math.MaxInt
	}
	return n
}

// trailingDigits returns the trailing digit run of the stem without leading
// zeros, "0" when there is none.
func trailingDigits(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	m := reTrailingDigits.FindString(stem)
	return trimZeros(m)
}

type trailingInt struct{}

func (trailingInt) Name() string { return TrailingInteger }

// Extract never fails: a name without trailing digits has id "0".
func (trailingInt) Extract(_ models.MediaKind, name string) (string, bool) {
	return trailingDigits(name), true
}

func (trailingInt) Compare(a, b string) int {
	if isDigits(a) && isDigits(b) {
		return compareDigits(a, b)
	}
	return strings.Compare(a, b)
}

func (trailingInt) Validate([]string) error { return nil }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

// compareDigits compares two digit strings numerically without parsing,
// so arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	a, b = trimZeros(a), trimZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
