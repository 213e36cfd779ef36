package synth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text into chunks of at most maxChars characters, packing
// whole paragraphs greedily. A paragraph longer than maxChars is split at
// sentence ends, then at spaces, then hard. Empty chunks are never
// returned. maxChars < 1 returns the trimmed text as a single chunk.
func Split(text string, maxChars int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if maxChars < 1 {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if runeLen(para) <= maxChars {
			pieces = append(pieces, para)
			continue
		}
		pieces = append(pieces, splitLong(para, maxChars)...)
	}

	return pack(pieces, "\n\n", maxChars)
}

// pack joins pieces with sep while the result stays within maxChars.
func pack(pieces []string, sep string, maxChars int) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		size = 0
	}

	sepLen := runeLen(sep)
	for _, p := range pieces {
		n := runeLen(p)
		if size > 0 && size+sepLen+n > maxChars {
			flush()
		}
		if size > 0 {
			current.WriteString(sep)
			size += sepLen
		}
		current.WriteString(p)
		size += n
	}
	flush()
	return chunks
}

func splitLong(para string, maxChars int) []string {
	var parts []string
	for _, s := range sentences(para) {
		if runeLen(s) <= maxChars {
			parts = append(parts, s)
			continue
		}
		for _, w := range strings.Fields(s) {
			parts = append(parts, hardSplit(w, maxChars)...)
		}
	}
	return pack(parts, " ", maxChars)
}

// sentences splits after '.', '!' or '?' followed by whitespace.
func sentences(s string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		if strings.ContainsRune(".!?", runes[i]) && unicode.IsSpace(runes[i+1]) {
			if t := strings.TrimSpace(string(runes[start : i+1])); t != "" {
				out = append(out, t)
			}
			start = i + 1
		}
	}
	if t := strings.TrimSpace(string(runes[start:])); t != "" {
		out = append(out, t)
	}
	return out
}

func hardSplit(w string, maxChars int) []string {
	runes := []rune(w)
	var out []string
	for len(runes) > maxChars {
		out = append(out, string(runes[:maxChars]))
		runes = runes[maxChars:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
