package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	excerptSentences = 2
	excerptMaxChars  = 240
)

var (
	sentenceRE = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	wordRE     = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// Excerpt picks the highest-scoring sentences of text, by average word frequency,
// and returns them in their original order within maxChars runes. Text that already
// fits is returned unchanged.
func Excerpt(text string, sentences, maxChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	parts := sentenceRE.FindAllString(text, -1)
	freq := map[string]int{}
	for _, s := range parts {
		for _, w := range wordRE.FindAllString(strings.ToLower(s), -1) {
			if utf8.RuneCountInString(w) > 2 {
				freq[w]++
			}
		}
	}

	type scored struct {
		idx   int
		score float64
		text  string
	}
	ranked := make([]scored, 0, len(parts))
	for i, s := range parts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		words := wordRE.FindAllString(strings.ToLower(s), -1)
		sum := 0
		for _, w := range words {
			sum += freq[w]
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(sum) / float64(len(words))
		}
		ranked = append(ranked, scored{idx: i, score: score, text: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if sentences > len(ranked) {
		sentences = len(ranked)
	}
	chosen := ranked[:sentences]
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].idx < chosen[j].idx })

	var out []string
	n := 0
	for _, c := range chosen {
		l := utf8.RuneCountInString(c.text)
		if n > 0 && n+1+l > maxChars {
			break
		}
		out = append(out, c.text)
		n += l + 1
	}
	return truncateRunes(strings.Join(out, " "), maxChars)
}

// truncateRunes cuts s to at most limit runes, ending with an ellipsis when cut.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit <= 1 {
		return string(r[:limit])
	}
	return strings.TrimSpace(string(r[:limit-1])) + "…"
}
