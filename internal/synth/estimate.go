package synth

import "strings"

// DefaultWordsPerSecond is the narration pace used for estimates.
const DefaultWordsPerSecond = 2.5

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateSeconds predicts the spoken length of text.
func EstimateSeconds(text string, wordsPerSecond float64) float64 {
	if wordsPerSecond <= 0 {
		wordsPerSecond = DefaultWordsPerSecond
	}
	return float64(WordCount(text)) / wordsPerSecond
}
