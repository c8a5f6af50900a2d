// Package analysis derives summary statistics from transcript text: raw word
// counts and a ranked, noise-filtered keyword list. All functions are pure
// and safe on empty input.
package analysis

import (
	"sort"
	"strings"
)

// WordFrequency is one (word, count) pair in a frequency sequence.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// punctuationCutset is stripped from both ends of each token before counting.
const punctuationCutset = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// minKeywordCount is the frequency a word must exceed to survive TopWords.
const minKeywordCount = 2

// WordCount returns the number of whitespace-delimited tokens in text.
// Punctuation is not stripped at this stage; "world!" counts as one token.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CountWordFrequency lower-cases text, splits on whitespace, strips leading
// and trailing punctuation from each token, and counts occurrences of each
// surviving word. The result is ordered by first occurrence, not frequency.
func CountWordFrequency(text string) []WordFrequency {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return []WordFrequency{}
	}

	index := make(map[string]int, len(tokens))
	pairs := make([]WordFrequency, 0, len(tokens))
	for _, tok := range tokens {
		word := strings.Trim(tok, punctuationCutset)
		if word == "" {
			continue
		}
		if i, ok := index[word]; ok {
			pairs[i].Count++
			continue
		}
		index[word] = len(pairs)
		pairs = append(pairs, WordFrequency{Word: word, Count: 1})
	}
	return pairs
}

// RankByFrequencyDesc returns pairs sorted by count descending. The sort is
// stable, so pairs with equal counts keep their relative input order.
//
// The input is validated defensively: any pair with an empty word or a
// non-positive count makes the whole result empty rather than faulting.
// Callers should not construct such data, but the contract holds for any
// caller that does.
func RankByFrequencyDesc(pairs []WordFrequency) []WordFrequency {
	for _, p := range pairs {
		if p.Word == "" || p.Count <= 0 {
			return []WordFrequency{}
		}
	}

	ranked := make([]WordFrequency, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// TopWords returns the ranked keyword list for text: words are counted,
// then words occurring at most minKeywordCount times and words in the noise
// set are dropped, and the survivors are ranked by frequency. Filtering
// happens before ranking so discarded words never influence tie-break order.
func TopWords(text string) []WordFrequency {
	counted := CountWordFrequency(text)
	kept := make([]WordFrequency, 0, len(counted))
	for _, p := range counted {
		if p.Count <= minKeywordCount || noiseWords[p.Word] {
			continue
		}
		kept = append(kept, p)
	}
	return RankByFrequencyDesc(kept)
}
