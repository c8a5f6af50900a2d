package analysis

// noiseWords is the fixed set of common function words excluded from the
// keyword ranking. A fixed list keeps the filter deterministic; a
// statistical stop-word model would trade testability for recall.
var noiseWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"the", "a", "an",
		"and", "or", "but", "nor", "so", "yet",
		"is", "are", "was", "were", "be", "been", "being",
		"am", "do", "does", "did", "have", "has", "had",
		"will", "would", "can", "could", "shall", "should", "may", "might", "must",
		"to", "of", "in", "on", "at", "by", "for", "with", "from",
		"up", "down", "out", "off", "over", "under", "into", "onto",
		"about", "above", "below", "between", "through", "during",
		"this", "that", "these", "those",
		"i", "you", "he", "she", "it", "we", "they",
		"me", "him", "her", "us", "them",
		"my", "your", "his", "its", "our", "their",
		"as", "if", "then", "than", "too", "very",
		"not", "no", "nor",
		"there", "here", "when", "where", "why", "how",
		"all", "each", "both", "more", "most", "other", "some", "such",
	} {
		noiseWords[w] = true
	}
}

// IsNoiseWord reports whether word is in the fixed noise-word set.
// The word is expected to be lower-case.
func IsNoiseWord(word string) bool {
	return noiseWords[word]
}
