// Package analysis scores the lexical overlap between a resume and a job
// description and reports the keyword gap between them. All functions are
// pure and deterministic.
package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
)

var nonAlphabetic = regexp.MustCompile(`[^a-zA-Z\s]`)

// normalizeTerms lowercases, strips non-alphabetic characters and removes
// English stop-words, returning the surviving terms.
func normalizeTerms(text string) []string {
	text = strings.ToLower(text)
	text = nonAlphabetic.ReplaceAllString(text, "")
	text = stopwords.CleanString(text, "en", false)
	return strings.Fields(text)
}

// Similarity computes the cosine similarity of the term-frequency vectors of
// both texts over their union vocabulary. The result is in [0, 1]; when
// either text normalizes to zero terms the similarity is defined as 0.0.
func Similarity(a, b string) float64 {
	termsA := normalizeTerms(a)
	termsB := normalizeTerms(b)

	if len(termsA) == 0 || len(termsB) == 0 {
		return 0.0
	}

	freqA := termFrequencies(termsA)
	freqB := termFrequencies(termsB)

	var dot, normA, normB float64
	for term, countA := range freqA {
		dot += countA * freqB[term]
		normA += countA * countA
	}
	for _, countB := range freqB {
		normB += countB * countB
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0.0
	}

	return math.Min(dot/denominator, 1.0)
}

func termFrequencies(terms []string) map[string]float64 {
	freq := make(map[string]float64, len(terms))
	for _, term := range terms {
		freq[term]++
	}
	return freq
}
