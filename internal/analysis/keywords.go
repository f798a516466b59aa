package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	prose "github.com/jdkato/prose/v2"
)

// Default top-N cutoffs. Job descriptions are shorter and denser than
// resumes, hence the asymmetry. Tuning defaults, overridable via config.
const (
	DefaultJobKeywords    = 30
	DefaultResumeKeywords = 50
)

// Assessment is the immutable outcome of comparing a resume against a job
// description, produced once per run.
type Assessment struct {
	Score         float64
	MissingSkills []string
}

// Assess scores the two texts and computes the keyword gap with the given
// cutoffs (zero values fall back to the defaults).
func Assess(jobText, resumeText string, jobN, resumeN int) Assessment {
	return Assessment{
		Score:         Similarity(resumeText, jobText),
		MissingSkills: MissingSkills(jobText, resumeText, jobN, resumeN),
	}
}

// Keywords extracts the topN most salient terms from the text: nouns, proper
// nouns and adjectives, lowercased, stop-words excluded, ranked by frequency
// descending with ties broken by first occurrence.
func Keywords(text string, topN int) []string {
	if topN <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	type stat struct {
		count int
		first int
	}

	stats := make(map[string]*stat)
	order := make([]string, 0)

	for i, tok := range doc.Tokens() {
		if !salientTag(tok.Tag) {
			continue
		}
		word := strings.ToLower(tok.Text)
		if !alphabetic(word) || isStopWord(word) {
			continue
		}
		if s, ok := stats[word]; ok {
			s.count++
			continue
		}
		stats[word] = &stat{count: 1, first: i}
		order = append(order, word)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := stats[order[i]], stats[order[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})

	if len(order) > topN {
		order = order[:topN]
	}

	return order
}

// MissingSkills returns the job keywords absent from the resume keywords.
// The result is ordered by job-keyword rank but callers must treat it as a
// set.
func MissingSkills(jobText, resumeText string, jobN, resumeN int) []string {
	if jobN <= 0 {
		jobN = DefaultJobKeywords
	}
	if resumeN <= 0 {
		resumeN = DefaultResumeKeywords
	}

	resumeSet := make(map[string]bool)
	for _, keyword := range Keywords(resumeText, resumeN) {
		resumeSet[keyword] = true
	}

	var missing []string
	for _, keyword := range Keywords(jobText, jobN) {
		if !resumeSet[keyword] {
			missing = append(missing, keyword)
		}
	}

	return missing
}

// salientTag reports whether the Penn Treebank tag marks a noun, proper noun
// or adjective.
func salientTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ")
}

func alphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isStopWord checks the word against the english stop-word list. CleanString
// reduces a lone stop-word to an empty string.
func isStopWord(word string) bool {
	return strings.TrimSpace(stopwords.CleanString(word, "en", false)) == ""
}
