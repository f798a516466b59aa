package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityIdenticalTexts(t *testing.T) {
	text := "Designed and shipped distributed systems in Go and Kubernetes."

	assert.InDelta(t, 1.0, Similarity(text, text), 1e-9)
}

func TestSimilarityEmptyTexts(t *testing.T) {
	text := "Senior software engineer with Go experience."

	assert.Equal(t, 0.0, Similarity(text, ""))
	assert.Equal(t, 0.0, Similarity("", text))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarityStopWordsOnly(t *testing.T) {
	// Both sides normalize to zero terms; must not divide by zero.
	assert.Equal(t, 0.0, Similarity("the and of", "it is a"))
}

func TestSimilarityDisjointTexts(t *testing.T) {
	score := Similarity("golang kubernetes terraform", "accounting payroll invoices")

	assert.Equal(t, 0.0, score)
}

func TestSimilarityPartialOverlap(t *testing.T) {
	score := Similarity("Python, SQL", "Python, SQL, Kubernetes")

	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestKeywordsRankedByFrequency(t *testing.T) {
	text := "Kubernetes experience required. Kubernetes clusters and Kubernetes operators. Docker experience helpful."

	keywords := Keywords(text, 5)

	require.NotEmpty(t, keywords)
	assert.Equal(t, "kubernetes", keywords[0])
	assert.Contains(t, keywords, "docker")
}

func TestKeywordsExcludeStopWords(t *testing.T) {
	keywords := Keywords("The quick brown fox jumps over the lazy dog.", 10)

	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "over")
}

func TestMissingSkillsSubsetAndDisjoint(t *testing.T) {
	job := "We need strong Kubernetes, Terraform and Python engineering skills."
	resume := "Python developer with SQL and Linux background."

	jobSet := make(map[string]bool)
	for _, keyword := range Keywords(job, DefaultJobKeywords) {
		jobSet[keyword] = true
	}
	resumeSet := make(map[string]bool)
	for _, keyword := range Keywords(resume, DefaultResumeKeywords) {
		resumeSet[keyword] = true
	}

	missing := MissingSkills(job, resume, 0, 0)

	for _, skill := range missing {
		assert.True(t, jobSet[skill], "missing skill %q not a job keyword", skill)
		assert.False(t, resumeSet[skill], "missing skill %q present in resume keywords", skill)
	}
}

func TestAssessEndToEnd(t *testing.T) {
	resume := "Python, SQL"
	job := "Python, SQL, Kubernetes"

	assessment := Assess(job, resume, 0, 0)

	assert.Greater(t, assessment.Score, 0.0)
	assert.Less(t, assessment.Score, 1.0)
	assert.Contains(t, assessment.MissingSkills, "kubernetes")
}
