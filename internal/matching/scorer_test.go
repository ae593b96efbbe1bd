package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorer_Similarity_IdenticalDocuments(t *testing.T) {
	s := NewScorer(TokenizerChars, DefaultMaxFeatures)

	doc := "機械学習の研究テーマ相談 データ分析"
	scores := s.Similarity(doc, []string{doc, "就職活動のエントリーシート添削"})

	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.Less(t, scores[1], scores[0])
}

func TestScorer_Similarity_EmptySeekerDocument(t *testing.T) {
	s := NewScorer(TokenizerChars, DefaultMaxFeatures)

	scores := s.Similarity("   ", []string{"研究相談", "就活相談"})

	assert.Equal(t, []float64{0, 0}, scores)
}

func TestScorer_Similarity_NoCandidates(t *testing.T) {
	s := NewScorer(TokenizerChars, DefaultMaxFeatures)

	scores := s.Similarity("研究相談", nil)

	assert.Empty(t, scores)
}

func TestScorer_Similarity_EmptyMentorDocument(t *testing.T) {
	s := NewScorer(TokenizerChars, DefaultMaxFeatures)

	scores := s.Similarity("研究テーマの相談", []string{"", "研究テーマの相談"})

	require.Len(t, scores, 2)
	assert.Zero(t, scores[0])
	assert.InDelta(t, 1.0, scores[1], 1e-9)
}

func TestScorer_Similarity_Deterministic(t *testing.T) {
	s := NewScorer(TokenizerChars, DefaultMaxFeatures)

	seeker := "自然言語処理の研究テーマについて相談したい 形態素解析 深層学習"
	mentors := []string{
		"自然言語処理 深層学習 大規模言語モデル",
		"データベース 分散システム",
		"就職活動 面接対策 エントリーシート",
	}

	first := s.Similarity(seeker, mentors)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, s.Similarity(seeker, mentors))
	}
}

func TestScorer_Similarity_WordTokenizer(t *testing.T) {
	s := NewScorer(TokenizerWords, DefaultMaxFeatures)

	scores := s.Similarity("machine learning research",
		[]string{"machine learning research", "job hunting advice"})

	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.Zero(t, scores[1])
}

func TestScorer_Similarity_RangeBounds(t *testing.T) {
	s := NewScorer(TokenizerChars, 10)

	scores := s.Similarity("研究の進め方", []string{
		"研究の進め方", "研究", "進め方", "就活", "",
	})

	for i, sc := range scores {
		assert.GreaterOrEqual(t, sc, 0.0, "score %d", i)
		assert.LessOrEqual(t, sc, 1.0, "score %d", i)
	}
}

func TestScorer_MaxFeaturesCapsVocabulary(t *testing.T) {
	docs := [][]string{
		{"a", "a", "a", "b", "b", "c"},
		{"d", "e"},
	}

	vocab := buildVocabulary(docs, 3)

	require.Len(t, vocab, 3)
	// Highest counts survive; among the count-1 terms "c" wins the
	// lexicographic tiebreak over "d" and "e".
	assert.Contains(t, vocab, "a")
	assert.Contains(t, vocab, "b")
	assert.Contains(t, vocab, "c")
}

func TestScorer_DefaultsApplied(t *testing.T) {
	s := NewScorer("nonsense", -5)

	assert.Equal(t, TokenizerChars, s.tokenizer)
	assert.Equal(t, DefaultMaxFeatures, s.maxFeatures)
}
