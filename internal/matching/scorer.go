package matching

import (
	"math"
	"sort"
	"strings"
)

// Tokenizer selects the text segmentation strategy. A deployment picks one
// and keeps it: mixing strategies within a ranking call would make the
// vector dimensions non-comparable.
type Tokenizer string

const (
	// TokenizerChars uses 2- and 3-character n-grams. Works for Japanese
	// text without a morphological analyzer. This is the default.
	TokenizerChars Tokenizer = "chars"
	// TokenizerWords uses whitespace word uni- and bi-grams, for rosters
	// whose free text is already space-segmented.
	TokenizerWords Tokenizer = "words"
)

// DefaultMaxFeatures caps the vocabulary per scoring call.
const DefaultMaxFeatures = 100

// Scorer converts one seeker document and a set of mentor documents into
// cosine similarities over a TF-IDF vector space. The vocabulary is rebuilt
// on every call, so each call is self-contained and deterministic.
type Scorer struct {
	tokenizer   Tokenizer
	maxFeatures int
}

func NewScorer(tokenizer Tokenizer, maxFeatures int) *Scorer {
	if tokenizer != TokenizerWords {
		tokenizer = TokenizerChars
	}
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Scorer{tokenizer: tokenizer, maxFeatures: maxFeatures}
}

// Similarity returns one score in [0,1] per mentor document, in input order.
// An empty seeker document, an empty candidate list, or a degenerate vector
// space all yield a same-length all-zero result: ranking must never hard-fail
// on text processing.
func (s *Scorer) Similarity(seekerDoc string, mentorDocs []string) []float64 {
	scores := make([]float64, len(mentorDocs))
	if strings.TrimSpace(seekerDoc) == "" || len(mentorDocs) == 0 {
		return scores
	}

	docs := make([][]string, 0, len(mentorDocs)+1)
	docs = append(docs, s.tokenize(seekerDoc))
	for _, d := range mentorDocs {
		docs = append(docs, s.tokenize(d))
	}

	vocab := buildVocabulary(docs, s.maxFeatures)
	if len(vocab) == 0 {
		return scores
	}

	idf := inverseDocumentFrequency(docs, vocab)
	seekerVec := vectorize(docs[0], vocab, idf)
	if norm(seekerVec) == 0 {
		return scores
	}
	normalize(seekerVec)

	for i := 1; i < len(docs); i++ {
		vec := vectorize(docs[i], vocab, idf)
		if norm(vec) == 0 {
			continue
		}
		normalize(vec)
		scores[i-1] = clamp01(dot(seekerVec, vec))
	}
	return scores
}

// tokenize collapses whitespace and splits per the configured strategy.
func (s *Scorer) tokenize(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	if s.tokenizer == TokenizerWords {
		tokens := make([]string, 0, len(fields)*2)
		tokens = append(tokens, fields...)
		for i := 0; i+1 < len(fields); i++ {
			tokens = append(tokens, fields[i]+" "+fields[i+1])
		}
		return tokens
	}

	runes := []rune(strings.Join(fields, " "))
	var tokens []string
	for _, n := range []int{2, 3} {
		for i := 0; i+n <= len(runes); i++ {
			tokens = append(tokens, string(runes[i:i+n]))
		}
	}
	return tokens
}

// buildVocabulary selects up to maxFeatures terms by corpus frequency,
// breaking ties lexicographically, and returns term → column index with
// columns in sorted term order. Everything here is deterministic so that
// repeated calls on identical input produce bit-identical vectors.
func buildVocabulary(docs [][]string, maxFeatures int) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, t := range doc {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// inverseDocumentFrequency computes smoothed IDF per vocabulary column:
// ln((1+N)/(1+df)) + 1.
func inverseDocumentFrequency(docs [][]string, vocab map[string]int) []float64 {
	df := make([]int, len(vocab))
	seen := make(map[int]bool, len(vocab))
	for _, doc := range docs {
		for k := range seen {
			delete(seen, k)
		}
		for _, t := range doc {
			if col, ok := vocab[t]; ok && !seen[col] {
				seen[col] = true
				df[col]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for col, d := range df {
		idf[col] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return idf
}

func vectorize(doc []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	for _, t := range doc {
		if col, ok := vocab[t]; ok {
			vec[col] += idf[col]
		}
	}
	return vec
}

func norm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func normalize(vec []float64) {
	n := norm(vec)
	if n == 0 {
		return
	}
	for i := range vec {
		vec[i] /= n
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
