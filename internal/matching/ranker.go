package matching

import (
	"math"
	"sort"

	"muds-matching-backend/internal/domain"
)

// Weights holds the composite-score blend and the load-balancing ceiling.
// The values were tuned operationally, not derived; treat them as knobs.
type Weights struct {
	Similarity   float64 `yaml:"similarity"`
	Availability float64 `yaml:"availability"`
	Load         float64 `yaml:"load"`
	LoadCeiling  int     `yaml:"load_ceiling"`
}

// DefaultWeights is the 60/20/20 blend with a ceiling of 20 prior
// acceptances, after which the load term bottoms out at zero.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.6, Availability: 0.2, Load: 0.2, LoadCeiling: 20}
}

// DefaultTopN is how many mentors are solicited per offer session.
const DefaultTopN = 3

// Candidate pairs a senior with the historical accepted-offer count the
// load term is computed from.
type Candidate struct {
	Senior        domain.Senior
	AcceptedCount int
}

// RankedMentor is one row of a ranking: the senior, the raw text
// similarity, and the composite score it sorted by.
type RankedMentor struct {
	Senior     domain.Senior
	Similarity float64
	Score      float64
}

// Ranker orders candidate mentors for a seeker by composite score and
// selects the top N. It holds no mutable state beyond configuration, so a
// single instance is safe to share across requests.
type Ranker struct {
	scorer  *Scorer
	weights Weights
	topN    int
}

func NewRanker(scorer *Scorer, weights Weights, topN int) *Ranker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{scorer: scorer, weights: weights, topN: topN}
}

// Rank filters the pool to eligible mentors, scores them, and returns the
// top N ordered by descending composite score. The sort is stable: exact
// ties keep pool order, so identical input always yields identical output.
// Returns domain.ErrNoEligibleMentors when the filter leaves nothing.
func (r *Ranker) Rank(junior *domain.Junior, pool []Candidate, topN int) ([]RankedMentor, error) {
	if topN <= 0 {
		topN = r.topN
	}

	eligible := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.Senior.IsActive && c.Senior.CoversCategory(junior.ConsultationCategory) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, domain.ErrNoEligibleMentors
	}

	docs := make([]string, len(eligible))
	for i, c := range eligible {
		docs[i] = c.Senior.CapabilityDocument()
	}
	similarities := r.scorer.Similarity(junior.ConsultationDocument(), docs)

	ranked := make([]RankedMentor, len(eligible))
	for i, c := range eligible {
		ranked[i] = RankedMentor{
			Senior:     c.Senior,
			Similarity: similarities[i],
			Score:      r.compositeScore(similarities[i], c.Senior.AvailabilityStatus, c.AcceptedCount),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// compositeScore blends similarity, availability, and load into one score
// rounded to 4 decimal places.
func (r *Ranker) compositeScore(similarity float64, availabilityStatus, acceptedCount int) float64 {
	score := similarity*r.weights.Similarity +
		availabilityWeight(availabilityStatus)*r.weights.Availability +
		r.loadWeight(acceptedCount)*r.weights.Load
	return math.Round(score*10000) / 10000
}

// availabilityWeight maps the declared tier to its score contribution.
// Unknown tiers score as constrained rather than failing the ranking.
func availabilityWeight(status int) float64 {
	switch status {
	case domain.AvailabilityOpen:
		return 1.0
	case domain.AvailabilityConstrained:
		return 0.5
	case domain.AvailabilityClosed:
		return 0.1
	default:
		return 0.5
	}
}

// loadWeight decays linearly with past accepted offers and bottoms out at
// zero once the ceiling is reached.
func (r *Ranker) loadWeight(acceptedCount int) float64 {
	ceiling := r.weights.LoadCeiling
	if ceiling <= 0 {
		ceiling = DefaultWeights().LoadCeiling
	}
	w := 1 - float64(acceptedCount)/float64(ceiling)
	if w < 0 {
		return 0
	}
	return w
}
