package stock

import (
	"math/rand/v2"

	"github.com/aristath/disposition/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

// PriceChanges is the fixed set of per-period deltas
var PriceChanges = []int{-3, -1, 1, 5}

// Relative weights over PriceChanges, per quality
var (
	priceChangeWeightsGood = []float64{0.2, 0.2, 0.3, 0.3}
	priceChangeWeightsBad  = []float64{0.3, 0.3, 0.2, 0.2}
)

// Quality draw: good with probability 0.25
var (
	qualities      = []domain.Quality{domain.QualityGood, domain.QualityBad}
	qualityWeights = []float64{0.25, 0.75}
)

// Generator draws qualities and price-change histories. Every draw comes from
// the single source handed in, so seeding that source makes a run reproducible.
type Generator struct {
	quality distuv.Categorical
	deltas  map[domain.Quality]distuv.Categorical
}

// NewGenerator creates a generator on the shared random source
func NewGenerator(src rand.Source) *Generator {
	return &Generator{
		quality: distuv.NewCategorical(qualityWeights, src),
		deltas: map[domain.Quality]distuv.Categorical{
			domain.QualityGood: distuv.NewCategorical(priceChangeWeightsGood, src),
			domain.QualityBad:  distuv.NewCategorical(priceChangeWeightsBad, src),
		},
	}
}

// History draws HistoryLength deltas with replacement using the quality's weights.
// Anything other than good uses the bad weights.
func (g *Generator) History(quality domain.Quality) []int {
	dist, ok := g.deltas[quality]
	if !ok {
		dist = g.deltas[domain.QualityBad]
	}

	history := make([]int, HistoryLength)
	for i := range history {
		history[i] = PriceChanges[int(dist.Rand())]
	}
	return history
}

// Quality draws a quality label
func (g *Generator) Quality() domain.Quality {
	return qualities[int(g.quality.Rand())]
}

// NewRandom creates a stock at the fixed initial price with a random quality
// and a history drawn for that quality
func (g *Generator) NewRandom(name string, periodGenerated int) *Stock {
	quality := g.Quality()
	return &Stock{
		name:            name,
		initialPrice:    InitialPrice,
		quality:         quality,
		history:         g.History(quality),
		periodGenerated: periodGenerated,
	}
}
