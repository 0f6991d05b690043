package stock

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/aristath/disposition/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerator_HistoryShape(t *testing.T) {
	g := NewGenerator(rand.NewPCG(42, 1))

	for _, quality := range []domain.Quality{domain.QualityGood, domain.QualityBad} {
		t.Run(string(quality), func(t *testing.T) {
			for i := 0; i < 200; i++ {
				history := g.History(quality)
				assert.Len(t, history, HistoryLength)
				for _, delta := range history {
					assert.True(t, slices.Contains(PriceChanges, delta), "unexpected delta %d", delta)
				}
			}
		})
	}
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	a := NewGenerator(rand.NewPCG(7, 7))
	b := NewGenerator(rand.NewPCG(7, 7))

	for i := 0; i < 20; i++ {
		sa := a.NewRandom("A", 1)
		sb := b.NewRandom("A", 1)
		assert.Equal(t, sa.Quality(), sb.Quality())
		assert.Equal(t, sa.PriceChangeHistory(), sb.PriceChangeHistory())
	}
}

func TestGenerator_QualityDistribution(t *testing.T) {
	g := NewGenerator(rand.NewPCG(2024, 5))

	const draws = 20000
	good := 0
	for i := 0; i < draws; i++ {
		if g.Quality() == domain.QualityGood {
			good++
		}
	}

	share := float64(good) / draws
	assert.InDelta(t, 0.25, share, 0.02)
}

func TestGenerator_GoodStocksDriftUp(t *testing.T) {
	g := NewGenerator(rand.NewPCG(99, 3))

	meanDelta := func(quality domain.Quality) float64 {
		total, n := 0, 0
		for i := 0; i < 2000; i++ {
			for _, d := range g.History(quality) {
				total += d
				n++
			}
		}
		return float64(total) / float64(n)
	}

	// Expected means: good 1.0, bad 0.0
	assert.InDelta(t, 1.0, meanDelta(domain.QualityGood), 0.1)
	assert.InDelta(t, 0.0, meanDelta(domain.QualityBad), 0.1)
}

func TestGenerator_NewRandom(t *testing.T) {
	g := NewGenerator(rand.NewPCG(1, 2))

	s := g.NewRandom("Q", 3)
	assert.Equal(t, "Q", s.Name())
	assert.Equal(t, InitialPrice, s.InitialPrice())
	assert.Equal(t, 3, s.PeriodGenerated())
	assert.False(t, s.IsSold())
	assert.False(t, s.Testing())
	assert.Len(t, s.PriceChangeHistory(), HistoryLength)
}
