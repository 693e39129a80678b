package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreComplementaryNoBusinesses(t *testing.T) {
	score := ScoreComplementary(nil, 5)

	assert.Equal(t, 0.0, score.Score)
	assert.Equal(t, 0, score.TotalComplementary)
	assert.Equal(t, 0.0, score.DensityFactor)
	assert.Equal(t, 0.0, score.CoverageFactor)
	assert.Equal(t, 0.0, score.BalanceFactor)
	assert.Equal(t, map[string]int{}, score.CategoryBreakdown)
	assert.Equal(t, "Low score: No complementary businesses found in the area", score.Explanation)
}

func TestScoreComplementaryBalancedMix(t *testing.T) {
	// 10 businesses over 2 categories with a target of 5 per category:
	// density factor 0.002, coverage factor 0.4, balance factor 1.0.
	businesses := businessesInCategories(5, "gym", "pharmacy")

	score := ScoreComplementary(businesses, 5)

	assert.Equal(t, 42.08, score.Score)
	assert.Equal(t, 10, score.TotalComplementary)
	assert.Equal(t, 0.002, score.DensityFactor)
	assert.Equal(t, 0.4, score.CoverageFactor)
	assert.Equal(t, 1.0, score.BalanceFactor)
	assert.Equal(t, 0.01, score.ComplementaryDensity)
}

func TestScoreComplementaryFullCoverage(t *testing.T) {
	businesses := businessesInCategories(2, "gym", "pharmacy", "school", "office", "grocery")

	score := ScoreComplementary(businesses, 2)

	assert.Equal(t, 1.0, score.CoverageFactor)
	assert.Equal(t, 1.0, score.BalanceFactor)
	assert.Contains(t, score.Explanation, "excellent category coverage (5 categories)")
	assert.Contains(t, score.Explanation, "well-balanced")
}

func TestScoreComplementaryBalanceClampedAtOne(t *testing.T) {
	businesses := businessesInCategories(20, "gym")

	score := ScoreComplementary(businesses, 5)

	assert.Equal(t, 1.0, score.BalanceFactor)
	assert.Contains(t, score.Explanation, "limited category coverage (1 categories)")
}
