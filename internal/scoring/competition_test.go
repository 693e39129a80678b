package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridsight/site-scorer/pkg/places"
)

func businessesInCategories(perCategory int, categories ...string) []places.Business {
	var out []places.Business
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			out = append(out, places.Business{Name: "b", Types: []string{cat}})
		}
	}
	return out
}

func TestScoreCompetitionNoCompetitors(t *testing.T) {
	score := ScoreCompetition(nil, 5)

	assert.Equal(t, 100.0, score.Score)
	assert.Equal(t, 0, score.TotalCompetitors)
	assert.Equal(t, 1.0, score.CompetitionFactor)
	assert.Equal(t, 1.0, score.CategoryFactor)
	assert.Equal(t, map[string]int{}, score.CategoryBreakdown)
	assert.Equal(t, "Perfect score: No competitors found in the area", score.Explanation)
}

func TestScoreCompetitionSaturatedCategories(t *testing.T) {
	// 10 competitors over 2 categories with a target of 5 per category:
	// density factor 0.999, category factor 0, score 69.93.
	competitors := businessesInCategories(5, "cafe", "bakery")

	score := ScoreCompetition(competitors, 5)

	assert.Equal(t, 69.93, score.Score)
	assert.Equal(t, 10, score.TotalCompetitors)
	assert.Equal(t, 0.999, score.CompetitionFactor)
	assert.Equal(t, 0.0, score.CategoryFactor)
	assert.Equal(t, 0.01, score.CompetitionDensity)
	assert.Equal(t, map[string]int{"cafe": 5, "bakery": 5}, score.CategoryBreakdown)
}

func TestScoreCompetitionSparseMarket(t *testing.T) {
	competitors := businessesInCategories(1, "cafe", "bakery")

	score := ScoreCompetition(competitors, 5)

	// density factor 0.9998, category factor 0.8
	assert.Equal(t, 93.986, score.Score)
	assert.Equal(t, 0.9998, score.CompetitionFactor)
	assert.Equal(t, 0.8, score.CategoryFactor)
	assert.Contains(t, score.Explanation, "low competition")
	assert.Contains(t, score.Explanation, "well-distributed")
}

func TestScoreCompetitionCategoryFactorClampedAtZero(t *testing.T) {
	competitors := businessesInCategories(20, "cafe")

	score := ScoreCompetition(competitors, 5)

	assert.Equal(t, 0.0, score.CategoryFactor)
	assert.Contains(t, score.Explanation, "oversaturated")
}

func TestScoreCompetitionTopCategoriesLimit(t *testing.T) {
	competitors := businessesInCategories(3, "cafe")
	competitors = append(competitors, businessesInCategories(2, "bakery")...)
	competitors = append(competitors, businessesInCategories(1, "deli", "florist")...)

	score := ScoreCompetition(competitors, 10)

	assert.Contains(t, score.Explanation, "cafe: 3, bakery: 2, deli: 1")
	assert.NotContains(t, score.Explanation, "florist")
}
