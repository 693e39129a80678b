package scoring

import (
	"fmt"
	"math"

	"github.com/gridsight/site-scorer/pkg/places"
)

// Competition factor weights. Lower competition means a higher score.
const (
	competitionDensityWeight  = 0.7
	competitionCategoryWeight = 0.3
)

// CompetitionScore is the scored competition breakdown for a location.
type CompetitionScore struct {
	Score              float64        `json:"score"`
	TotalCompetitors   int            `json:"total_competitors"`
	CategoryBreakdown  map[string]int `json:"category_breakdown"`
	CompetitionDensity float64        `json:"competition_density"`
	CompetitionFactor  float64        `json:"competition_factor"`
	CategoryFactor     float64        `json:"category_factor"`
	Explanation        string         `json:"explanation"`
}

// ScoreCompetition grades the competitive landscape around a location. Zero
// competitors is the best possible outcome and scores a flat 100.
func ScoreCompetition(competitors []places.Business, targetNumPerCategory int) CompetitionScore {
	totalCompetitors := len(competitors)
	categoryCounts := countByCategory(competitors)

	if totalCompetitors == 0 {
		return CompetitionScore{
			Score:              100.0,
			TotalCompetitors:   0,
			CategoryBreakdown:  map[string]int{},
			CompetitionDensity: 0.0,
			CompetitionFactor:  1.0,
			CategoryFactor:     1.0,
			Explanation:        "Perfect score: No competitors found in the area",
		}
	}

	// Density normalized per 1000 unit area.
	competitionDensity := float64(totalCompetitors) / 1000
	competitionFactor := math.Max(0, 1-competitionDensity/10)

	avgPerCategory := float64(totalCompetitors) / float64(len(categoryCounts))
	categoryFactor := math.Max(0, 1-avgPerCategory/float64(targetNumPerCategory))

	finalScore := (competitionFactor*competitionDensityWeight +
		categoryFactor*competitionCategoryWeight) * 100

	competitionLevel := "high"
	switch {
	case competitionFactor > 0.7:
		competitionLevel = "low"
	case competitionFactor > 0.4:
		competitionLevel = "moderate"
	}

	categoryDistribution := "oversaturated"
	switch {
	case categoryFactor > 0.6:
		categoryDistribution = "well-distributed"
	case categoryFactor > 0.3:
		categoryDistribution = "concentrated"
	}

	score := roundTo(finalScore, 4)
	explanation := fmt.Sprintf(
		"Score %s indicates %s competition (%d competitors). Competition is %s across categories. Top categories: %s",
		fmtScore(score), competitionLevel, totalCompetitors,
		categoryDistribution, topCategories(categoryCounts, 3),
	)

	return CompetitionScore{
		Score:              score,
		TotalCompetitors:   totalCompetitors,
		CategoryBreakdown:  categoryCounts,
		CompetitionDensity: roundTo(competitionDensity, 4),
		CompetitionFactor:  roundTo(competitionFactor, 4),
		CategoryFactor:     roundTo(categoryFactor, 4),
		Explanation:        explanation,
	}
}
