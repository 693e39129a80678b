package scoring

import (
	"fmt"
	"math"

	"github.com/gridsight/site-scorer/pkg/places"
)

// Complementary factor weights. More complementary businesses mean a higher
// score, the mirror image of competition.
const (
	complementaryDensityWeight  = 0.4
	complementaryCoverageWeight = 0.3
	complementaryBalanceWeight  = 0.3
)

// idealCategoryCoverage is the category count treated as full coverage.
const idealCategoryCoverage = 5

// ComplementaryScore is the scored complementary-business breakdown for a
// location.
type ComplementaryScore struct {
	Score                float64        `json:"score"`
	TotalComplementary   int            `json:"total_complementary"`
	CategoryBreakdown    map[string]int `json:"category_breakdown"`
	ComplementaryDensity float64        `json:"complementary_density"`
	DensityFactor        float64        `json:"density_factor"`
	CoverageFactor       float64        `json:"coverage_factor"`
	BalanceFactor        float64        `json:"balance_factor"`
	Explanation          string         `json:"explanation"`
}

// ScoreComplementary grades nearby traffic-driving businesses. Zero records
// score 0: unlike competition, absence here is bad news.
func ScoreComplementary(businesses []places.Business, targetNumPerCategory int) ComplementaryScore {
	totalComplementary := len(businesses)
	categoryCounts := countByCategory(businesses)

	if totalComplementary == 0 {
		return ComplementaryScore{
			Score:                0.0,
			TotalComplementary:   0,
			CategoryBreakdown:    map[string]int{},
			ComplementaryDensity: 0.0,
			DensityFactor:        0.0,
			CoverageFactor:       0.0,
			BalanceFactor:        0.0,
			Explanation:          "Low score: No complementary businesses found in the area",
		}
	}

	// Density normalized per 1000 unit area.
	complementaryDensity := float64(totalComplementary) / 1000
	densityFactor := math.Min(1.0, complementaryDensity/5)

	coveredCategories := len(categoryCounts)
	coverageFactor := math.Min(1.0, float64(coveredCategories)/idealCategoryCoverage)

	avgPerCategory := float64(totalComplementary) / float64(coveredCategories)
	balanceFactor := math.Min(1.0, avgPerCategory/float64(targetNumPerCategory))

	finalScore := (densityFactor*complementaryDensityWeight +
		coverageFactor*complementaryCoverageWeight +
		balanceFactor*complementaryBalanceWeight) * 100

	densityQuality := "low"
	switch {
	case densityFactor > 0.7:
		densityQuality = "high"
	case densityFactor > 0.4:
		densityQuality = "moderate"
	}

	coverageQuality := "limited"
	switch {
	case coverageFactor > 0.8:
		coverageQuality = "excellent"
	case coverageFactor > 0.6:
		coverageQuality = "good"
	}

	balanceQuality := "uneven"
	switch {
	case balanceFactor > 0.7:
		balanceQuality = "well-balanced"
	case balanceFactor > 0.4:
		balanceQuality = "adequate"
	}

	score := roundTo(finalScore, 4)
	explanation := fmt.Sprintf(
		"Score %s based on %d complementary businesses. %s density, %s category coverage (%d categories), %s distribution. Top categories: %s",
		fmtScore(score), totalComplementary,
		densityQuality, coverageQuality, coveredCategories,
		balanceQuality, topCategories(categoryCounts, 3),
	)

	return ComplementaryScore{
		Score:                score,
		TotalComplementary:   totalComplementary,
		CategoryBreakdown:    categoryCounts,
		ComplementaryDensity: roundTo(complementaryDensity, 4),
		DensityFactor:        roundTo(densityFactor, 4),
		CoverageFactor:       roundTo(coverageFactor, 4),
		BalanceFactor:        roundTo(balanceFactor, 4),
		Explanation:          explanation,
	}
}
