package scoring

import (
	"fmt"
	"math"

	"github.com/gridsight/site-scorer/internal/spatial"
)

// Demographics factor weights.
const (
	demoAgeWeight        = 0.5
	demoDensityWeight    = 0.3
	demoPopulationWeight = 0.2
)

// DemographicsScore is the scored demographics breakdown for a location.
type DemographicsScore struct {
	Score              float64 `json:"score"`
	TargetPopulation   int64   `json:"target_population"`
	WeightedMedianAge  float64 `json:"weighted_median_age"`
	AvgDensity         float64 `json:"avg_density"`
	AgeProximityFactor float64 `json:"age_proximity_factor"`
	DensityFactor      float64 `json:"density_factor"`
	PopulationFactor   float64 `json:"population_factor"`
	Explanation        string  `json:"explanation"`
}

// ScoreDemographics grades population rows against a target age. The sex
// preference selects which column triple drives the weighted median age:
// "male", "female", or anything else for the total population. Zero rows and
// null columns are valid no-data inputs.
func ScoreDemographics(rows []spatial.PopulationRow, targetAge int, sexPreference string) DemographicsScore {
	var targetPopulation, ageWeightedSum float64
	var sexDesc string

	switch sexPreference {
	case "male":
		for _, r := range rows {
			targetPopulation += orZero(r.MalePopulation)
			ageWeightedSum += orZero(r.MedianAgeMale) * orZero(r.MalePopulation)
		}
		sexDesc = "male population"
	case "female":
		for _, r := range rows {
			targetPopulation += orZero(r.FemalePopulation)
			ageWeightedSum += orZero(r.MedianAgeFemale) * orZero(r.FemalePopulation)
		}
		sexDesc = "female population"
	default:
		for _, r := range rows {
			targetPopulation += orZero(r.PopulationCount)
			ageWeightedSum += orZero(r.MedianAgeTotal) * orZero(r.PopulationCount)
		}
		sexDesc = "total population"
	}

	// Guard the divide: an empty selected population means no weighted age.
	weightedMedianAge := 0.0
	if targetPopulation > 0 {
		weightedMedianAge = ageWeightedSum / targetPopulation
	}

	avgDensity := 0.0
	if len(rows) > 0 {
		var sum float64
		for _, r := range rows {
			sum += orZero(r.DensityKM2)
		}
		avgDensity = sum / float64(len(rows))
	}

	ageDiff := math.Abs(weightedMedianAge - float64(targetAge))
	ageProximityFactor := math.Max(0, 1-ageDiff/30)
	densityFactor := math.Min(1.0, avgDensity/1000)
	populationFactor := math.Min(1.0, math.Log10(targetPopulation+1)/6)

	finalScore := (ageProximityFactor*demoAgeWeight +
		densityFactor*demoDensityWeight +
		populationFactor*demoPopulationWeight) * 100

	ageQuality := "poor"
	switch {
	case ageProximityFactor > 0.8:
		ageQuality = "excellent"
	case ageProximityFactor > 0.6:
		ageQuality = "good"
	case ageProximityFactor > 0.3:
		ageQuality = "moderate"
	}

	densityQuality := "low"
	switch {
	case densityFactor > 0.7:
		densityQuality = "high"
	case densityFactor > 0.4:
		densityQuality = "moderate"
	}

	sizeQuality := "small"
	switch {
	case populationFactor > 0.7:
		sizeQuality = "large"
	case populationFactor > 0.4:
		sizeQuality = "medium"
	}

	score := roundTo(finalScore, 4)
	explanation := fmt.Sprintf(
		"Score %s based on %s: %s age match (median %s vs target %d), %s density (%s/km²), %s population size (%s people)",
		fmtScore(score), sexDesc,
		ageQuality, fmtScore(roundTo(weightedMedianAge, 1)), targetAge,
		densityQuality, fmtScore(roundTo(avgDensity, 1)),
		sizeQuality, fmtCount(int64(targetPopulation)),
	)

	return DemographicsScore{
		Score:              score,
		TargetPopulation:   int64(targetPopulation),
		WeightedMedianAge:  roundTo(weightedMedianAge, 2),
		AvgDensity:         roundTo(avgDensity, 2),
		AgeProximityFactor: roundTo(ageProximityFactor, 4),
		DensityFactor:      roundTo(densityFactor, 4),
		PopulationFactor:   roundTo(populationFactor, 4),
		Explanation:        explanation,
	}
}
