package scoring

import (
	"github.com/gridsight/site-scorer/internal/spatial"
)

// IncomeDistribution reports the mean of each pre-computed tier score over
// the analyzed areas.
type IncomeDistribution struct {
	LowScore    float64 `json:"low_score"`
	MediumScore float64 `json:"medium_score"`
	HighScore   float64 `json:"high_score"`
}

// IncomeScore is the scored income breakdown for a location.
type IncomeScore struct {
	Score              float64            `json:"score"`
	TargetIncomeLevel  string             `json:"target_income_level"`
	AreasAnalyzed      int                `json:"areas_analyzed"`
	AvgIncome          float64            `json:"avg_income"`
	IncomeDistribution IncomeDistribution `json:"income_distribution"`
}

// meanPresent averages the non-null values selected by pick. Rows where the
// column is null are skipped, not counted as zero. Returns 0 when nothing is
// present.
func meanPresent(rows []spatial.IncomeRow, pick func(spatial.IncomeRow) *float64) float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if v := pick(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ScoreIncome averages the tier-selected pre-computed score column. There is
// no weighting here: the per-area scores already encode the income match, so
// this is a direct average passthrough with distribution context.
func ScoreIncome(rows []spatial.IncomeRow, targetIncomeLevel string) IncomeScore {
	var pick func(spatial.IncomeRow) *float64
	switch targetIncomeLevel {
	case "low":
		pick = func(r spatial.IncomeRow) *float64 { return r.LowScore }
	case "medium":
		pick = func(r spatial.IncomeRow) *float64 { return r.MediumScore }
	default:
		pick = func(r spatial.IncomeRow) *float64 { return r.HighScore }
	}

	return IncomeScore{
		Score:             roundTo(meanPresent(rows, pick), 2),
		TargetIncomeLevel: targetIncomeLevel,
		AreasAnalyzed:     len(rows),
		AvgIncome:         roundTo(meanPresent(rows, func(r spatial.IncomeRow) *float64 { return r.Income }), 2),
		IncomeDistribution: IncomeDistribution{
			LowScore:    roundTo(meanPresent(rows, func(r spatial.IncomeRow) *float64 { return r.LowScore }), 2),
			MediumScore: roundTo(meanPresent(rows, func(r spatial.IncomeRow) *float64 { return r.MediumScore }), 2),
			HighScore:   roundTo(meanPresent(rows, func(r spatial.IncomeRow) *float64 { return r.HighScore }), 2),
		},
	}
}
