package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridsight/site-scorer/pkg/traffic"
)

// TrafficScore is the formatted result of a traffic analysis job. The
// external service already combines its sub-scores, so this layer only
// buckets them into qualitative tiers for the explanation and passes the
// numbers through unmodified.
type TrafficScore struct {
	Score              float64 `json:"score"`
	StorefrontScore    float64 `json:"storefront_score"`
	AreaScore          float64 `json:"area_score"`
	ScreenshotFilename string  `json:"screenshot_filename"`
	AnalysisDate       string  `json:"analysis_date"`
	Explanation        string  `json:"explanation"`
}

const analysisDateLayout = "2006-01-02 15:04:05"

// FormatTrafficResults shapes a finished job payload into a TrafficScore. An
// empty results list or a per-location error field becomes an ordinary zero
// score with an explanatory message: a job that ran but carried bad news is
// not a transport failure.
func FormatTrafficResults(job *traffic.Job, req TrafficRequest, now time.Time) TrafficScore {
	date := now.Format(analysisDateLayout)

	if job == nil || job.Result == nil || len(job.Result.Results) == 0 {
		return TrafficScore{
			AnalysisDate: date,
			Explanation:  "No traffic analysis data available",
		}
	}

	// First (and only) result: jobs are submitted with a single location.
	result := job.Result.Results[0]

	if result.Error != "" {
		return TrafficScore{
			AnalysisDate: date,
			Explanation:  fmt.Sprintf("Traffic analysis failed: %s", result.Error),
		}
	}

	screenshotFilename := ""
	if result.ScreenshotURL != "" {
		parts := strings.Split(result.ScreenshotURL, "/")
		screenshotFilename = parts[len(parts)-1]
	}

	scoreQuality := "poor"
	switch {
	case result.Score >= 80:
		scoreQuality = "excellent"
	case result.Score >= 60:
		scoreQuality = "good"
	case result.Score >= 40:
		scoreQuality = "moderate"
	case result.Score >= 20:
		scoreQuality = "below average"
	}

	storefrontQuality := "low"
	switch {
	case result.StorefrontScore >= 70:
		storefrontQuality = "high"
	case result.StorefrontScore >= 40:
		storefrontQuality = "moderate"
	}

	areaQuality := "quiet"
	switch {
	case result.AreaScore >= 70:
		areaQuality = "busy"
	case result.AreaScore >= 40:
		areaQuality = "moderate"
	}

	explanation := fmt.Sprintf(
		"Overall traffic score %s indicates %s traffic conditions. Storefront visibility: %s (%s), Area activity: %s (%s). Analysis for %s-facing storefront on %s at %s",
		fmtScore(result.Score), scoreQuality,
		storefrontQuality, fmtScore(result.StorefrontScore),
		areaQuality, fmtScore(result.AreaScore),
		req.StorefrontDirection, req.Day, req.Time,
	)

	return TrafficScore{
		Score:              result.Score,
		StorefrontScore:    result.StorefrontScore,
		AreaScore:          result.AreaScore,
		ScreenshotFilename: screenshotFilename,
		AnalysisDate:       date,
		Explanation:        explanation,
	}
}
