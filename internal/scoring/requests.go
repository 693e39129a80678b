package scoring

import (
	"github.com/gridsight/site-scorer/internal/dispatch"
)

// geoViolations checks the coordinate and radius fields shared by every
// score request.
func geoViolations(lat, lng float64, radius int) []dispatch.FieldViolation {
	var v []dispatch.FieldViolation
	if lat < -90 || lat > 90 {
		v = append(v, dispatch.FieldViolation{Field: "lat", Message: "must be between -90 and 90"})
	}
	if lng < -180 || lng > 180 {
		v = append(v, dispatch.FieldViolation{Field: "lng", Message: "must be between -180 and 180"})
	}
	if radius <= 0 {
		v = append(v, dispatch.FieldViolation{Field: "radius", Message: "must be greater than 0"})
	}
	return v
}

// DemographicsRequest scores a location against a target age profile.
type DemographicsRequest struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Radius        int     `json:"radius"`
	TargetAge     int     `json:"target_age"`
	SexPreference string  `json:"sex_preference,omitempty"`
}

// Validate implements dispatch.Validator.
func (r DemographicsRequest) Validate() []dispatch.FieldViolation {
	v := geoViolations(r.Lat, r.Lng, r.Radius)
	if r.TargetAge <= 0 {
		v = append(v, dispatch.FieldViolation{Field: "target_age", Message: "must be greater than 0"})
	}
	switch r.SexPreference {
	case "", "male", "female":
	default:
		v = append(v, dispatch.FieldViolation{Field: "sex_preference", Message: `must be "male" or "female" when set`})
	}
	return v
}

// IncomeRequest scores a location against a target income tier.
type IncomeRequest struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	Radius            int     `json:"radius"`
	TargetIncomeLevel string  `json:"target_income_level"`
}

// Validate implements dispatch.Validator.
func (r IncomeRequest) Validate() []dispatch.FieldViolation {
	v := geoViolations(r.Lat, r.Lng, r.Radius)
	switch r.TargetIncomeLevel {
	case "low", "medium", "high":
	default:
		v = append(v, dispatch.FieldViolation{Field: "target_income_level", Message: `must be one of "low", "medium", "high"`})
	}
	return v
}

// CompetitionRequest scores the competitive landscape for a business type.
type CompetitionRequest struct {
	Lat                  float64  `json:"lat"`
	Lng                  float64  `json:"lng"`
	Radius               int      `json:"radius"`
	Categories           []string `json:"competition_business_categories"`
	TargetNumPerCategory int      `json:"target_num_per_category"`
}

// Validate implements dispatch.Validator.
func (r CompetitionRequest) Validate() []dispatch.FieldViolation {
	return categoryViolations(r.Lat, r.Lng, r.Radius, r.Categories, r.TargetNumPerCategory, "competition_business_categories")
}

// ComplementaryRequest scores nearby traffic-driving businesses.
type ComplementaryRequest struct {
	Lat                  float64  `json:"lat"`
	Lng                  float64  `json:"lng"`
	Radius               int      `json:"radius"`
	Categories           []string `json:"complementary_business_categories"`
	TargetNumPerCategory int      `json:"target_num_per_category"`
}

// Validate implements dispatch.Validator.
func (r ComplementaryRequest) Validate() []dispatch.FieldViolation {
	return categoryViolations(r.Lat, r.Lng, r.Radius, r.Categories, r.TargetNumPerCategory, "complementary_business_categories")
}

func categoryViolations(lat, lng float64, radius int, categories []string, target int, field string) []dispatch.FieldViolation {
	v := geoViolations(lat, lng, radius)
	if len(categories) == 0 {
		v = append(v, dispatch.FieldViolation{Field: field, Message: "must not be empty"})
	}
	if target <= 0 {
		v = append(v, dispatch.FieldViolation{Field: "target_num_per_category", Message: "must be greater than 0"})
	}
	return v
}

// TrafficRequest runs a traffic analysis for a storefront.
type TrafficRequest struct {
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	StorefrontDirection string  `json:"storefront_direction"`
	Day                 string  `json:"day"`
	Time                string  `json:"time"`
}

// Validate implements dispatch.Validator.
func (r TrafficRequest) Validate() []dispatch.FieldViolation {
	var v []dispatch.FieldViolation
	if r.Lat < -90 || r.Lat > 90 {
		v = append(v, dispatch.FieldViolation{Field: "lat", Message: "must be between -90 and 90"})
	}
	if r.Lng < -180 || r.Lng > 180 {
		v = append(v, dispatch.FieldViolation{Field: "lng", Message: "must be between -180 and 180"})
	}
	if r.StorefrontDirection == "" {
		v = append(v, dispatch.FieldViolation{Field: "storefront_direction", Message: "is required"})
	}
	if r.Day == "" {
		v = append(v, dispatch.FieldViolation{Field: "day", Message: "is required"})
	}
	if r.Time == "" {
		v = append(v, dispatch.FieldViolation{Field: "time", Message: "is required"})
	}
	return v
}
