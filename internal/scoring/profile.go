package scoring

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gridsight/site-scorer/internal/dispatch"
)

// ProfileRequest scores demographics and income for a location in one call.
type ProfileRequest struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	Radius            int     `json:"radius"`
	TargetAge         int     `json:"target_age"`
	SexPreference     string  `json:"sex_preference,omitempty"`
	TargetIncomeLevel string  `json:"target_income_level"`
}

// Validate implements dispatch.Validator.
func (r ProfileRequest) Validate() []dispatch.FieldViolation {
	v := DemographicsRequest{
		Lat: r.Lat, Lng: r.Lng, Radius: r.Radius,
		TargetAge: r.TargetAge, SexPreference: r.SexPreference,
	}.Validate()
	switch r.TargetIncomeLevel {
	case "low", "medium", "high":
	default:
		v = append(v, dispatch.FieldViolation{Field: "target_income_level", Message: `must be one of "low", "medium", "high"`})
	}
	return v
}

// ProfileScore bundles the two spatial scores for a location.
type ProfileScore struct {
	Demographics *DemographicsScore `json:"demographics"`
	Income       *IncomeScore       `json:"income"`
}

// Profile runs the demographics and income queries concurrently. The two
// hit different tables, so there is no ordering between them; either
// failure fails the whole call.
func (s *Service) Profile(ctx context.Context, req ProfileRequest) (*ProfileScore, error) {
	var profile ProfileScore

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := s.Demographics(ctx, DemographicsRequest{
			Lat: req.Lat, Lng: req.Lng, Radius: req.Radius,
			TargetAge: req.TargetAge, SexPreference: req.SexPreference,
		})
		profile.Demographics = score
		return err
	})
	g.Go(func() error {
		score, err := s.Income(ctx, IncomeRequest{
			Lat: req.Lat, Lng: req.Lng, Radius: req.Radius,
			TargetIncomeLevel: req.TargetIncomeLevel,
		})
		profile.Income = score
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &profile, nil
}
