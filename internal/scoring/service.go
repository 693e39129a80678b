package scoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridsight/site-scorer/internal/spatial"
	"github.com/gridsight/site-scorer/pkg/places"
	"github.com/gridsight/site-scorer/pkg/traffic"
)

// Service owns data acquisition for the five calculators: spatial queries
// for demographics and income, the dataset API for competition and
// complementary, and the traffic job flow for traffic. Each external
// operation authenticates afresh; tokens are never cached across operations.
type Service struct {
	store    spatial.Store
	places   places.Client
	traffic  traffic.Client
	pollOpts []traffic.PollOption
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPollOptions forwards polling configuration to the traffic job loop.
func WithPollOptions(opts ...traffic.PollOption) ServiceOption {
	return func(s *Service) {
		s.pollOpts = opts
	}
}

// WithClock overrides the time source used for analysis timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a scoring Service.
func NewService(store spatial.Store, placesClient places.Client, trafficClient traffic.Client, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		places:  placesClient,
		traffic: trafficClient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Demographics fetches population rows around the point and scores them.
func (s *Service) Demographics(ctx context.Context, req DemographicsRequest) (*DemographicsScore, error) {
	log := zap.L().With(zap.Float64("lat", req.Lat), zap.Float64("lng", req.Lng))
	log.Info("scoring: demographics", zap.Int("radius", req.Radius), zap.Int("target_age", req.TargetAge))

	rows, err := s.store.PopulationWithin(ctx, req.Lat, req.Lng, req.Radius)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: fetch population data")
	}

	score := ScoreDemographics(rows, req.TargetAge, req.SexPreference)
	log.Info("scoring: demographics done", zap.Float64("score", score.Score), zap.Int("rows", len(rows)))
	return &score, nil
}

// Income fetches income rows around the point and scores them.
func (s *Service) Income(ctx context.Context, req IncomeRequest) (*IncomeScore, error) {
	log := zap.L().With(zap.Float64("lat", req.Lat), zap.Float64("lng", req.Lng))
	log.Info("scoring: income", zap.Int("radius", req.Radius), zap.String("tier", req.TargetIncomeLevel))

	rows, err := s.store.IncomeWithin(ctx, req.Lat, req.Lng, req.Radius)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: fetch income data")
	}

	score := ScoreIncome(rows, req.TargetIncomeLevel)
	log.Info("scoring: income done", zap.Float64("score", score.Score), zap.Int("areas", score.AreasAnalyzed))
	return &score, nil
}

// Competition logs in, fetches competing businesses, and scores them.
func (s *Service) Competition(ctx context.Context, req CompetitionRequest) (*CompetitionScore, error) {
	businesses, err := s.fetchBusinesses(ctx, req.Lat, req.Lng, req.Radius, req.Categories)
	if err != nil {
		return nil, err
	}

	score := ScoreCompetition(businesses, req.TargetNumPerCategory)
	zap.L().Info("scoring: competition done",
		zap.Float64("score", score.Score),
		zap.Int("competitors", score.TotalCompetitors),
	)
	return &score, nil
}

// Complementary logs in, fetches complementary businesses, and scores them.
func (s *Service) Complementary(ctx context.Context, req ComplementaryRequest) (*ComplementaryScore, error) {
	businesses, err := s.fetchBusinesses(ctx, req.Lat, req.Lng, req.Radius, req.Categories)
	if err != nil {
		return nil, err
	}

	score := ScoreComplementary(businesses, req.TargetNumPerCategory)
	zap.L().Info("scoring: complementary done",
		zap.Float64("score", score.Score),
		zap.Int("businesses", score.TotalComplementary),
	)
	return &score, nil
}

// fetchBusinesses runs the login-then-fetch flow shared by competition and
// complementary scoring.
func (s *Service) fetchBusinesses(ctx context.Context, lat, lng float64, radius int, categories []string) ([]places.Business, error) {
	token, err := s.places.Login(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: dataset login")
	}

	businesses, err := s.places.FetchDataset(ctx, places.Query{
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radius,
		Categories:   categories,
	}, token)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: fetch dataset")
	}
	return businesses, nil
}

// Traffic runs the full job flow: login, submit, poll to a terminal state,
// then format the payload. Business-level failures inside the payload come
// back as ordinary zero scores; only transport and job-state failures error.
func (s *Service) Traffic(ctx context.Context, req TrafficRequest) (*TrafficScore, error) {
	log := zap.L().With(zap.Float64("lat", req.Lat), zap.Float64("lng", req.Lng))
	log.Info("scoring: traffic", zap.String("direction", req.StorefrontDirection), zap.String("day", req.Day))

	token, err := s.traffic.Login(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: traffic login")
	}

	jobID, err := s.traffic.Submit(ctx, traffic.Location{
		Lat:                 req.Lat,
		Lng:                 req.Lng,
		StorefrontDirection: req.StorefrontDirection,
		Day:                 req.Day,
		Time:                req.Time,
	}, token)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: submit traffic job")
	}
	log.Info("scoring: traffic job submitted", zap.String("job_id", jobID))

	job, err := traffic.Poll(ctx, s.traffic, jobID, token, s.pollOpts...)
	if err != nil {
		return nil, err
	}

	score := FormatTrafficResults(job, req, s.now())
	log.Info("scoring: traffic done", zap.Float64("score", score.Score))
	return &score, nil
}
