package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridsight/site-scorer/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a location from the command line",
	Long: `Run one scoring dimension against a candidate location and print the
result as JSON.

Examples:
  # Demographics around a point
  score demographics --lat 40.7128 --lng -74.0060 --radius 1000 --target-age 35

  # Income match for a medium-income concept
  score income --lat 40.7128 --lng -74.0060 --radius 1000 --level medium

  # Competition from nearby cafes and bakeries
  score competition --lat 40.7128 --lng -74.0060 --radius 1000 --categories cafe,bakery --target 5

  # Foot traffic for a north-facing storefront
  score traffic --lat 40.7128 --lng -74.0060 --direction north --day monday --time 12:00`,
}

var (
	scoreLat    float64
	scoreLng    float64
	scoreRadius int
)

func init() {
	for _, c := range []*cobra.Command{
		scoreDemographicsCmd, scoreIncomeCmd, scoreCompetitionCmd, scoreComplementaryCmd, scoreTrafficCmd,
	} {
		f := c.Flags()
		f.Float64Var(&scoreLat, "lat", 0, "latitude")
		f.Float64Var(&scoreLng, "lng", 0, "longitude")
		c.MarkFlagRequired("lat")
		c.MarkFlagRequired("lng")
		scoreCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		scoreDemographicsCmd, scoreIncomeCmd, scoreCompetitionCmd, scoreComplementaryCmd,
	} {
		c.Flags().IntVar(&scoreRadius, "radius", 1000, "search radius in meters")
	}

	scoreDemographicsCmd.Flags().Int("target-age", 0, "target customer age")
	scoreDemographicsCmd.Flags().String("sex", "", "population slice: male or female (default total)")
	scoreDemographicsCmd.MarkFlagRequired("target-age")

	scoreIncomeCmd.Flags().String("level", "medium", "target income level: low, medium, or high")

	scoreProfileCmd.Flags().Float64Var(&scoreLat, "lat", 0, "latitude")
	scoreProfileCmd.Flags().Float64Var(&scoreLng, "lng", 0, "longitude")
	scoreProfileCmd.Flags().IntVar(&scoreRadius, "radius", 1000, "search radius in meters")
	scoreProfileCmd.Flags().Int("target-age", 0, "target customer age")
	scoreProfileCmd.Flags().String("sex", "", "population slice: male or female (default total)")
	scoreProfileCmd.Flags().String("level", "medium", "target income level: low, medium, or high")
	scoreProfileCmd.MarkFlagRequired("lat")
	scoreProfileCmd.MarkFlagRequired("lng")
	scoreProfileCmd.MarkFlagRequired("target-age")
	scoreCmd.AddCommand(scoreProfileCmd)

	for _, c := range []*cobra.Command{scoreCompetitionCmd, scoreComplementaryCmd} {
		c.Flags().String("categories", "", "comma-separated business categories")
		c.Flags().Int("target", 5, "target businesses per category")
		c.MarkFlagRequired("categories")
	}

	scoreTrafficCmd.Flags().String("direction", "", "storefront facing direction")
	scoreTrafficCmd.Flags().String("day", "", "day of week to analyze")
	scoreTrafficCmd.Flags().String("time", "", "time of day to analyze (HH:MM)")
	scoreTrafficCmd.MarkFlagRequired("direction")
	scoreTrafficCmd.MarkFlagRequired("day")
	scoreTrafficCmd.MarkFlagRequired("time")

	rootCmd.AddCommand(scoreCmd)
}

// runScore builds the environment, runs one scoring operation, and prints
// the result to stdout as indented JSON.
func runScore(cmd *cobra.Command, fn func(ctx context.Context, svc *scoring.Service) (any, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := initEnv()
	defer env.Close()

	res, err := fn(ctx, env.svc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "encode result")
	}
	return nil
}

func splitCategories(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

var scoreDemographicsCmd = &cobra.Command{
	Use:   "demographics",
	Short: "Score population age, density, and size",
	RunE: func(cmd *cobra.Command, _ []string) error {
		targetAge, _ := cmd.Flags().GetInt("target-age")
		sex, _ := cmd.Flags().GetString("sex")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Demographics(ctx, scoring.DemographicsRequest{
				Lat:           scoreLat,
				Lng:           scoreLng,
				Radius:        scoreRadius,
				TargetAge:     targetAge,
				SexPreference: sex,
			})
		})
	},
}

var scoreIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Score income match for a target tier",
	RunE: func(cmd *cobra.Command, _ []string) error {
		level, _ := cmd.Flags().GetString("level")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Income(ctx, scoring.IncomeRequest{
				Lat:               scoreLat,
				Lng:               scoreLng,
				Radius:            scoreRadius,
				TargetIncomeLevel: level,
			})
		})
	},
}

var scoreCompetitionCmd = &cobra.Command{
	Use:   "competition",
	Short: "Score competitive pressure from nearby businesses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		categories, _ := cmd.Flags().GetString("categories")
		target, _ := cmd.Flags().GetInt("target")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Competition(ctx, scoring.CompetitionRequest{
				Lat:                  scoreLat,
				Lng:                  scoreLng,
				Radius:               scoreRadius,
				Categories:           splitCategories(categories),
				TargetNumPerCategory: target,
			})
		})
	},
}

var scoreComplementaryCmd = &cobra.Command{
	Use:   "complementary",
	Short: "Score traffic-driving businesses nearby",
	RunE: func(cmd *cobra.Command, _ []string) error {
		categories, _ := cmd.Flags().GetString("categories")
		target, _ := cmd.Flags().GetInt("target")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Complementary(ctx, scoring.ComplementaryRequest{
				Lat:                  scoreLat,
				Lng:                  scoreLng,
				Radius:               scoreRadius,
				Categories:           splitCategories(categories),
				TargetNumPerCategory: target,
			})
		})
	},
}

var scoreProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Score demographics and income together",
	RunE: func(cmd *cobra.Command, _ []string) error {
		targetAge, _ := cmd.Flags().GetInt("target-age")
		sex, _ := cmd.Flags().GetString("sex")
		level, _ := cmd.Flags().GetString("level")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Profile(ctx, scoring.ProfileRequest{
				Lat:               scoreLat,
				Lng:               scoreLng,
				Radius:            scoreRadius,
				TargetAge:         targetAge,
				SexPreference:     sex,
				TargetIncomeLevel: level,
			})
		})
	},
}

var scoreTrafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Score storefront foot traffic",
	RunE: func(cmd *cobra.Command, _ []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		day, _ := cmd.Flags().GetString("day")
		at, _ := cmd.Flags().GetString("time")
		return runScore(cmd, func(ctx context.Context, svc *scoring.Service) (any, error) {
			return svc.Traffic(ctx, scoring.TrafficRequest{
				Lat:                 scoreLat,
				Lng:                 scoreLng,
				StorefrontDirection: direction,
				Day:                 day,
				Time:                at,
			})
		})
	},
}
