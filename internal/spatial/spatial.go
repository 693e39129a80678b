// Package spatial issues proximity queries against the PostGIS marketplace
// tables. Rows come back ordered by ascending geodesic distance from the
// query point, capped at 1000 per query.
package spatial

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/gridsight/site-scorer/internal/db"
)

// PopulationRow is one grid cell from the population features table.
// Numeric fields are pointers because the source data carries nulls; callers
// treat nil as zero, never as an error.
type PopulationRow struct {
	MainID           int64
	GridID           string
	Level            int
	PopulationCount  *float64
	MalePopulation   *float64
	FemalePopulation *float64
	DensityKM2       *float64
	MedianAgeTotal   *float64
	MedianAgeMale    *float64
	MedianAgeFemale  *float64
	Density          *float64
	Geometry         []byte
	Distance         float64
}

// Geom decodes the WKB geometry column. Returns nil for an empty column.
func (r *PopulationRow) Geom() (geom.T, error) {
	return decodeGeometry(r.Geometry)
}

// IncomeRow is one area from the income features table. The three tier score
// columns are pre-computed upstream; scoring averages them as-is.
type IncomeRow struct {
	Income      *float64
	Geometry    []byte
	LowScore    *float64
	MediumScore *float64
	HighScore   *float64
	Distance    float64
}

// Geom decodes the WKB geometry column. Returns nil for an empty column.
func (r *IncomeRow) Geom() (geom.T, error) {
	return decodeGeometry(r.Geometry)
}

func decodeGeometry(raw []byte) (geom.T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: decode geometry")
	}
	return g, nil
}

// Store serves the two proximity query shapes. An empty result is valid
// "no data", not an error.
type Store interface {
	PopulationWithin(ctx context.Context, lat, lng float64, radiusMeters int) ([]PopulationRow, error)
	IncomeWithin(ctx context.Context, lat, lng float64, radiusMeters int) ([]IncomeRow, error)
}

const populationQuery = `
	SELECT
		"Main_ID",
		"Grid_ID",
		"Level",
		"Population_Count",
		"Male_Population",
		"Female_Population",
		"Population_Density_KM2",
		"Median_Age_Total",
		"Median_Age_Male",
		"Median_Age_Female",
		density,
		ST_AsBinary(geometry) AS geometry,
		ST_Distance(geometry::geography, ST_MakePoint($2, $1)::geography) AS distance
	FROM schema_marketplace.population_all_features_v12
	WHERE ST_DWithin(
		geometry::geography,
		ST_MakePoint($2, $1)::geography,
		$3
	)
	ORDER BY distance
	LIMIT 1000`

const incomeQuery = `
	SELECT
		income,
		ST_AsBinary(geometry) AS geometry,
		low_income_score,
		medium_income_score,
		high_income_score,
		ST_Distance(geometry::geography, ST_MakePoint($2, $1)::geography) AS distance
	FROM schema_marketplace.area_income_all_features_v12
	WHERE ST_DWithin(
		geometry::geography,
		ST_MakePoint($2, $1)::geography,
		$3
	)
	ORDER BY distance
	LIMIT 1000`

// PostgresStore implements Store against the refreshing connection pool.
type PostgresStore struct {
	pool db.Acquirer
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Acquirer) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// PopulationWithin implements Store.
func (s *PostgresStore) PopulationWithin(ctx context.Context, lat, lng float64, radiusMeters int) ([]PopulationRow, error) {
	pool, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, populationQuery, lat, lng, radiusMeters)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: population query")
	}
	defer rows.Close()

	var out []PopulationRow
	for rows.Next() {
		var r PopulationRow
		if err := rows.Scan(
			&r.MainID, &r.GridID, &r.Level,
			&r.PopulationCount, &r.MalePopulation, &r.FemalePopulation,
			&r.DensityKM2, &r.MedianAgeTotal, &r.MedianAgeMale, &r.MedianAgeFemale,
			&r.Density, &r.Geometry, &r.Distance,
		); err != nil {
			return nil, eris.Wrap(err, "spatial: scan population row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IncomeWithin implements Store.
func (s *PostgresStore) IncomeWithin(ctx context.Context, lat, lng float64, radiusMeters int) ([]IncomeRow, error) {
	pool, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, incomeQuery, lat, lng, radiusMeters)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: income query")
	}
	defer rows.Close()

	var out []IncomeRow
	for rows.Next() {
		var r IncomeRow
		if err := rows.Scan(
			&r.Income, &r.Geometry,
			&r.LowScore, &r.MediumScore, &r.HighScore,
			&r.Distance,
		); err != nil {
			return nil, eris.Wrap(err, "spatial: scan income row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
