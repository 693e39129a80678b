package scoring

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsight/site-scorer/internal/spatial"
)

func TestProfileCombinesBothScores(t *testing.T) {
	store := &stubStore{
		populationRows: []spatial.PopulationRow{
			{PopulationCount: fptr(1000), MedianAgeTotal: fptr(35)},
		},
		incomeRows: []spatial.IncomeRow{{MediumScore: fptr(75)}},
	}
	svc := newTestService(store, nil, nil)

	profile, err := svc.Profile(context.Background(), ProfileRequest{
		Lat: 40.7, Lng: -74.0, Radius: 1500,
		TargetAge: 35, TargetIncomeLevel: "medium",
	})

	require.NoError(t, err)
	require.NotNil(t, profile.Demographics)
	require.NotNil(t, profile.Income)
	assert.Equal(t, int64(1000), profile.Demographics.TargetPopulation)
	assert.Equal(t, 75.0, profile.Income.Score)
}

func TestProfileStoreErrorFailsCall(t *testing.T) {
	store := &stubStore{err: eris.New("timeout")}
	svc := newTestService(store, nil, nil)

	_, err := svc.Profile(context.Background(), ProfileRequest{
		Lat: 40.7, Lng: -74.0, Radius: 1500,
		TargetAge: 35, TargetIncomeLevel: "medium",
	})

	require.Error(t, err)
}

func TestProfileRequestValidate(t *testing.T) {
	valid := ProfileRequest{
		Lat: 40.7, Lng: -74.0, Radius: 1000,
		TargetAge: 35, TargetIncomeLevel: "high",
	}
	assert.Empty(t, valid.Validate())

	bad := ProfileRequest{Lat: 40.7, Lng: -74.0, Radius: 1000, TargetAge: 35}
	violations := bad.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "target_income_level", violations[0].Field)
}
