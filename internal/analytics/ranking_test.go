package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

func proposalWith(price *float64, score *float64) models.Proposal {
	return models.Proposal{
		ID:         uuid.New(),
		TotalPrice: price,
		Score:      score,
	}
}

func ptr(v float64) *float64 { return &v }

func TestRank_PriceAggregates(t *testing.T) {
	rfp := &models.RFP{Budget: 50000}
	proposals := []models.Proposal{
		proposalWith(ptr(28750), ptr(80)),
		proposalWith(ptr(31700), nil),
		proposalWith(ptr(27000), ptr(65)),
	}

	ranking := Rank(rfp, proposals)

	assert.Equal(t, 27000.0, ranking.MinPrice)
	assert.InDelta(t, 29150.0, ranking.AveragePrice, 0.001)
	assert.InDelta(t, 54.0, ranking.BudgetUtilization, 0.1)
	require.NotNil(t, ranking.BestByPrice)
	assert.Equal(t, proposals[2].ID, ranking.BestByPrice.ID)
}

func TestRank_BestByScore_MissingScoreCountsAsZero(t *testing.T) {
	rfp := &models.RFP{Budget: 10000}
	proposals := []models.Proposal{
		proposalWith(ptr(5000), ptr(80)),
		proposalWith(ptr(4000), nil),
		proposalWith(ptr(6000), ptr(65)),
	}

	ranking := Rank(rfp, proposals)

	require.NotNil(t, ranking.BestByScore)
	assert.Equal(t, proposals[0].ID, ranking.BestByScore.ID)
}

func TestRank_BestByScore_TieFirstWins(t *testing.T) {
	rfp := &models.RFP{Budget: 10000}
	proposals := []models.Proposal{
		proposalWith(ptr(5000), ptr(70)),
		proposalWith(ptr(4000), ptr(70)),
	}

	ranking := Rank(rfp, proposals)

	require.NotNil(t, ranking.BestByScore)
	assert.Equal(t, proposals[0].ID, ranking.BestByScore.ID)
}

func TestRank_MissingPriceNeverBestByPrice(t *testing.T) {
	rfp := &models.RFP{Budget: 10000}
	proposals := []models.Proposal{
		proposalWith(nil, ptr(90)),
		proposalWith(ptr(9000), ptr(40)),
	}

	ranking := Rank(rfp, proposals)

	require.NotNil(t, ranking.BestByPrice)
	assert.Equal(t, proposals[1].ID, ranking.BestByPrice.ID)
	assert.Equal(t, 9000.0, ranking.MinPrice)
	assert.InDelta(t, 9000.0, ranking.AveragePrice, 0.001)
}

func TestRank_AllPricesMissing(t *testing.T) {
	rfp := &models.RFP{Budget: 10000}
	proposals := []models.Proposal{
		proposalWith(nil, ptr(90)),
		proposalWith(nil, nil),
	}

	ranking := Rank(rfp, proposals)

	assert.Nil(t, ranking.BestByPrice)
	assert.Zero(t, ranking.MinPrice)
	assert.Zero(t, ranking.AveragePrice)
	assert.Zero(t, ranking.BudgetUtilization)
	require.NotNil(t, ranking.BestByScore)
}

func TestRank_ZeroBudget(t *testing.T) {
	rfp := &models.RFP{Budget: 0}
	proposals := []models.Proposal{
		proposalWith(ptr(5000), ptr(50)),
	}

	ranking := Rank(rfp, proposals)

	assert.Zero(t, ranking.BudgetUtilization)
	assert.Equal(t, 5000.0, ranking.MinPrice)
}

func TestRank_NoProposals(t *testing.T) {
	rfp := &models.RFP{Budget: 10000}

	ranking := Rank(rfp, nil)

	assert.Nil(t, ranking.BestByScore)
	assert.Nil(t, ranking.BestByPrice)
	assert.Zero(t, ranking.AveragePrice)
}
