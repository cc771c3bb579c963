package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkarpushin/procurement-backend/internal/analytics"
	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

// Dashboard — сводная аналитика по всей системе.
type Dashboard struct {
	Totals            DashboardTotals       `json:"totals"`
	RFPsByStatus      map[string]int        `json:"rfpsByStatus"`
	ProposalsByStatus map[string]int        `json:"proposalsByStatus"`
	PriceStats        repository.PriceStats `json:"priceStats"`
	RecentRFPs        []models.RFP          `json:"recentRfps"`
	RecentProposals   []models.Proposal     `json:"recentProposals"`
	TopVendors        []models.Vendor       `json:"topVendors"`
	BudgetComparisons []BudgetComparison    `json:"budgetComparisons"`
}

// DashboardTotals — счётчики сущностей.
type DashboardTotals struct {
	RFPs               int     `json:"rfps"`
	Vendors            int     `json:"vendors"`
	Proposals          int     `json:"proposals"`
	AvgProposalsPerRFP float64 `json:"avgProposalsPerRfp"`
}

// BudgetComparison — сравнение бюджета RFP с полученными ценами.
type BudgetComparison struct {
	RFPID             uuid.UUID        `json:"rfpId"`
	Title             string           `json:"title"`
	Budget            float64          `json:"budget"`
	ProposalCount     int              `json:"proposalCount"`
	MinPrice          float64          `json:"minPrice"`
	AveragePrice      float64          `json:"averagePrice"`
	BudgetUtilization float64          `json:"budgetUtilization"`
	Recommended       *models.Proposal `json:"recommended,omitempty"`
}

// RFPAnalytics — сравнение предложений по одному RFP.
type RFPAnalytics struct {
	RFP               *models.RFP       `json:"rfp"`
	ProposalCount     int               `json:"proposalCount"`
	BestByScore       *models.Proposal  `json:"bestByScore"`
	BestByPrice       *models.Proposal  `json:"bestByPrice"`
	AveragePrice      float64           `json:"averagePrice"`
	MinPrice          float64           `json:"minPrice"`
	MaxPrice          float64           `json:"maxPrice"`
	BudgetUtilization float64           `json:"budgetUtilization"`
	Proposals         []models.Proposal `json:"proposals"`
}

// AnalyticsService собирает агрегаты для дашборда и сравнение предложений.
type AnalyticsService struct {
	rfps      *repository.RFPRepository
	vendors   *repository.VendorRepository
	proposals *repository.ProposalRepository
}

// NewAnalyticsService создаёт сервис.
func NewAnalyticsService(rfps *repository.RFPRepository, vendors *repository.VendorRepository, proposals *repository.ProposalRepository) *AnalyticsService {
	return &AnalyticsService{
		rfps:      rfps,
		vendors:   vendors,
		proposals: proposals,
	}
}

// GetDashboard возвращает сводку по всей системе.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{}

	var err error
	if dashboard.Totals.RFPs, err = s.rfps.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.Totals.Vendors, err = s.vendors.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.Totals.Proposals, err = s.proposals.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.Totals.RFPs > 0 {
		dashboard.Totals.AvgProposalsPerRFP = float64(dashboard.Totals.Proposals) / float64(dashboard.Totals.RFPs)
	}

	if dashboard.RFPsByStatus, err = s.rfps.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if dashboard.ProposalsByStatus, err = s.proposals.CountByStatus(ctx); err != nil {
		return nil, err
	}

	priceStats, err := s.proposals.GetPriceStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.PriceStats = *priceStats

	if dashboard.RecentRFPs, err = s.rfps.ListRecent(ctx, 10); err != nil {
		return nil, err
	}
	if dashboard.RecentProposals, err = s.proposals.ListRecent(ctx, 20); err != nil {
		return nil, err
	}
	if dashboard.TopVendors, err = s.vendors.Leaderboard(ctx, 10); err != nil {
		return nil, err
	}

	if dashboard.BudgetComparisons, err = s.budgetComparisons(ctx, dashboard.RecentRFPs); err != nil {
		return nil, err
	}

	return dashboard, nil
}

// budgetComparisons строит сравнение бюджета с ценами по каждому из недавних RFP.
func (s *AnalyticsService) budgetComparisons(ctx context.Context, rfps []models.RFP) ([]BudgetComparison, error) {
	comparisons := make([]BudgetComparison, 0, len(rfps))

	for i := range rfps {
		rfp := &rfps[i]

		proposals, err := s.proposals.ListByRFP(ctx, rfp.ID)
		if err != nil {
			return nil, err
		}

		ranking := analytics.Rank(rfp, proposals)
		comparisons = append(comparisons, BudgetComparison{
			RFPID:             rfp.ID,
			Title:             rfp.Title,
			Budget:            rfp.Budget,
			ProposalCount:     len(proposals),
			MinPrice:          ranking.MinPrice,
			AveragePrice:      ranking.AveragePrice,
			BudgetUtilization: ranking.BudgetUtilization,
			Recommended:       ranking.BestByScore,
		})
	}

	return comparisons, nil
}

// GetRFPAnalytics возвращает сравнение предложений по одному RFP.
func (s *AnalyticsService) GetRFPAnalytics(ctx context.Context, rfpID uuid.UUID) (*RFPAnalytics, error) {
	rfp, err := s.rfps.GetByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.proposals.ListByRFP(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	ranking := analytics.Rank(rfp, proposals)

	maxPrice := 0.0
	for i := range proposals {
		if proposals[i].TotalPrice != nil && *proposals[i].TotalPrice > maxPrice {
			maxPrice = *proposals[i].TotalPrice
		}
	}

	return &RFPAnalytics{
		RFP:               rfp,
		ProposalCount:     len(proposals),
		BestByScore:       ranking.BestByScore,
		BestByPrice:       ranking.BestByPrice,
		AveragePrice:      ranking.AveragePrice,
		MinPrice:          ranking.MinPrice,
		MaxPrice:          maxPrice,
		BudgetUtilization: ranking.BudgetUtilization,
		Proposals:         proposals,
	}, nil
}
