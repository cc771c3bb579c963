// Package analytics содержит чистую логику ранжирования предложений
// и агрегаты для дашборда.
package analytics

import "github.com/mkarpushin/procurement-backend/internal/models"

// Ranking — сводка сравнения предложений по одному RFP.
type Ranking struct {
	BestByScore       *models.Proposal
	BestByPrice       *models.Proposal
	AveragePrice      float64
	MinPrice          float64
	BudgetUtilization float64
}

// Rank сравнивает предложения по RFP.
//
// Лучшая оценка: предложение без оценки участвует с нулём; при равенстве
// побеждает первое в исходном порядке. Лучшая цена: предложения без цены
// не участвуют; если цены нет ни у кого, BestByPrice == nil. Средняя и
// минимальная цена считаются только по указанным ценам. Освоение бюджета —
// минимальная цена в процентах от бюджета RFP.
func Rank(rfp *models.RFP, proposals []models.Proposal) Ranking {
	var ranking Ranking

	if len(proposals) == 0 {
		return ranking
	}

	var (
		bestScore float64 = -1
		bestPrice float64
		priceSum  float64
		priceN    int
	)

	for i := range proposals {
		p := &proposals[i]

		score := 0.0
		if p.Score != nil {
			score = *p.Score
		}
		if score > bestScore {
			bestScore = score
			ranking.BestByScore = p
		}

		if p.TotalPrice == nil {
			continue
		}
		price := *p.TotalPrice
		priceSum += price
		priceN++
		if ranking.BestByPrice == nil || price < bestPrice {
			bestPrice = price
			ranking.BestByPrice = p
		}
	}

	if priceN > 0 {
		ranking.AveragePrice = priceSum / float64(priceN)
		ranking.MinPrice = bestPrice
		if rfp.Budget > 0 {
			ranking.BudgetUtilization = bestPrice / rfp.Budget * 100
		}
	}

	return ranking
}
