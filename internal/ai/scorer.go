package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkarpushin/procurement-backend/internal/logger"
	"github.com/mkarpushin/procurement-backend/internal/models"
)

const neutralScore = 50

// ScoreProposal оценивает предложение относительно требований RFP.
// В отличие от экстракции, оценка — необязательное улучшение: при любой
// ошибке возвращается нейтральный результат, а не ошибка.
func (c *Client) ScoreProposal(ctx context.Context, parsed *models.ParsedProposal, rfp *models.RFP) *models.ProposalEvaluation {
	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return neutralEvaluation()
	}

	totalPrice := "Not specified"
	if parsed.TotalPrice != nil {
		totalPrice = fmt.Sprintf("$%.2f", *parsed.TotalPrice)
	}
	deliveryTime := "Not specified"
	if parsed.DeliveryTime != nil {
		deliveryTime = *parsed.DeliveryTime
	}

	prompt := fmt.Sprintf(`Analyze this vendor proposal against the RFP requirements and provide a summary and score.

RFP Budget: $%.2f
RFP Requirements: %s

Proposal:
Total Price: %s
Delivery Time: %s
Parsed Data: %s

Return JSON only (no markdown):
{
  "summary": "2-3 sentence summary of this proposal",
  "score": <number 0-100 based on how well it meets requirements>,
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"]
}`, rfp.Budget, string(rfp.Requirements), totalPrice, deliveryTime, string(parsedJSON))

	raw, err := c.chatCompletion(ctx, []map[string]string{
		{"role": "user", "content": prompt},
	})
	if err != nil {
		logWarn("ai: оценка предложения не удалась", err)
		return neutralEvaluation()
	}

	var evaluation models.ProposalEvaluation
	if err := decodeInto(raw, &evaluation); err != nil {
		logWarn("ai: ответ оценки не разбирается", err)
		return neutralEvaluation()
	}

	// Зажимаем оценку в допустимый диапазон.
	if evaluation.Score < 0 {
		evaluation.Score = 0
	}
	if evaluation.Score > 100 {
		evaluation.Score = 100
	}

	return &evaluation
}

// neutralEvaluation — нейтральный результат на случай недоступности AI.
func neutralEvaluation() *models.ProposalEvaluation {
	return &models.ProposalEvaluation{
		Summary:    "Unable to generate summary",
		Score:      neutralScore,
		Strengths:  []string{},
		Weaknesses: []string{},
	}
}

func logWarn(msg string, err error) {
	if logger.Log != nil {
		logger.Log.WithError(err).Warn(msg)
	}
}
