package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// ExtractRFP разбирает свободный текст заявки на закупку в структурированный RFP.
// При любой ошибке сервиса или декодирования возвращает ErrExtraction.
func (c *Client) ExtractRFP(ctx context.Context, userInput string) (*models.ParsedRFP, error) {
	prompt := fmt.Sprintf(`You are an expert procurement assistant. Parse the following natural language RFP request into a structured JSON format.

User Request: %q

Extract and return ONLY valid JSON with this exact structure (no markdown, no code blocks, just JSON):
{
  "title": "Brief title for this RFP",
  "description": "Full description of what needs to be procured",
  "budget": <number>,
  "deadline": "YYYY-MM-DD",
  "requirements": {
    "items": [{"name": "item name", "quantity": number, "specifications": "details"}],
    "deliveryTimeline": "timeline details",
    "warranty": "warranty requirements",
    "paymentTerms": "payment terms"
  },
  "paymentTerms": "payment terms string",
  "warrantyPeriod": "warranty period string"
}

If any field is not mentioned, use reasonable defaults or null. Budget should be a number. Date should be in YYYY-MM-DD format.`, userInput)

	raw, err := c.chatCompletionWithOptions(ctx, []map[string]string{
		{"role": "user", "content": prompt},
	}, 2048, 0.2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var parsed models.ParsedRFP
	if err := decodeInto(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return &parsed, nil
}

// ExtractProposal разбирает письмо поставщика в структурированное предложение,
// опираясь на контекст исходного RFP. При ошибке возвращает ErrExtraction.
func (c *Client) ExtractProposal(ctx context.Context, emailContent string, rfp *models.RFP) (*models.ParsedProposal, error) {
	rfpContext, err := json.MarshalIndent(map[string]any{
		"title":        rfp.Title,
		"description":  rfp.Description,
		"budget":       rfp.Budget,
		"requirements": rfp.Requirements,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	prompt := fmt.Sprintf(`You are an expert procurement analyst. Parse this vendor's email response to an RFP into structured data.

RFP Details:
%s

Vendor Email:
%q

Extract and return ONLY valid JSON (no markdown, no code blocks):
{
  "totalPrice": <number or null>,
  "itemizedPricing": [{"item": "name", "price": number, "quantity": number}],
  "deliveryTime": "delivery timeline",
  "terms": "terms and conditions mentioned",
  "warranty": "warranty details",
  "paymentTerms": "payment terms offered",
  "additionalNotes": "any other important information"
}

If information is not provided, use null for that field.`, rfpContext, emailContent)

	raw, err := c.chatCompletionWithOptions(ctx, []map[string]string{
		{"role": "user", "content": prompt},
	}, 2048, 0.2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var parsed models.ParsedProposal
	if err := decodeInto(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return &parsed, nil
}
