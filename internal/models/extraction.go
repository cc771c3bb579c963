package models

// ParsedRFP — структурированный результат разбора свободного текста заявки.
type ParsedRFP struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Budget         float64         `json:"budget"`
	Deadline       *string         `json:"deadline"`
	Requirements   RFPRequirements `json:"requirements"`
	PaymentTerms   *string         `json:"paymentTerms"`
	WarrantyPeriod *string         `json:"warrantyPeriod"`
}

// RFPRequirements — вложенная структура требований.
type RFPRequirements struct {
	Items            []RequirementItem `json:"items"`
	DeliveryTimeline string            `json:"deliveryTimeline"`
	Warranty         string            `json:"warranty"`
	PaymentTerms     string            `json:"paymentTerms"`
}

// RequirementItem — одна позиция закупки.
type RequirementItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Specifications string  `json:"specifications"`
}

// ParsedProposal — структурированный результат разбора письма поставщика.
type ParsedProposal struct {
	TotalPrice      *float64        `json:"totalPrice"`
	ItemizedPricing []ItemizedPrice `json:"itemizedPricing"`
	DeliveryTime    *string         `json:"deliveryTime"`
	Terms           *string         `json:"terms"`
	Warranty        *string         `json:"warranty"`
	PaymentTerms    *string         `json:"paymentTerms"`
	AdditionalNotes *string         `json:"additionalNotes"`
}

// ItemizedPrice — позиция в детализации цены поставщика.
type ItemizedPrice struct {
	Item     string  `json:"item"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// ProposalEvaluation — оценка предложения, сгенерированная AI.
type ProposalEvaluation struct {
	Summary    string   `json:"summary"`
	Score      float64  `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}
