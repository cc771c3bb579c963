package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Proposal представляет ответ поставщика на RFP.
// На пару (rfp_id, vendor_id) существует не более одного предложения.
type Proposal struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	RFPID           uuid.UUID      `db:"rfp_id" json:"rfp_id"`
	VendorID        uuid.UUID      `db:"vendor_id" json:"vendor_id"`
	RawEmailContent string         `db:"raw_email_content" json:"raw_email_content"`
	ParsedData      types.JSONText `db:"parsed_data" json:"parsed_data,omitempty"`
	TotalPrice      *float64       `db:"total_price" json:"total_price,omitempty"`
	DeliveryTime    *string        `db:"delivery_time" json:"delivery_time,omitempty"`
	Terms           *string        `db:"terms" json:"terms,omitempty"`
	Score           *float64       `db:"score" json:"score,omitempty"`
	AISummary       *string        `db:"ai_summary" json:"ai_summary,omitempty"`
	Status          string         `db:"status" json:"status"`
	ReceivedAt      time.Time      `db:"received_at" json:"received_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`

	Vendor *Vendor `json:"vendor,omitempty"`
	RFP    *RFP    `json:"rfp,omitempty"`
}
