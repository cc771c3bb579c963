package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// RFP описывает запрос предложений (request for proposals).
// Requirements хранится как jsonb: структуру задаёт экстрактор, дальше она
// используется как непрозрачный документ.
type RFP struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description"`
	Budget         float64        `db:"budget" json:"budget"`
	Deadline       *time.Time     `db:"deadline" json:"deadline,omitempty"`
	Requirements   types.JSONText `db:"requirements" json:"requirements,omitempty"`
	PaymentTerms   *string        `db:"payment_terms" json:"payment_terms,omitempty"`
	WarrantyPeriod *string        `db:"warranty_period" json:"warranty_period,omitempty"`
	Status         string         `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	ProposalsCount *int `db:"proposals_count" json:"proposals_count,omitempty"`
}

// RFPVendor связывает RFP с поставщиком, которому отправлено приглашение.
type RFPVendor struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RFPID       uuid.UUID  `db:"rfp_id" json:"rfp_id"`
	VendorID    uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	EmailStatus string     `db:"email_status" json:"email_status"`

	Vendor *Vendor `json:"vendor,omitempty"`
}
