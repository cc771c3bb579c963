package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor описывает поставщика. Email уникален и служит ключом
// сопоставления входящих писем с карточкой поставщика.
type Vendor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Category      *string   `db:"category" json:"category,omitempty"`
	ContactPerson *string   `db:"contact_person" json:"contact_person,omitempty"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	ProposalsCount *int `db:"proposals_count" json:"proposals_count,omitempty"`
}
