package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// RFPRepository отвечает за работу с запросами предложений.
type RFPRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrRFPNotFound = errors.New("rfp not found")
)

// NewRFPRepository создаёт новый экземпляр.
func NewRFPRepository(db *sqlx.DB) *RFPRepository {
	return &RFPRepository{db: db}
}

// Create сохраняет новый RFP.
func (r *RFPRepository) Create(ctx context.Context, rfp *models.RFP) error {
	query := `
		INSERT INTO rfps (title, description, budget, deadline, requirements, payment_terms, warranty_period, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rfp.Title, rfp.Description, rfp.Budget, rfp.Deadline, rfp.Requirements,
		rfp.PaymentTerms, rfp.WarrantyPeriod, rfp.Status).
		Scan(&rfp.ID, &rfp.CreatedAt, &rfp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("rfp repository: create %w", err)
	}
	return nil
}

// GetByID возвращает RFP по идентификатору.
func (r *RFPRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	var rfp models.RFP
	query := `
		SELECT id, title, description, budget, deadline, requirements, payment_terms, warranty_period, status, created_at, updated_at
		FROM rfps
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &rfp, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRFPNotFound
		}
		return nil, fmt.Errorf("rfp repository: get by id %w", err)
	}
	return &rfp, nil
}

// List возвращает все RFP с количеством полученных предложений, новые первыми.
func (r *RFPRepository) List(ctx context.Context) ([]models.RFP, error) {
	rfps := []models.RFP{}
	query := `
		SELECT r.id, r.title, r.description, r.budget, r.deadline, r.requirements, r.payment_terms, r.warranty_period, r.status, r.created_at, r.updated_at,
		       COUNT(p.id) AS proposals_count
		FROM rfps r
		LEFT JOIN proposals p ON p.rfp_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rfps, query); err != nil {
		return nil, fmt.Errorf("rfp repository: list %w", err)
	}
	return rfps, nil
}

// ListRecent возвращает последние RFP с количеством предложений (для дашборда).
func (r *RFPRepository) ListRecent(ctx context.Context, limit int) ([]models.RFP, error) {
	rfps := []models.RFP{}
	query := `
		SELECT r.id, r.title, r.description, r.budget, r.deadline, r.requirements, r.payment_terms, r.warranty_period, r.status, r.created_at, r.updated_at,
		       COUNT(p.id) AS proposals_count
		FROM rfps r
		LEFT JOIN proposals p ON p.rfp_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &rfps, query, limit); err != nil {
		return nil, fmt.Errorf("rfp repository: list recent %w", err)
	}
	return rfps, nil
}

// Update обновляет изменяемые поля RFP.
func (r *RFPRepository) Update(ctx context.Context, rfp *models.RFP) error {
	query := `
		UPDATE rfps
		SET title = $1, description = $2, budget = $3, deadline = $4, requirements = $5,
		    payment_terms = $6, warranty_period = $7, status = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rfp.Title, rfp.Description, rfp.Budget, rfp.Deadline, rfp.Requirements,
		rfp.PaymentTerms, rfp.WarrantyPeriod, rfp.Status, rfp.ID).
		Scan(&rfp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRFPNotFound
		}
		return fmt.Errorf("rfp repository: update %w", err)
	}
	return nil
}

// UpdateStatus меняет статус RFP (draft -> sent -> closed).
func (r *RFPRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rfps SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("rfp repository: update status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRFPNotFound
	}
	return nil
}

// Delete удаляет RFP вместе со связанными записями (каскад в схеме).
func (r *RFPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rfps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rfp repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRFPNotFound
	}
	return nil
}

// Count возвращает общее количество RFP.
func (r *RFPRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM rfps`); err != nil {
		return 0, fmt.Errorf("rfp repository: count %w", err)
	}
	return count, nil
}

// CountByStatus возвращает распределение RFP по статусам.
func (r *RFPRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(1) FROM rfps GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("rfp repository: count by status %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("rfp repository: scan status count %w", err)
		}
		result[status] = count
	}
	return result, rows.Err()
}

// UpsertRecipient отмечает, что приглашение по RFP отправлено поставщику.
// Повторная отправка обновляет отметку времени, а не создаёт дубль.
func (r *RFPRepository) UpsertRecipient(ctx context.Context, rfpID, vendorID uuid.UUID, status string, sentAt time.Time) error {
	query := `
		INSERT INTO rfp_vendors (rfp_id, vendor_id, email_status, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rfp_id, vendor_id) DO UPDATE SET email_status = EXCLUDED.email_status, sent_at = EXCLUDED.sent_at
	`
	if _, err := r.db.ExecContext(ctx, query, rfpID, vendorID, status, sentAt); err != nil {
		return fmt.Errorf("rfp repository: upsert recipient %w", err)
	}
	return nil
}

// ListRecipients возвращает поставщиков, которым разослан данный RFP.
func (r *RFPRepository) ListRecipients(ctx context.Context, rfpID uuid.UUID) ([]models.RFPVendor, error) {
	query := `
		SELECT rv.id, rv.rfp_id, rv.vendor_id, rv.sent_at, rv.email_status,
		       v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at
		FROM rfp_vendors rv
		JOIN vendors v ON v.id = rv.vendor_id
		WHERE rv.rfp_id = $1
		ORDER BY rv.sent_at
	`
	rows, err := r.db.QueryxContext(ctx, query, rfpID)
	if err != nil {
		return nil, fmt.Errorf("rfp repository: list recipients %w", err)
	}
	defer rows.Close()

	recipients := []models.RFPVendor{}
	for rows.Next() {
		var rv models.RFPVendor
		var vendor models.Vendor
		if err := rows.Scan(
			&rv.ID, &rv.RFPID, &rv.VendorID, &rv.SentAt, &rv.EmailStatus,
			&vendor.ID, &vendor.Name, &vendor.Email, &vendor.Category,
			&vendor.ContactPerson, &vendor.Phone, &vendor.CreatedAt, &vendor.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rfp repository: scan recipient %w", err)
		}
		rv.Vendor = &vendor
		recipients = append(recipients, rv)
	}
	return recipients, rows.Err()
}
