package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// ProposalRepository отвечает за предложения поставщиков.
type ProposalRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrProposalExists   = errors.New("proposal for this rfp and vendor already exists")
)

// NewProposalRepository создаёт новый экземпляр.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет предложение. Уникальный индекс (rfp_id, vendor_id) — последний
// рубеж идемпотентности: нарушение транслируется в ErrProposalExists.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (rfp_id, vendor_id, raw_email_content, parsed_data, total_price, delivery_time, terms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, received_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		proposal.RFPID, proposal.VendorID, proposal.RawEmailContent, proposal.ParsedData,
		proposal.TotalPrice, proposal.DeliveryTime, proposal.Terms, proposal.Status).
		Scan(&proposal.ID, &proposal.ReceivedAt, &proposal.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProposalExists
		}
		return fmt.Errorf("proposal repository: create %w", err)
	}
	return nil
}

// GetByID возвращает предложение вместе с карточкой поставщика.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	query := `
		SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.parsed_data, p.total_price, p.delivery_time,
		       p.terms, p.score, p.ai_summary, p.status, p.received_at, p.updated_at,
		       v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at
		FROM proposals p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.id = $1
	`
	row := r.db.QueryRowxContext(ctx, query, id)
	proposal, err := scanProposalWithVendor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}
	return proposal, nil
}

// GetByRFPAndVendor возвращает предложение для пары (rfp, vendor).
// Это основной запрос идемпотентного шлюза конвейера.
func (r *ProposalRepository) GetByRFPAndVendor(ctx context.Context, rfpID, vendorID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `
		SELECT id, rfp_id, vendor_id, raw_email_content, parsed_data, total_price, delivery_time,
		       terms, score, ai_summary, status, received_at, updated_at
		FROM proposals
		WHERE rfp_id = $1 AND vendor_id = $2
	`
	if err := r.db.GetContext(ctx, &proposal, query, rfpID, vendorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by rfp and vendor %w", err)
	}
	return &proposal, nil
}

// ListByRFP возвращает предложения по RFP вместе с поставщиками, новые первыми.
func (r *ProposalRepository) ListByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error) {
	query := `
		SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.parsed_data, p.total_price, p.delivery_time,
		       p.terms, p.score, p.ai_summary, p.status, p.received_at, p.updated_at,
		       v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at
		FROM proposals p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.rfp_id = $1
		ORDER BY p.received_at DESC
	`
	rows, err := r.db.QueryxContext(ctx, query, rfpID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by rfp %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

// ListRecent возвращает последние предложения по всем RFP.
func (r *ProposalRepository) ListRecent(ctx context.Context, limit int) ([]models.Proposal, error) {
	query := `
		SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.parsed_data, p.total_price, p.delivery_time,
		       p.terms, p.score, p.ai_summary, p.status, p.received_at, p.updated_at,
		       v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at
		FROM proposals p
		JOIN vendors v ON v.id = p.vendor_id
		ORDER BY p.received_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list recent %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

// UpdateEvaluation записывает AI-оценку предложения.
func (r *ProposalRepository) UpdateEvaluation(ctx context.Context, id uuid.UUID, score float64, summary string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET score = $1, ai_summary = $2, updated_at = NOW() WHERE id = $3`,
		score, summary, id)
	if err != nil {
		return fmt.Errorf("proposal repository: update evaluation %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// UpdateStatus меняет статус предложения.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `
		UPDATE proposals SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, rfp_id, vendor_id, raw_email_content, parsed_data, total_price, delivery_time,
		          terms, score, ai_summary, status, received_at, updated_at
	`
	if err := r.db.GetContext(ctx, &proposal, query, status, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: update status %w", err)
	}
	return &proposal, nil
}

// Delete удаляет предложение.
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// Count возвращает общее количество предложений.
func (r *ProposalRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM proposals`); err != nil {
		return 0, fmt.Errorf("proposal repository: count %w", err)
	}
	return count, nil
}

// CountByStatus возвращает распределение предложений по статусам.
func (r *ProposalRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(1) FROM proposals GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: count by status %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("proposal repository: scan status count %w", err)
		}
		result[status] = count
	}
	return result, rows.Err()
}

// PriceStats агрегирует ценовую статистику по всем предложениям с указанной ценой.
type PriceStats struct {
	Average float64 `db:"average"`
	Minimum float64 `db:"minimum"`
	Maximum float64 `db:"maximum"`
	Total   float64 `db:"total"`
}

// GetPriceStats возвращает avg/min/max/sum цен. Предложения без цены не учитываются.
func (r *ProposalRepository) GetPriceStats(ctx context.Context) (*PriceStats, error) {
	var stats PriceStats
	query := `
		SELECT COALESCE(AVG(total_price), 0) AS average,
		       COALESCE(MIN(total_price), 0) AS minimum,
		       COALESCE(MAX(total_price), 0) AS maximum,
		       COALESCE(SUM(total_price), 0) AS total
		FROM proposals
		WHERE total_price IS NOT NULL
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("proposal repository: price stats %w", err)
	}
	return &stats, nil
}

// scanProposalWithVendor читает строку предложения с присоединённым поставщиком.
func scanProposalWithVendor(row sqlx.ColScanner) (*models.Proposal, error) {
	var p models.Proposal
	var v models.Vendor
	if err := row.Scan(
		&p.ID, &p.RFPID, &p.VendorID, &p.RawEmailContent, &p.ParsedData, &p.TotalPrice, &p.DeliveryTime,
		&p.Terms, &p.Score, &p.AISummary, &p.Status, &p.ReceivedAt, &p.UpdatedAt,
		&v.ID, &v.Name, &v.Email, &v.Category, &v.ContactPerson, &v.Phone, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Vendor = &v
	return &p, nil
}

func collectProposals(rows *sqlx.Rows) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	for rows.Next() {
		proposal, err := scanProposalWithVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("proposal repository: scan proposal %w", err)
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, rows.Err()
}
