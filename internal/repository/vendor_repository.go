package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// VendorRepository отвечает за справочник поставщиков.
type VendorRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrVendorNotFound = errors.New("vendor not found")
	ErrVendorExists   = errors.New("vendor with this email already exists")
)

// NewVendorRepository создаёт новый экземпляр.
func NewVendorRepository(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create сохраняет нового поставщика. Email нормализуется к нижнему регистру.
func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	vendor.Email = strings.ToLower(strings.TrimSpace(vendor.Email))

	query := `
		INSERT INTO vendors (name, email, category, contact_person, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		vendor.Name, vendor.Email, vendor.Category, vendor.ContactPerson, vendor.Phone).
		Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrVendorExists
		}
		return fmt.Errorf("vendor repository: create %w", err)
	}
	return nil
}

// GetByID возвращает поставщика по идентификатору.
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `
		SELECT id, name, email, category, contact_person, phone, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &vendor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("vendor repository: get by id %w", err)
	}
	return &vendor, nil
}

// GetByEmail возвращает поставщика по email (точное совпадение, регистр не учитывается).
func (r *VendorRepository) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `
		SELECT id, name, email, category, contact_person, phone, created_at, updated_at
		FROM vendors
		WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &vendor, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("vendor repository: get by email %w", err)
	}
	return &vendor, nil
}

// GetByIDs возвращает поставщиков по списку идентификаторов.
func (r *VendorRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return []models.Vendor{}, nil
	}

	vendors := []models.Vendor{}
	query := `
		SELECT id, name, email, category, contact_person, phone, created_at, updated_at
		FROM vendors
		WHERE id = ANY($1)
	`
	if err := r.db.SelectContext(ctx, &vendors, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("vendor repository: get by ids %w", err)
	}
	return vendors, nil
}

// List возвращает всех поставщиков с количеством поданных предложений.
func (r *VendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	query := `
		SELECT v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at,
		       COUNT(p.id) AS proposals_count
		FROM vendors v
		LEFT JOIN proposals p ON p.vendor_id = v.id
		GROUP BY v.id
		ORDER BY v.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &vendors, query); err != nil {
		return nil, fmt.Errorf("vendor repository: list %w", err)
	}
	return vendors, nil
}

// Leaderboard возвращает топ поставщиков по количеству предложений.
func (r *VendorRepository) Leaderboard(ctx context.Context, limit int) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	query := `
		SELECT v.id, v.name, v.email, v.category, v.contact_person, v.phone, v.created_at, v.updated_at,
		       COUNT(p.id) AS proposals_count
		FROM vendors v
		LEFT JOIN proposals p ON p.vendor_id = v.id
		GROUP BY v.id
		ORDER BY COUNT(p.id) DESC, v.name ASC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &vendors, query, limit); err != nil {
		return nil, fmt.Errorf("vendor repository: leaderboard %w", err)
	}
	return vendors, nil
}

// Update обновляет карточку поставщика.
func (r *VendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	vendor.Email = strings.ToLower(strings.TrimSpace(vendor.Email))

	query := `
		UPDATE vendors
		SET name = $1, email = $2, category = $3, contact_person = $4, phone = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		vendor.Name, vendor.Email, vendor.Category, vendor.ContactPerson, vendor.Phone, vendor.ID).
		Scan(&vendor.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrVendorNotFound
		}
		if isUniqueViolation(err) {
			return ErrVendorExists
		}
		return fmt.Errorf("vendor repository: update %w", err)
	}
	return nil
}

// Delete удаляет поставщика.
func (r *VendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("vendor repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrVendorNotFound
	}
	return nil
}

// Count возвращает общее количество поставщиков.
func (r *VendorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM vendors`); err != nil {
		return 0, fmt.Errorf("vendor repository: count %w", err)
	}
	return count, nil
}

// isUniqueViolation проверяет, что ошибка вызвана нарушением уникального индекса.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
