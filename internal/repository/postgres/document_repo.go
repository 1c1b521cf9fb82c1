package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, tenant_id, doc_type, number, doc_date, party_id, party_name, paid, notes,
		gst_enabled, gst_type, line_items, duties,
		taxable_subtotal, gst_total, cgst, sgst, igst, duty_total, round_off, grand_total,
		created_by, created_at, updated_at
	) VALUES (
		:id, :tenant_id, :doc_type, :number, :doc_date, :party_id, :party_name, :paid, :notes,
		:gst_enabled, :gst_type, :line_items, :duties,
		:taxable_subtotal, :gst_total, :cgst, :sgst, :igst, :duty_total, :round_off, :grand_total,
		:created_by, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		if isDuplicateNumber(err) {
			return domain.ErrDuplicateDocumentNumber
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	query := `UPDATE documents SET
		number = :number, doc_date = :doc_date, party_id = :party_id, party_name = :party_name,
		paid = :paid, notes = :notes, gst_enabled = :gst_enabled, gst_type = :gst_type,
		line_items = :line_items, duties = :duties,
		taxable_subtotal = :taxable_subtotal, gst_total = :gst_total, cgst = :cgst, sgst = :sgst,
		igst = :igst, duty_total = :duty_total, round_off = :round_off, grand_total = :grand_total,
		updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		if isDuplicateNumber(err) {
			return domain.ErrDuplicateDocumentNumber
		}
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND tenant_id = $2", docID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE id > $1 ORDER BY id LIMIT $2", afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListBatch: %w", err)
	}
	return docs, nil
}

func isDuplicateNumber(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, "number")
}
