package orders

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
)

// PostgresStore backs the order collaborator with the commerce database.
// See migrations/001_init.sql for the expected schema.
type PostgresStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id", "first_name", "last_name", "company", "email", "phone",
	"abn", "installation_address", "installation_state", "installation_postcode",
	"status", "signing_status", "doc_id", "workflow_id", "last_error",
	"total_tax", "total",
}

func (p *PostgresStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	query, args, err := p.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}
	return p.fetchOne(ctx, query, args)
}

func (p *PostgresStore) FindByDocID(ctx context.Context, docID string) (*models.Order, error) {
	if docID == "" {
		return nil, nil
	}

	query, args, err := p.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"doc_id": docID}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build doc_id query: %w", err)
	}

	order, err := p.fetchOne(ctx, query, args)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return order, err
}

func (p *PostgresStore) fetchOne(ctx context.Context, query string, args []any) (*models.Order, error) {
	var o models.Order
	row := p.pool.QueryRow(ctx, query, args...)
	err := row.Scan(
		&o.ID, &o.FirstName, &o.LastName, &o.Company, &o.Email, &o.Phone,
		&o.ABN, &o.InstallationAddress, &o.InstallationState, &o.InstallationPostcode,
		&o.Status, &o.SigningStatus, &o.DocID, &o.WorkflowID, &o.LastError,
		&o.TotalTax, &o.Total,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if err := p.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	if err := p.loadNotes(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (p *PostgresStore) loadItems(ctx context.Context, o *models.Order) error {
	query, args, err := p.sb.Select("name", "quantity", "total").
		From("order_items").
		Where(sq.Eq{"order_id": o.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.Name, &item.Quantity, &item.Total); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (p *PostgresStore) loadNotes(ctx context.Context, o *models.Order) error {
	query, args, err := p.sb.Select("note").
		From("order_notes").
		Where(sq.Eq{"order_id": o.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notes query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to select order notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return fmt.Errorf("failed to scan order note: %w", err)
		}
		o.Notes = append(o.Notes, note)
	}
	return rows.Err()
}

func (p *PostgresStore) SetSigningMeta(ctx context.Context, id int64, docID, workflowID string) error {
	return p.update(ctx, id, sq.Eq{"doc_id": docID, "workflow_id": workflowID})
}

func (p *PostgresStore) SetSigningStatus(ctx context.Context, id int64, status models.SigningStatus) error {
	return p.update(ctx, id, sq.Eq{"signing_status": string(status)})
}

func (p *PostgresStore) SetLastError(ctx context.Context, id int64, detail string) error {
	return p.update(ctx, id, sq.Eq{"last_error": detail})
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id int64, status, note string) error {
	if err := p.update(ctx, id, sq.Eq{"status": status}); err != nil {
		return err
	}
	if note == "" {
		return nil
	}
	return p.AddNote(ctx, id, note)
}

func (p *PostgresStore) AddNote(ctx context.Context, id int64, note string) error {
	query, args, err := p.sb.Insert("order_notes").
		Columns("order_id", "note").
		Values(id, note).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build note insert: %w", err)
	}
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order note: %w", err)
	}
	return nil
}

func (p *PostgresStore) update(ctx context.Context, id int64, set map[string]any) error {
	builder := p.sb.Update("orders").Where(sq.Eq{"id": id})
	for col, val := range set {
		builder = builder.Set(col, val)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order update: %w", err)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
