package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

type recordStore struct {
	db *sql.DB
}

// NewRecordStore создаёт PostgreSQL-реализацию OrderRecordStore.
// Запись хранится целиком в JSONB; порядок списка — порядок вставки.
func NewRecordStore(store *Store) domain.OrderRecordStore {
	return &recordStore{db: store.DB()}
}

func (r *recordStore) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, body FROM orders ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		order, err := decodeOrder(id, body)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *recordStore) Get(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var body []byte
	err := r.db.QueryRowContext(ctx, `SELECT body FROM orders WHERE id = $1`, string(id)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return decodeOrder(string(id), body)
}

func (r *recordStore) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.ID == "" {
		order.ID = domain.OrderID(uuid.NewString()[:8])
	}
	body, err := json.Marshal(order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, body, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
	`, string(order.ID), body); err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, domain.ErrOrderExists
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// Patch читает запись под блокировкой строки и сохраняет результат ApplyPatch.
func (r *recordStore) Patch(ctx context.Context, id domain.OrderID, patch domain.OrderPatch) (updated domain.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var body []byte
	err = tx.QueryRowContext(ctx, `SELECT body FROM orders WHERE id = $1 FOR UPDATE`, string(id)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order for update: %w", err)
	}

	current, err := decodeOrder(string(id), body)
	if err != nil {
		return domain.Order{}, err
	}
	updated = domain.ApplyPatch(current, patch)

	next, err := json.Marshal(updated)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE orders SET body = $2, updated_at = NOW() WHERE id = $1`, string(id), next); err != nil {
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

func (r *recordStore) Delete(ctx context.Context, id domain.OrderID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func decodeOrder(id string, body []byte) (domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	// Ключ строки главнее id внутри документа.
	order.ID = domain.OrderID(id)
	return order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRecordStore = (*recordStore)(nil)
