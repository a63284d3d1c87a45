package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-expense-tracker/internal/model"
)

const eventColumns = `id, user_id, seq, event_date, type, amount_cents, category, note,
	order_no, counterparty_name, address, tel_no, customer_type,
	withholding_tax_percent, withholding_tax_cents, service_fee_percent, service_fee_cents,
	created_at, updated_at`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (model.ExpenseEvent, error) {
	var e model.ExpenseEvent
	err := row.Scan(&e.ID, &e.UserID, &e.Seq, &e.Date, &e.Type, &e.AmountCents, &e.Category, &e.Note,
		&e.OrderNo, &e.CounterpartyName, &e.Address, &e.TelNo, &e.CustomerType,
		&e.WithholdingTaxPercent, &e.WithholdingTaxCents, &e.ServiceFeePercent, &e.ServiceFeeCents,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// nextSeq bumps the per-user counter inside tx. The upsert is a single atomic
// statement, so two concurrent first-ever creations cannot both insert, and
// concurrent increments serialize on the row lock. The counter never goes
// backwards, even when events are deleted.
func nextSeq(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx,
		`INSERT INTO expense_event_counters (user_id, last_seq)
		 VALUES ($1, 1)
		 ON CONFLICT (user_id) DO UPDATE SET last_seq = expense_event_counters.last_seq + 1
		 RETURNING last_seq`, userID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate sequence: %w", err)
	}
	return seq, nil
}

// Create allocates the sequence number and inserts the event plus its line
// items in one transaction: either the counter bump and the rows all land, or
// none do.
func (r *EventRepository) Create(ctx context.Context, e model.ExpenseEvent) (model.ExpenseEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.ExpenseEvent{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	e.Seq, err = nextSeq(ctx, tx, e.UserID)
	if err != nil {
		return model.ExpenseEvent{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO expense_events (id, user_id, seq, event_date, type, amount_cents, category, note,
			order_no, counterparty_name, address, tel_no, customer_type,
			withholding_tax_percent, withholding_tax_cents, service_fee_percent, service_fee_cents,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		e.ID, e.UserID, e.Seq, e.Date, e.Type, e.AmountCents, e.Category, e.Note,
		e.OrderNo, e.CounterpartyName, e.Address, e.TelNo, e.CustomerType,
		e.WithholdingTaxPercent, e.WithholdingTaxCents, e.ServiceFeePercent, e.ServiceFeeCents,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return model.ExpenseEvent{}, fmt.Errorf("insert event: %w", err)
	}

	if err := insertItems(ctx, tx, e.ID, e.Items); err != nil {
		return model.ExpenseEvent{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ExpenseEvent{}, fmt.Errorf("commit event create: %w", err)
	}
	return e, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, eventID string, items []model.ExpenseItem) error {
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].EventID = eventID
		items[i].Position = i
		_, err := tx.Exec(ctx,
			`INSERT INTO expense_items (id, event_id, name, amount_cents, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			items[i].ID, eventID, items[i].Name, items[i].AmountCents, i)
		if err != nil {
			return fmt.Errorf("insert expense item: %w", err)
		}
	}
	return nil
}

// Update writes the event row and, when replaceItems is set, swaps the whole
// line-item collection (delete all, recreate) in the same transaction.
func (r *EventRepository) Update(ctx context.Context, e model.ExpenseEvent, replaceItems bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE expense_events
		 SET event_date = $3, type = $4, amount_cents = $5, category = $6, note = $7,
		     order_no = $8, counterparty_name = $9, address = $10, tel_no = $11, customer_type = $12,
		     withholding_tax_percent = $13, withholding_tax_cents = $14,
		     service_fee_percent = $15, service_fee_cents = $16, updated_at = $17
		 WHERE id = $1 AND user_id = $2`,
		e.ID, e.UserID, e.Date, e.Type, e.AmountCents, e.Category, e.Note,
		e.OrderNo, e.CounterpartyName, e.Address, e.TelNo, e.CustomerType,
		e.WithholdingTaxPercent, e.WithholdingTaxCents,
		e.ServiceFeePercent, e.ServiceFeeCents, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	if replaceItems {
		if _, err := tx.Exec(ctx, `DELETE FROM expense_items WHERE event_id = $1`, e.ID); err != nil {
			return fmt.Errorf("delete expense items: %w", err)
		}
		if err := insertItems(ctx, tx, e.ID, e.Items); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit event update: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, userID string, id string) (model.ExpenseEvent, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM expense_events WHERE id = $1 AND user_id = $2`, id, userID))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ExpenseEvent{}, model.ErrEventNotFound
	}
	if err != nil {
		return model.ExpenseEvent{}, fmt.Errorf("find event: %w", err)
	}

	e.Items, err = r.listItems(ctx, e.ID)
	if err != nil {
		return model.ExpenseEvent{}, err
	}
	return e, nil
}

func (r *EventRepository) listItems(ctx context.Context, eventID string) ([]model.ExpenseItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, name, amount_cents, position
		 FROM expense_items WHERE event_id = $1 ORDER BY position ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list expense items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ExpenseItem, 0)
	for rows.Next() {
		var it model.ExpenseItem
		if err := rows.Scan(&it.ID, &it.EventID, &it.Name, &it.AmountCents, &it.Position); err != nil {
			return nil, fmt.Errorf("scan expense item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *EventRepository) List(ctx context.Context, userID string, from *time.Time, to *time.Time, typ string) ([]model.ExpenseEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM expense_events WHERE user_id = $1`
	args := []any{userID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND event_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND event_date <= $%d`, len(args))
	}
	if typ != "" {
		args = append(args, typ)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	query += ` ORDER BY event_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]model.ExpenseEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		events[i].Items, err = r.listItems(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Delete removes the event; the per-user counter is left untouched, so the
// freed sequence number is never reused.
func (r *EventRepository) Delete(ctx context.Context, userID string, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM expense_events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// Sum returns income and expense totals in cents for the period.
func (r *EventRepository) Sum(ctx context.Context, userID string, from *time.Time, to *time.Time) (int64, int64, error) {
	query := `SELECT type, COALESCE(SUM(amount_cents), 0) FROM expense_events WHERE user_id = $1`
	args := []any{userID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND event_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND event_date <= $%d`, len(args))
	}
	query += ` GROUP BY type`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("sum events: %w", err)
	}
	defer rows.Close()

	var income, expense int64
	for rows.Next() {
		var typ string
		var total int64
		if err := rows.Scan(&typ, &total); err != nil {
			return 0, 0, fmt.Errorf("scan sum row: %w", err)
		}
		if typ == model.TypeIncome {
			income = total
		} else {
			expense = total
		}
	}
	return income, expense, rows.Err()
}
