package postgres

import (
	"context"

	"orderdesk-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type statusHistoryRepository struct {
	db *pgxpool.Pool
}

func NewStatusHistoryRepository(db *pgxpool.Pool) domain.StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Record(ctx context.Context, change *domain.StatusChange) error {
	if change.ID == "" {
		change.ID = uuid.NewString()
	}

	var payment *string
	if change.PaymentStatus != nil {
		p := string(*change.PaymentStatus)
		payment = &p
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, previous_status, new_status, payment_status, note, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		change.ID,
		change.OrderID,
		string(change.PreviousStatus),
		string(change.NewStatus),
		payment,
		change.Note,
		change.ActorID,
	)
	return err
}

func (r *statusHistoryRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, previous_status, new_status, payment_status, note, actor_id, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at DESC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		var previous, next string
		var payment *string

		if err := rows.Scan(&change.ID, &change.OrderID, &previous, &next, &payment, &change.Note, &change.ActorID, &change.CreatedAt); err != nil {
			return nil, err
		}

		change.PreviousStatus = domain.OrderStatus(previous)
		change.NewStatus = domain.OrderStatus(next)
		if payment != nil {
			p := domain.PaymentStatus(*payment)
			change.PaymentStatus = &p
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}
