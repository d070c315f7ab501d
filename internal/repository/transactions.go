package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cabinet-go/cabinet/internal/document"
)

type TransactionRepository interface {
	Save(ctx context.Context, tx document.Transaction) error
	// ListBetween returns transactions dated inside [start, end], the window
	// a document's matcher declares relevant.
	ListBetween(ctx context.Context, start, end time.Time) ([]document.Transaction, error)
}

type transactionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *transactionRepository) Save(ctx context.Context, tx document.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, tx_date, amount, name, memo)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), tx.Date.UTC(), tx.Amount, tx.Name, tx.Memo)
	if err != nil {
		r.logger.Error("failed to save transaction", "error", err)
	}
	return err
}

func (r *transactionRepository) ListBetween(ctx context.Context, start, end time.Time) ([]document.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tx_date, amount, name, memo FROM transactions
		 WHERE tx_date >= $1 AND tx_date <= $2 ORDER BY tx_date`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.Transaction
	for rows.Next() {
		var tx document.Transaction
		if err := rows.Scan(&tx.Date, &tx.Amount, &tx.Name, &tx.Memo); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
