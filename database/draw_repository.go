package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
)

// DrawRepository stores draw records in the lotto_draws table
type DrawRepository struct {
	db *sql.DB
}

// NewDrawRepository creates a repository over an open pool
func NewDrawRepository(db *sql.DB) *DrawRepository {
	return &DrawRepository{db: db}
}

// UpsertDraw inserts the record or replaces the stored row with the same draw_no
func (r *DrawRepository) UpsertDraw(ctx context.Context, record models.DrawRecord) error {
	winningNumbers, err := json.Marshal(record.WinningNumbers)
	if err != nil {
		return fmt.Errorf("failed to encode winning numbers: %w", err)
	}
	rankDetails, err := json.Marshal(record.RankDetails)
	if err != nil {
		return fmt.Errorf("failed to encode rank details: %w", err)
	}

	query := `
		INSERT INTO lotto_draws (
			draw_no, draw_date, winning_numbers, bonus_number,
			rank_details, note, payment_deadline, total_sales_amount
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
		ON CONFLICT (draw_no) DO UPDATE SET
			draw_date = EXCLUDED.draw_date,
			winning_numbers = EXCLUDED.winning_numbers,
			bonus_number = EXCLUDED.bonus_number,
			rank_details = EXCLUDED.rank_details,
			note = EXCLUDED.note,
			payment_deadline = EXCLUDED.payment_deadline,
			total_sales_amount = EXCLUDED.total_sales_amount,
			updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query,
		record.DrawNo, record.DrawDate, string(winningNumbers), record.BonusNumber,
		string(rankDetails), record.Note, record.MiscInfo.PaymentDeadline, record.MiscInfo.TotalSalesAmount,
	)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_UPSERT_FAILED",
			fmt.Sprintf("failed to upsert draw %d", record.DrawNo), "DrawRepository", "UpsertDraw", true, err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "DrawRepository",
		"method":    "UpsertDraw",
		"draw_no":   record.DrawNo,
	}).Debug("Draw record upserted")

	return nil
}

// SaveDraw lets the repository act as an ingestion sink
func (r *DrawRepository) SaveDraw(ctx context.Context, record models.DrawRecord) (string, error) {
	if err := r.UpsertDraw(ctx, record); err != nil {
		return "", err
	}
	return fmt.Sprintf("lotto_draws:draw_no=%d", record.DrawNo), nil
}

// GetDraw loads one stored draw
func (r *DrawRepository) GetDraw(ctx context.Context, drawNo int) (*models.DrawRecord, error) {
	query := `
		SELECT draw_no, draw_date, winning_numbers, bonus_number,
			rank_details, note, payment_deadline, total_sales_amount
		FROM lotto_draws
		WHERE draw_no = $1`

	var (
		record         models.DrawRecord
		drawDate       sql.NullString
		winningNumbers []byte
		rankDetails    []byte
	)

	err := r.db.QueryRowContext(ctx, query, drawNo).Scan(
		&record.DrawNo, &drawDate, &winningNumbers, &record.BonusNumber,
		&rankDetails, &record.Note, &record.MiscInfo.PaymentDeadline, &record.MiscInfo.TotalSalesAmount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrDrawNotFound
	}
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_QUERY_FAILED",
			fmt.Sprintf("failed to query draw %d", drawNo), "DrawRepository", "GetDraw", true, err)
	}

	if drawDate.Valid {
		record.DrawDate = &drawDate.String
	}
	if err := json.Unmarshal(winningNumbers, &record.WinningNumbers); err != nil {
		return nil, fmt.Errorf("failed to decode winning numbers of draw %d: %w", drawNo, err)
	}
	if err := json.Unmarshal(rankDetails, &record.RankDetails); err != nil {
		return nil, fmt.Errorf("failed to decode rank details of draw %d: %w", drawNo, err)
	}

	return &record, nil
}

// ListDrawNumbers returns every stored draw number in ascending order
func (r *DrawRepository) ListDrawNumbers(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT draw_no FROM lotto_draws ORDER BY draw_no`)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_LIST_FAILED",
			"failed to list draws", "DrawRepository", "ListDrawNumbers", true, err)
	}
	defer rows.Close()

	drawNumbers := []int{}
	for rows.Next() {
		var drawNo int
		if err := rows.Scan(&drawNo); err != nil {
			return nil, fmt.Errorf("failed to scan draw number: %w", err)
		}
		drawNumbers = append(drawNumbers, drawNo)
	}
	return drawNumbers, rows.Err()
}

// HealthCheck pings the underlying pool
func (r *DrawRepository) HealthCheck(ctx context.Context) error {
	return HealthCheck(ctx, r.db)
}
