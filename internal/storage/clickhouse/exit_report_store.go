package clickhouse

import (
	"context"
	"fmt"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// ExitReportStore implements storage.ExitReportStore using ClickHouse.
type ExitReportStore struct {
	conn *Conn
}

// NewExitReportStore creates a new ExitReportStore.
func NewExitReportStore(conn *Conn) *ExitReportStore {
	return &ExitReportStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ExitReportStore = (*ExitReportStore)(nil)

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
// MergeTree does not enforce uniqueness, so the check is explicit.
func (s *ExitReportStore) Insert(ctx context.Context, r *domain.ExitReport) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, r.ReportID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO exit_reports (
			report_id, position_id, symbol, mint,
			bought_at, buy_price, sell_price, sold_at, reason,
			best_sell_at, best_sell_price, best_return_percent,
			warning, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		r.ReportID, r.PositionID, r.Symbol, r.Mint,
		r.BoughtAt, r.BuyPrice, r.SellPrice, r.SoldAt, r.Reason,
		r.BestSellAt, r.BestSellPrice, r.BestReturnPercent,
		r.Warning, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all reports for a mint, ordered by sold_at ASC.
func (s *ExitReportStore) GetByMint(ctx context.Context, mint string) ([]*domain.ExitReport, error) {
	query := `
		SELECT
			report_id, position_id, symbol, mint,
			bought_at, buy_price, sell_price, sold_at, reason,
			best_sell_at, best_sell_price, best_return_percent,
			warning, created_at
		FROM exit_reports
		WHERE mint = ?
		ORDER BY sold_at ASC, report_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query exit reports by mint: %w", err)
	}
	defer rows.Close()

	return scanExitReports(rows)
}

// exists checks if a report with the given ID exists.
func (s *ExitReportStore) exists(ctx context.Context, reportID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM exit_reports WHERE report_id = ?`, reportID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanExitReports scans multiple rows into a slice.
func scanExitReports(rows chRows) ([]*domain.ExitReport, error) {
	var reports []*domain.ExitReport

	for rows.Next() {
		var r domain.ExitReport

		err := rows.Scan(
			&r.ReportID, &r.PositionID, &r.Symbol, &r.Mint,
			&r.BoughtAt, &r.BuyPrice, &r.SellPrice, &r.SoldAt, &r.Reason,
			&r.BestSellAt, &r.BestSellPrice, &r.BestReturnPercent,
			&r.Warning, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exit report row: %w", err)
		}

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exit report rows: %w", err)
	}

	return reports, nil
}
