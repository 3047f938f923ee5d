package storage

import (
	"context"
	"fmt"
	"time"

	"volsim/internal/model"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	time        TIMESTAMPTZ NOT NULL,
	bid         NUMERIC NOT NULL,
	ask         NUMERIC NOT NULL,
	bidsiz      BIGINT NOT NULL,
	asksiz      BIGINT NOT NULL,
	mid         NUMERIC NOT NULL,
	log_return  DOUBLE PRECISION,
	PRIMARY KEY (time)
);

CREATE TABLE IF NOT EXISTS runs (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	total_pnl   DOUBLE PRECISION NOT NULL,
	sharpe      DOUBLE PRECISION NOT NULL,
	n_trades    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_states (
	run_id          BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	time            TIMESTAMPTZ NOT NULL,
	mid             NUMERIC NOT NULL,
	bid             NUMERIC NOT NULL,
	ask             NUMERIC NOT NULL,
	delta           NUMERIC NOT NULL,
	inventory       BIGINT NOT NULL,
	cash            NUMERIC NOT NULL,
	portfolio_value NUMERIC NOT NULL,
	trade_count     BIGINT NOT NULL,
	PRIMARY KEY (run_id, time)
);
`

// RunSummary is a persisted run without its state trajectory.
type RunSummary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	TotalPnL   float64   `json:"total_pnl"`
	Sharpe     float64   `json:"sharpe"`
	TradeCount int64     `json:"n_trades"`
}

// Store persists simulation runs and bar series in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// SaveRun stores the run header plus its full state trajectory in one
// transaction and returns the run id.
func (s *Store) SaveRun(ctx context.Context, report model.RunReport) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (name, total_pnl, sharpe, n_trades) VALUES ($1, $2, $3, $4) RETURNING id`,
		report.Name, report.Metrics.TotalPnL, report.Metrics.SharpeRatio, report.Metrics.TradeCount,
	).Scan(&runID)
	if err != nil {
		return 0, err
	}

	rows := make([][]interface{}, len(report.States))
	for i, st := range report.States {
		rows[i] = []interface{}{
			runID, st.Timestamp, st.Mid, st.Bid, st.Ask, st.Delta,
			st.Inventory, st.Cash, st.PortfolioValue, st.TradeCount,
		}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"run_states"},
		[]string{"run_id", "time", "mid", "bid", "ask", "delta", "inventory", "cash", "portfolio_value", "trade_count"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	s.logger.Info("saved run", zap.Int64("run_id", runID), zap.String("name", report.Name), zap.Int("states", len(report.States)))
	return runID, nil
}

func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, total_pnl, sharpe, n_trades FROM runs ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.TotalPnL, &r.Sharpe, &r.TradeCount); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveBars replaces any overlapping bar rows with the supplied series.
func (s *Store) SaveBars(ctx context.Context, bars []model.Bar) error {
	for _, b := range bars {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO bars (time, bid, ask, bidsiz, asksiz, mid, log_return)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (time) DO UPDATE SET
				bid = EXCLUDED.bid, ask = EXCLUDED.ask,
				bidsiz = EXCLUDED.bidsiz, asksiz = EXCLUDED.asksiz,
				mid = EXCLUDED.mid, log_return = EXCLUDED.log_return`,
			b.Timestamp, b.Bid, b.Ask, b.BidSize, b.AskSize, b.Mid, b.LogReturn)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadBars fetches a bar series back out, time-ascending.
func (s *Store) LoadBars(ctx context.Context, start, end time.Time) ([]model.Bar, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT time, bid, ask, bidsiz, asksiz, mid, log_return
		FROM bars
		WHERE time >= $1 AND time <= $2
		ORDER BY time ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.Timestamp, &b.Bid, &b.Ask, &b.BidSize, &b.AskSize, &b.Mid, &b.LogReturn); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
