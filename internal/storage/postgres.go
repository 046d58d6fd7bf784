package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

var (
	barWriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bar_store_write_total",
			Help: "Total bar write operations by status",
		},
		[]string{"status"},
	)

	barWriteLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bar_store_write_latency_seconds",
			Help:    "Bar batch write latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	barReadLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bar_store_read_latency_seconds",
			Help:    "Bar range read latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)
)

const barsSchema = `
CREATE TABLE IF NOT EXISTS bars_daily (
	symbol    TEXT             NOT NULL,
	ts        TIMESTAMPTZ      NOT NULL,
	open      DOUBLE PRECISION NOT NULL,
	high      DOUBLE PRECISION NOT NULL,
	low       DOUBLE PRECISION NOT NULL,
	close     DOUBLE PRECISION NOT NULL,
	volume    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, ts)
)`

// PostgresBarStore implements BarStore on Postgres (or TimescaleDB;
// the schema is hypertable-compatible)
type PostgresBarStore struct {
	db *sql.DB
}

// NewPostgresBarStore opens the connection pool, verifies connectivity,
// and ensures the bars table exists
func NewPostgresBarStore(cfg config.DatabaseConfig) (*PostgresBarStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, barsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure bars schema: %w", err)
	}

	logger.Info("Connected to Postgres",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	return &PostgresBarStore{db: db}, nil
}

// SaveBars upserts a batch of bars in one transaction
func (s *PostgresBarStore) SaveBars(ctx context.Context, symbol string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		barWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars_daily (symbol, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, ts) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume`)
	if err != nil {
		barWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, bar.Timestamp,
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			barWriteTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("upsert bar %s@%s: %w", symbol, bar.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		barWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("commit: %w", err)
	}

	barWriteTotal.WithLabelValues("success").Inc()
	barWriteLatency.Observe(time.Since(start).Seconds())
	return nil
}

// LoadBars returns the bars for a symbol within [start, end]
func (s *PostgresBarStore) LoadBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	readStart := time.Now()
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume
		FROM bars_daily
		WHERE symbol = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts`, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var bar models.Bar
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High,
			&bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}

	barReadLatency.Observe(time.Since(readStart).Seconds())
	return bars, nil
}

// Close closes the connection pool
func (s *PostgresBarStore) Close() error {
	return s.db.Close()
}
