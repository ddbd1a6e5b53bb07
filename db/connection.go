package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sebuszqo/FinanceLedger/internal/config"
	"github.com/sebuszqo/FinanceLedger/internal/log"
)

// DBService owns the connection pool shared by every repository.
type DBService struct {
	DB     *sql.DB
	logger *log.Logger
}

// NewDBService opens a pgx-backed pool with the configured limits and checks it with a ping.
func NewDBService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*DBService, error) {
	if cfg.DBConnectionString == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING in environment variables")
	}

	db, err := sql.Open("pgx", cfg.DBConnectionString)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

// Health pings the database and reports pool statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.DB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	return stats
}

func (s *DBService) Close() error {
	s.logger.Info("closing database connection")
	return s.DB.Close()
}
