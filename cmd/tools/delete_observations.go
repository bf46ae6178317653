package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/config"
	"github.com/yourorg/ma-backtest-service/internal/repository"
)

// Removes bad observations (spurious ticks, half-session closes) from the
// price cache by date. The next stale refresh re-fetches anything the
// provider still reports for those dates.
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	datesFlag := flag.String("dates", "", "comma-separated observation dates to delete (YYYY-MM-DD)")
	flag.Parse()

	if *datesFlag == "" {
		log.Fatal("no dates given, nothing to delete")
	}

	dates, err := parseDates(*datesFlag)
	if err != nil {
		log.Fatalf("Invalid dates: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	priceRepo := repository.NewPriceRepository(db, logger)

	deleted, err := priceRepo.DeleteObservations(context.Background(), dates)
	if err != nil {
		logger.Fatal("Failed to delete observations", zap.Error(err))
	}

	logger.Info("Deleted observations",
		zap.Int64("deleted", deleted),
		zap.Int("requested", len(dates)))
}

func parseDates(raw string) ([]time.Time, error) {
	parts := strings.Split(raw, ",")
	dates := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%q: expected YYYY-MM-DD", part)
		}
		dates = append(dates, parsed)
	}
	return dates, nil
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "console", // Use console encoding for human-readable output
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	return db, nil
}
