package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appevent "github.com/GremaudMatthieu/Baillr-sub000/internal/application/event"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/config"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/event"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/logger"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/persistence"
)

func main() {
	var (
		logLevel string
		pageSize int
	)
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.IntVar(&pageSize, "page-size", 20, "Entries per page for the dead command")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	}, "baillr-outbox")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, gormlogger.Warn)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	service := appevent.NewOutboxService(event.NewGormOutboxRepository(db.DB), log)

	result, err := execute(context.Background(), service, args[0], args[1:], pageSize)
	closeErr := db.Close()
	if err != nil {
		log.Fatal("Outbox command failed", zap.String("command", args[0]), zap.Error(err))
	}
	if closeErr != nil {
		log.Warn("Error closing database", zap.Error(closeErr))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatal("Failed to write result", zap.Error(err))
	}
}

func execute(ctx context.Context, service *appevent.OutboxService, command string, args []string, pageSize int) (any, error) {
	switch command {
	case "stats":
		return service.GetStats(ctx)

	case "dead":
		page := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid page %q", args[0])
			}
			page = n
		}
		return service.GetDeadLetterEntries(ctx, appevent.OutboxFilter{Page: page, PageSize: pageSize})

	case "show", "retry":
		if len(args) < 1 {
			return nil, fmt.Errorf("entry id required: outbox %s <id>", command)
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q: %w", args[0], err)
		}
		if command == "show" {
			return service.GetEntry(ctx, id)
		}
		return service.RetryDeadEntry(ctx, id)

	case "retry-all":
		count, err := service.RetryAllDeadEntries(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"reset": count}, nil

	default:
		printUsage()
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Println(`Baillr outbox administration tool

Usage:
  outbox [flags] <command> [arguments]

Commands:
  stats                 Count outbox entries per status
  dead [page]           List dead letter entries, most recently failed first
  show <id>             Show one outbox entry
  retry <id>            Put one dead letter entry back in the relay queue
  retry-all             Put every dead letter entry back in the relay queue

Flags:
  -page-size int        Entries per page for dead (default: 20, max: 100)
  -log-level string     Log level: debug, info, warn, error (default: warn)`)
}
