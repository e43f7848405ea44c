package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/config"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/logger"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/migration"
)

// defaultSQLRoot is where the embedded migrations live in the source tree
const defaultSQLRoot = "internal/infrastructure/migration/sql"

func main() {
	var (
		sqlRoot  string
		logLevel string
	)
	flag.StringVar(&sqlRoot, "path", defaultSQLRoot, "Root of the per-dialect migration directories (create and list only)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	}, "baillr-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// create and list work on the source tree and need no database
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		files, err := migration.CreateMigration(sqlRoot, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		for _, f := range files {
			log.Info("Migration created",
				zap.String("dialect", f.Dialect),
				zap.Uint("version", f.Version),
				zap.String("up_file", f.UpPath),
				zap.String("down_file", f.DownPath),
			)
		}
		return

	case "list":
		for _, dialect := range migration.Dialects {
			migrations, err := migration.ListMigrations(filepath.Join(sqlRoot, dialect))
			if err != nil {
				log.Fatal("Failed to list migrations", zap.Error(err))
			}
			fmt.Printf("%s (%d)\n", dialect, len(migrations))
			for _, m := range migrations {
				fmt.Printf("  %06d %s\n", m.Version, m.Name)
			}
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := migration.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, cfg.Database.Driver, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	if err := execute(m, command, args[1:], log); err != nil {
		_ = m.Close()
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
	if err := m.Close(); err != nil {
		log.Warn("Error closing migrator", zap.Error(err))
	}
}

func execute(m *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "steps":
		if len(args) < 1 {
			return fmt.Errorf("step count required: migrate steps <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("version required: migrate force <version>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version number %q", args[0])
		}
		return m.Force(version)

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Println(`Baillr ownership database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version after fixing a dirty state
  create <name>         Create an empty up/down pair for every dialect
  list                  List migrations per dialect

Flags:
  -path string          Root of the per-dialect SQL directories (default: internal/infrastructure/migration/sql)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  BAILLR_DATABASE_DRIVER, BAILLR_DATABASE_HOST, BAILLR_DATABASE_PORT, BAILLR_DATABASE_USER,
  BAILLR_DATABASE_PASSWORD, BAILLR_DATABASE_DBNAME, BAILLR_DATABASE_SSLMODE, BAILLR_DATABASE_SQLITE_PATH

Examples:
  migrate up
  migrate steps -1
  migrate create add_snapshots_table
  migrate version`)
}
