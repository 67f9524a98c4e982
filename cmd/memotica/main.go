package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/memotica/memotica/internal/config"
	"github.com/memotica/memotica/internal/db"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/repository/sqlite"
	"github.com/memotica/memotica/internal/services"
	"github.com/memotica/memotica/internal/transfer"
)

const usage = `usage: memotica [command]

commands:
  serve                        run the HTTP API (default)
  import flashcards FILE       import flashcards from a CSV or XLSX file
  import all FILE              restore decks, flashcards and reviews from a backup ZIP
  export flashcards [-f FILE]  export flashcards to CSV or XLSX (default flashcards.csv)
  export all [--path DIR]      write a backup ZIP to DIR (default .)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "memotica: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg        config.Config
	db         *db.DB
	decks      services.DeckService
	flashcards services.FlashcardService
	reviews    services.ReviewService
	transfer   *transfer.Service
	out        io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closeLog, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.Default()
	log.Debug("environment=%s", cfg.Environment)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		_ = database.Close()
	}()

	store := sqlite.NewStore(database.DB)
	a := &app{
		cfg:        cfg,
		db:         database,
		decks:      services.NewDeckService(store),
		flashcards: services.NewFlashcardService(store),
		reviews:    services.NewReviewService(store),
		out:        out,
	}
	a.transfer = transfer.NewService(store, a.decks, a.flashcards)

	return a.dispatch(ctx, args)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.serve(ctx, nil)
	}

	switch args[0] {
	case "serve", "run":
		return a.serve(ctx, args[1:])
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("import needs a target: flashcards or all\n\n%s", usage)
		}
		switch args[1] {
		case "flashcards":
			return a.importFlashcards(ctx, args[2:])
		case "all":
			return a.importAll(ctx, args[2:])
		}
		return fmt.Errorf("unknown import target %q", args[1])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("export needs a target: flashcards or all\n\n%s", usage)
		}
		switch args[1] {
		case "flashcards":
			return a.exportFlashcards(ctx, args[2:])
		case "all":
			return a.exportAll(ctx, args[2:])
		}
		return fmt.Errorf("unknown export target %q", args[1])
	case "help", "-h", "--help":
		_, err := fmt.Fprint(a.out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

// setupLogger installs the default logger. Output goes to stderr, or to the
// configured log file, so command output on stdout stays clean.
func setupLogger(cfg config.Config) (func(), error) {
	opts := []logger.Option{logger.WithLevel(logger.ParseLevel(cfg.LogLevel))}
	closeFn := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		opts = append(opts, logger.WithOutput(f), logger.WithColors(false))
		closeFn = func() { _ = f.Close() }
	} else {
		opts = append(opts, logger.WithOutput(os.Stderr), logger.WithColors(cfg.IsDevelopment()))
	}

	logger.SetDefault(logger.New(opts...))
	return closeFn, nil
}
