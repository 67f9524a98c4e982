package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/memotica/memotica/internal/api"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/transfer"
	"github.com/spf13/pflag"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Addr, "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.Default()
	srv := &api.Server{
		DB:               a.db,
		DeckService:      a.decks,
		FlashcardService: a.flashcards,
		ReviewService:    a.reviews,
		CORSOrigins:      a.cfg.CORSOrigins,
	}

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
		return err
	}
	log.Info("HTTP server stopped")
	return nil
}

func (a *app) importFlashcards(ctx context.Context, args []string) error {
	fs := newFlagSet("import flashcards")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memotica import flashcards FILE")
	}
	path := fs.Arg(0)

	format, err := transfer.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.transfer.ImportFlashcards(ctx, f, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Processed %d rows: %d flashcards created, %d decks created, %d skipped.\n",
		result.TotalProcessed, result.FlashcardsCreated, result.DecksCreated, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Fprintf(a.out, "  %s\n", msg)
	}
	return nil
}

func (a *app) importAll(ctx context.Context, args []string) error {
	fs := newFlagSet("import all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memotica import all FILE")
	}

	counts, err := a.transfer.ImportAll(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %d decks, %d flashcards and %d reviews.\n",
		counts.Decks, counts.Flashcards, counts.Reviews)
	return nil
}

func (a *app) exportFlashcards(ctx context.Context, args []string) error {
	fs := newFlagSet("export flashcards")
	file := fs.StringP("file", "f", "flashcards.csv", "file to export flashcards to (.csv or .xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := transfer.FormatFromPath(*file)
	if err != nil {
		return err
	}
	f, err := os.Create(*file)
	if err != nil {
		return err
	}

	n, err := a.transfer.ExportFlashcards(ctx, f, format)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(*file)
		return err
	}
	fmt.Fprintf(a.out, "%d flashcards exported successfully to %s\n", n, *file)
	return nil
}

func (a *app) exportAll(ctx context.Context, args []string) error {
	fs := newFlagSet("export all")
	dir := fs.String("path", ".", "directory to write the backup ZIP to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	info, err := os.Stat(*dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", *dir)
	}

	path := filepath.Join(*dir, transfer.BackupName(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	counts, err := a.transfer.ExportAll(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	fmt.Fprintf(a.out, "Data exported successfully to '%s' (%d decks, %d flashcards, %d reviews).\n",
		path, counts.Decks, counts.Flashcards, counts.Reviews)
	return nil
}
