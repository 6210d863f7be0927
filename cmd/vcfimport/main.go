// Command vcfimport loads the VCF reference table from an XLSX or CSV file
// with density, temperature and vcf columns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/storage"
	"oil-tonnage/pkg/logger"
)

type importOptions struct {
	file    string
	sheet   string
	replace bool
}

func main() {
	var opts importOptions
	flag.StringVar(&opts.file, "file", "", "path to an .xlsx or .csv file")
	flag.StringVar(&opts.sheet, "sheet", "", "worksheet to read, defaults to the first one")
	flag.BoolVar(&opts.replace, "replace", false, "empty the reference table before importing")
	flag.Parse()

	if opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg.Database, zapLogger, opts); err != nil {
		zapLogger.Fatal("Failed to import VCF reference table", zap.String("file", opts.file), zap.Error(err))
	}
	_ = zapLogger.Sync()
}

func run(ctx context.Context, dbCfg config.DatabaseConfig, zapLogger *zap.Logger, opts importOptions) error {
	entries, err := readEntries(opts.file, opts.sheet)
	if err != nil {
		return fmt.Errorf("read reference file: %w", err)
	}

	store, err := storage.Open(ctx, dbCfg, zapLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	if err := store.ImportVCFEntries(ctx, entries, opts.replace); err != nil {
		return err
	}

	count, err := store.CountVCFEntries(ctx)
	if err != nil {
		return err
	}

	zapLogger.Info("VCF reference table imported",
		zap.Int("read", len(entries)),
		zap.Int("total", count),
		zap.Bool("replace", opts.replace))
	return nil
}

func readEntries(path, sheet string) ([]domain.VCFEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return storage.ReadVCFWorkbook(f, sheet)
	case ".csv":
		return storage.ReadVCFCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}
