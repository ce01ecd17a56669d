package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/settings-generator/backend/internal/models"
	"github.com/settings-generator/backend/internal/parser"
	"github.com/settings-generator/backend/internal/upload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	inferCovariates string
	inferData       string
	inferFormat     string
	inferCopy       bool
	inferSniffer    string
)

// errNoInput means neither --covariates nor --data was given.
var errNoInput = errors.New("at least one of --covariates or --data is required")

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Infer the settings document from local CSV files",
	Long: `Runs the same intake checks as the web form on local files (the media type
is derived from the extension and the filename must be covariates.csv or
data.csv), infers column types from the first data row and prints the
settings document.

Example:
  settingsgen infer --covariates ./covariates.csv --data ./data.csv --copy`,
	RunE: runInfer,
}

func init() {
	inferCmd.Flags().StringVar(&inferCovariates, "covariates", "", "path to covariates.csv")
	inferCmd.Flags().StringVar(&inferData, "data", "", "path to data.csv")
	inferCmd.Flags().StringVar(&inferFormat, "format", "json", "output format (json, yaml)")
	inferCmd.Flags().BoolVar(&inferCopy, "copy", false, "copy the JSON text to the clipboard")
	inferCmd.Flags().StringVar(&inferSniffer, "sniffer", "guess", "delimiter sniffer (guess, duckdb)")
}

func runInfer(cmd *cobra.Command, args []string) error {
	schema, closeSniffer, err := newSchemaParser(strings.ToLower(inferSniffer), os.TempDir())
	if err != nil {
		return err
	}
	defer closeSniffer()

	paths := map[models.Slot]string{
		models.SlotCovariates: inferCovariates,
		models.SlotData:       inferData,
	}

	settings, err := inferSettings(cmd.Context(), schema, paths)
	if err != nil {
		return err
	}

	if err := writeSettings(cmd.OutOrStdout(), settings, inferFormat); err != nil {
		return err
	}

	if inferCopy {
		text, err := settings.IndentedJSON()
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(string(text)); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied")
	}
	return nil
}

// inferSettings validates and parses every slot with a path, concurrently,
// and assembles the configuration. Slots without a path keep an empty section.
func inferSettings(ctx context.Context, schema *parser.SchemaParser, paths map[models.Slot]string) (models.Configuration, error) {
	slots := make([]models.Slot, 0, len(paths))
	for _, slot := range models.Slots() {
		if paths[slot] != "" {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return models.Configuration{}, errNoInput
	}

	results := make([]models.ColumnTypeMap, len(slots))
	eg, egctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		i, slot := i, slot
		eg.Go(func() error {
			m, err := inferFile(egctx, schema, slot, paths[slot])
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.Configuration{}, err
	}

	settings := models.NewConfiguration()
	for i, slot := range slots {
		next, err := settings.WithSection(slot.Section(), results[i])
		if err != nil {
			return models.Configuration{}, err
		}
		settings = next
	}
	return settings, nil
}

func inferFile(ctx context.Context, schema *parser.SchemaParser, slot models.Slot, path string) (models.ColumnTypeMap, error) {
	sel := upload.Selection{
		Name:      filepath.Base(path),
		MediaType: upload.MediaTypeForPath(path),
	}
	if info, err := os.Stat(path); err == nil {
		sel.Size = info.Size()
	}

	if _, err := upload.ValidateSelection(sel, slot.ExpectedFileName()); err != nil {
		return models.ColumnTypeMap{}, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("inferring schema",
		zap.String("slot", string(slot)),
		zap.String("path", path),
		zap.String("sniffer", schema.SnifferName()))

	m, err := schema.InferSchema(ctx, parser.FileSource(path))
	if err != nil {
		return models.ColumnTypeMap{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeSettings(w io.Writer, settings models.Configuration, format string) error {
	switch strings.ToLower(format) {
	case "json":
		text, err := settings.IndentedJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(text))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(settings)
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}
