// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteDashboard writes the complete dashboard using the configured output format.
func (ow *OutWriter) WriteDashboard(dashboard schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, dashboard)
		}, "Wrote JSON dashboard")
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, dashboardSheets(dashboard))
	case schema.CSVOut:
		return fmt.Errorf("csv output is not available for the full dashboard")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardText(w, dashboard, cfg, duration)
		}, "Wrote dashboard")
	}
}

// WriteTrends writes the KPI cards and trend insights using the configured output format.
func (ow *OutWriter) WriteTrends(section schema.TrendsSection, cfg *contract.Config, duration time.Duration) error {
	return writeSection(cfg, section, trendsSheet(section), "trends", func(w io.Writer) error {
		if err := writeTrendsText(w, section, cfg); err != nil {
			return err
		}
		return writeElapsed(w, "Trends", cfg, duration)
	})
}

// WriteEfficiency writes the efficiency summary, cards and table using the configured output format.
func (ow *OutWriter) WriteEfficiency(section schema.EfficiencySection, cfg *contract.Config, duration time.Duration) error {
	return writeSection(cfg, section, efficiencySheet(section), "efficiency", func(w io.Writer) error {
		if err := writeEfficiencyText(w, section, cfg); err != nil {
			return err
		}
		return writeElapsed(w, "Efficiency", cfg, duration)
	})
}

// WriteAnomalies writes the annotated series and ranked anomalies using the configured output format.
func (ow *OutWriter) WriteAnomalies(section schema.AnomalySection, cfg *contract.Config, duration time.Duration) error {
	return writeSection(cfg, section, anomaliesSheet(section), "anomalies", func(w io.Writer) error {
		if err := writeAnomaliesText(w, section, cfg); err != nil {
			return err
		}
		return writeElapsed(w, "Anomalies", cfg, duration)
	})
}

// writeSection dispatches a single section to the configured output format.
func writeSection(cfg *contract.Config, model any, sh sheet, name string, text func(io.Writer) error) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON "+name)
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSV(w, sh)
		}, "Wrote CSV "+name)
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, []sheet{sh})
	default:
		return writeWithFile(cfg.OutputFile, text, "Wrote "+name)
	}
}

// writeElapsed prints the closing timing line of a text render.
func writeElapsed(w io.Writer, what string, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "%s loaded in %v. Cache backend: %s\n", what, duration.Round(time.Millisecond), cfg.CacheBackend)
	return err
}
