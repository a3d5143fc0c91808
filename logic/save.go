package logic

import (
	"FormRecognitionConsole/models"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ReportSink receives the rendered report of one image.
type ReportSink interface {
	Save(ctx context.Context, ref models.ImageRef, report string) error
}

// FileSink writes the report to the ref's output path, replacing any previous file.
type FileSink struct{}

func (FileSink) Save(_ context.Context, ref models.ImageRef, report string) error {
	if ref.OutputPath == "" {
		return fmt.Errorf("no output path for %s", ref.Name)
	}

	if err := os.MkdirAll(filepath.Dir(ref.OutputPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(ref.OutputPath, []byte(report), 0644)
}

type ConsoleSink struct {
	Out io.Writer
}

func (c ConsoleSink) Save(_ context.Context, ref models.ImageRef, report string) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprint(out, report)
	return err
}

// MultiSink saves to every sink in order and stops at the first failure.
type MultiSink []ReportSink

func (m MultiSink) Save(ctx context.Context, ref models.ImageRef, report string) error {
	for _, sink := range m {
		if err := sink.Save(ctx, ref, report); err != nil {
			return err
		}
	}
	return nil
}

// SinkForMode maps OUTPUT_MODE to the file and console sinks.
func SinkForMode(mode string) (ReportSink, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "file":
		return FileSink{}, nil
	case "console":
		return ConsoleSink{}, nil
	case "both":
		return MultiSink{ConsoleSink{}, FileSink{}}, nil
	}
	return nil, fmt.Errorf("unknown output mode %q", mode)
}

// PostgresSink archives every report in recognition_report, tagged with the batch run id.
type PostgresSink struct {
	db    *sql.DB
	runId string
}

func NewPostgresSink(db *sql.DB, runId string) (*PostgresSink, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS recognition_report (
		id SERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		source_name TEXT NOT NULL,
		output_path TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		report TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		log.Println("Unable to create recognition_report table")
		return nil, err
	}

	return &PostgresSink{db: db, runId: runId}, nil
}

func (p *PostgresSink) Save(ctx context.Context, ref models.ImageRef, report string) error {
	_, err := p.db.ExecContext(ctx, "INSERT INTO recognition_report (run_id, source_name, output_path, pages, report) VALUES ($1, $2, $3, $4, $5)", p.runId, ref.Name, ref.OutputPath, ref.Pages, report)
	if err != nil {
		log.Println("Unable to save report")
		return err
	}
	return nil
}
