package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/mobileqa/internal/model"
)

// ResultsFileName is the default name of the JSON results document.
const ResultsFileName = "mobile-qa-results.json"

// Store persists finished runs.
type Store interface {
	SaveRun(ctx context.Context, report *model.RunReport) error
}

// Sink writes the outputs of a finished run. The outputs are independent,
// so they are written concurrently.
type Sink struct {
	jsonPath     string
	markdownPath string
	store        Store
	logger       *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithJSONFile writes the results document to path.
func WithJSONFile(path string) SinkOption {
	return func(s *Sink) {
		s.jsonPath = path
	}
}

// WithMarkdownFile writes the Markdown report to path.
func WithMarkdownFile(path string) SinkOption {
	return func(s *Sink) {
		s.markdownPath = path
	}
}

// WithStore saves the run into store.
func WithStore(store Store) SinkOption {
	return func(s *Sink) {
		s.store = store
	}
}

// WithSinkLogger sets the logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = logger
	}
}

// NewSink creates a Sink. Outputs that are not configured are skipped.
func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Write emits every configured output and returns the first error.
func (s *Sink) Write(ctx context.Context, report *model.RunReport) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.jsonPath != "" {
		g.Go(func() error {
			return writeFile(s.jsonPath, report, func(out io.Writer) Writer {
				return NewJSONWriter(out, WithPrettyPrint())
			})
		})
	}
	if s.markdownPath != "" {
		g.Go(func() error {
			return writeFile(s.markdownPath, report, func(out io.Writer) Writer {
				return NewMarkdownWriter(out)
			})
		})
	}
	if s.store != nil {
		g.Go(func() error {
			if err := s.store.SaveRun(ctx, report); err != nil {
				return fmt.Errorf("failed to save run %s: %w", report.RunID, err)
			}
			s.logger.Debug("run saved", "run_id", report.RunID)
			return nil
		})
	}
	return g.Wait()
}

// writeFile creates path and renders report into it with the writer
// returned by newWriter.
func writeFile(path string, report *model.RunReport, newWriter func(io.Writer) Writer) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path) //nolint:gosec // path comes from the user's own flags
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if _, err := newWriter(f).Write(report); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
