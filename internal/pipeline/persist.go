package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/nao1215/jsonsweep/internal/document"
)

// filePerm is the permission of newly created files. Existing files are
// truncated and keep their permission.
const filePerm = 0644

// Journal records persisted changes, for example in the history database.
type Journal interface {
	// RecordChange records that stage replaced before with after at path.
	RecordChange(ctx context.Context, path, stage string, before, after []byte) error
}

// Persister writes a transformed document back.
type Persister interface {
	// Persist serializes fc.Document and stores it at fc.Path. On success it
	// updates fc.Content and records stage in fc.Report.
	Persist(ctx context.Context, fc *FileContext, stage string) error
}

// PersisterOption configures a FilePersister or DryRunPersister.
type PersisterOption func(*persistSettings)

// WithJournal records every persisted change in j.
// Journal failures are logged and do not fail the file.
func WithJournal(j Journal) PersisterOption {
	return func(s *persistSettings) {
		s.journal = j
	}
}

// WithPersistLogger sets the logger used to report journal failures.
func WithPersistLogger(logger *slog.Logger) PersisterOption {
	return func(s *persistSettings) {
		s.logger = logger
	}
}

type persistSettings struct {
	journal Journal
	logger  *slog.Logger
}

func newPersistSettings(opts []PersisterOption) persistSettings {
	s := persistSettings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// commit records a successful write of data.
func (s *persistSettings) commit(ctx context.Context, fc *FileContext, stage string, data []byte) {
	before := fc.Content
	fc.Content = data
	fc.Report.MarkPersisted(stage)

	if s.journal == nil {
		return
	}
	if err := s.journal.RecordChange(ctx, fc.Display, stage, before, data); err != nil {
		s.logger.Warn("failed to record change in history",
			"path", fc.Display,
			"stage", stage,
			"error", err,
		)
	}
}

// FilePersister overwrites files in place on a billy filesystem.
// There is no backup and no temporary file.
type FilePersister struct {
	fs billy.Filesystem
	persistSettings
}

// NewFilePersister creates a persister writing to fs.
func NewFilePersister(fs billy.Filesystem, opts ...PersisterOption) *FilePersister {
	return &FilePersister{
		fs:              fs,
		persistSettings: newPersistSettings(opts),
	}
}

// Persist implements Persister.
func (p *FilePersister) Persist(ctx context.Context, fc *FileContext, stage string) error {
	data, err := fc.Document.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := util.WriteFile(p.fs, fc.Path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	p.commit(ctx, fc, stage, data)
	return nil
}

// DryRunPersister serializes documents but never writes them.
// Reports and the journal still see the changes that would have been made.
type DryRunPersister struct {
	persistSettings
}

// NewDryRunPersister creates a persister that writes nothing.
func NewDryRunPersister(opts ...PersisterOption) *DryRunPersister {
	return &DryRunPersister{persistSettings: newPersistSettings(opts)}
}

// Persist implements Persister.
func (p *DryRunPersister) Persist(ctx context.Context, fc *FileContext, stage string) error {
	data, err := fc.Document.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	p.commit(ctx, fc, stage, data)
	return nil
}

// restore re-parses fc.Content so that fc.Document matches what is on disk
// again after a failed write.
func (fc *FileContext) restore() {
	doc, err := document.Parse(fc.Content)
	if err == nil {
		fc.Document = doc
	}
}
