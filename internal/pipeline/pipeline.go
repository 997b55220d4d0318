package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/jsonsweep/internal/document"
	"github.com/nao1215/jsonsweep/internal/model"
)

// FileContext carries one file through the pipeline.
type FileContext struct {
	// Path is the file path relative to the filesystem root.
	Path string

	// Display is the absolute path used in log lines.
	Display string

	// Base is the file's base name.
	Base string

	// Content holds the bytes currently on disk: the bytes read, or the
	// bytes of the last stage write.
	Content []byte

	// Document is the parsed, possibly transformed document.
	Document *document.Document

	// Report accumulates the file's results.
	Report *model.FileReport
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence on the same FileContext.
type Step interface {
	// Do executes the pipeline step.
	// A returned error marks the file as failed; the step must leave the
	// document unchanged in that case.
	Do(ctx context.Context, fc *FileContext) error

	// Name returns the step's name for logging and reports.
	Name() string
}

// StepError is the error of a single failed step.
type StepError struct {
	Step string
	Err  error
}

// Error returns the underlying error message.
func (e *StepError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// StepErrors returns the step errors contained in err, in step order.
func StepErrors(err error) []*StepError {
	if err == nil {
		return nil
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	result := make([]*StepError, 0, len(errs))
	for _, e := range errs {
		var se *StepError
		if errors.As(e, &se) {
			result = append(result, se)
		}
	}
	return result
}

// Pipeline orchestrates the execution of multiple steps.
// It holds no per-file state and can be reused for every file of a run.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The rules are independent of each other, so a file whose
// site list cannot be filtered may still have its urls rewritten.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence on fc.
// The context is checked before each step.
//
// Each failing step is recorded in fc.Report and returned as a *StepError.
// Without continueOnError the first failure is returned immediately;
// otherwise all failures are returned joined (see StepErrors).
func (p *Pipeline) Execute(ctx context.Context, fc *FileContext) error {
	var errs []error

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"path", fc.Display,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"path", fc.Display,
		)

		if err := step.Do(ctx, fc); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"path", fc.Display,
				"error", err,
			)

			fc.Report.MarkFailed(step.Name(), err)
			stepErr := &StepError{Step: step.Name(), Err: err}

			if !p.continueOnError {
				return stepErr
			}
			errs = append(errs, stepErr)
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"path", fc.Display,
		)
	}

	return errors.Join(errs...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
