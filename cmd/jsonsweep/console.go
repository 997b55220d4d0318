package main

import (
	"fmt"
	"io"

	"github.com/nao1215/jsonsweep/internal/log"
	"github.com/nao1215/jsonsweep/internal/model"
	"github.com/nao1215/jsonsweep/internal/pipeline"
	"github.com/nao1215/jsonsweep/internal/transform"
)

// consoleObserver prints the progress lines of a run.
// Progress goes to out and per-file errors to errOut. Credentials embedded
// in urls are masked since the output usually ends up in public CI logs.
type consoleObserver struct {
	out    io.Writer
	errOut io.Writer

	// markerField names the site field in the site filter line.
	markerField string

	// label joins the excluded url names.
	label string
}

var _ pipeline.Observer = (*consoleObserver)(nil)

// newConsoleObserver creates a console observer for the given rules.
func newConsoleObserver(out, errOut io.Writer, sites transform.SiteRule, urls transform.URLRule) *consoleObserver {
	return &consoleObserver{
		out:         out,
		errOut:      errOut,
		markerField: sites.MarkerField,
		label:       urls.ExcludeLabel(),
	}
}

// SitesFiltered implements pipeline.Observer.
func (o *consoleObserver) SitesFiltered(fc *pipeline.FileContext, removed int) {
	fmt.Fprintf(o.out, "Processed %s: removed %d sites with %s field\n", fc.Display, removed, o.markerField)
}

// URLEvent implements pipeline.Observer.
func (o *consoleObserver) URLEvent(_ *pipeline.FileContext, e transform.Event) {
	switch e.Kind {
	case transform.EventURLRemoved:
		fmt.Fprintf(o.out, "Removed URL in %s with name containing '%s': %s\n", e.File, o.label, e.Name)
	case transform.EventURLsRemovedTotal:
		fmt.Fprintf(o.out, "Removed %d URLs containing '%s' from %s\n", e.Count, o.label, e.File)
	case transform.EventURLUpdated:
		fmt.Fprintf(o.out, "Updated URL in %s: %s -> %s\n", e.File, log.RedactURLs(e.Before), log.RedactURLs(e.After))
	}
}

// URLsRewritten implements pipeline.Observer.
func (o *consoleObserver) URLsRewritten(fc *pipeline.FileContext) {
	fmt.Fprintf(o.out,
		"Processed %s: removed entries with '%s' and updated repository paths while preserving proxy prefixes\n",
		fc.Display, o.label)
}

// FileFailed implements pipeline.Observer.
func (o *consoleObserver) FileFailed(fc *pipeline.FileContext, err error) {
	fmt.Fprintf(o.errOut, "Error processing %s: %s\n", fc.Display, log.RedactURLs(err.Error()))
}

// RunFinished implements pipeline.Observer.
func (o *consoleObserver) RunFinished(_ *model.RunReport) {
	fmt.Fprintln(o.out, "Finished processing all JSON files")
}
