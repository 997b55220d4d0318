package pipeline

import (
	"github.com/nao1215/jsonsweep/internal/model"
	"github.com/nao1215/jsonsweep/internal/transform"
)

// Observer receives progress notifications from the steps and the Runner.
// The CLI implements it to print one line per notification.
type Observer interface {
	// SitesFiltered is called after the Site Filter persisted a file.
	SitesFiltered(fc *FileContext, removed int)

	// URLEvent is called for every URL Rewriter event, as it happens.
	URLEvent(fc *FileContext, e transform.Event)

	// URLsRewritten is called after the URL Rewriter persisted a file.
	URLsRewritten(fc *FileContext)

	// FileFailed is called once per failure of a file: for a read or parse
	// failure, or for each failed step.
	FileFailed(fc *FileContext, err error)

	// RunFinished is called once after every discovered file was processed.
	RunFinished(report *model.RunReport)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

var _ Observer = NopObserver{}

// SitesFiltered implements Observer.
func (NopObserver) SitesFiltered(*FileContext, int) {}

// URLEvent implements Observer.
func (NopObserver) URLEvent(*FileContext, transform.Event) {}

// URLsRewritten implements Observer.
func (NopObserver) URLsRewritten(*FileContext) {}

// FileFailed implements Observer.
func (NopObserver) FileFailed(*FileContext, error) {}

// RunFinished implements Observer.
func (NopObserver) RunFinished(*model.RunReport) {}
