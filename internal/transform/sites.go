package transform

import (
	"fmt"

	"github.com/nao1215/jsonsweep/internal/document"
)

// SitesKey is the top-level key of the site list.
const SitesKey = "sites"

// SiteRule configures the Site Filter.
type SiteRule struct {
	// MarkerField is the field whose truthy value disqualifies a record.
	MarkerField string
}

// FilterSites removes every entry of the document's sites list whose marker
// field is truthy and returns how many entries were removed.
//
// Entries without the marker, or with a falsy marker, are kept in their
// original order. Entries that are not objects have no fields and are kept.
// A null entry makes the whole call fail without touching the document.
func FilterSites(doc *document.Document, rule SiteRule) (int, error) {
	if doc.Root() == nil {
		return 0, ErrNullDocument
	}

	sites, ok := doc.List(SitesKey)
	if !ok {
		return 0, nil
	}

	kept := make([]any, 0, len(sites))
	for i, site := range sites {
		if site == nil {
			return 0, fmt.Errorf("sites[%d]: %w", i, ErrNullRecord)
		}
		marker, _ := document.Field(site, rule.MarkerField)
		if document.Truthy(marker) {
			continue
		}
		kept = append(kept, site)
	}

	removed := len(sites) - len(kept)
	if removed > 0 {
		doc.SetList(SitesKey, kept)
	}
	return removed, nil
}
