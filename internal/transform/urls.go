package transform

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/jsonsweep/internal/document"
)

const (
	// URLsKey is the top-level key of the url list.
	URLsKey = "urls"
	// NameField is the url record field matched against the exclude names.
	NameField = "name"
	// URLField is the url record field that is rewritten.
	URLField = "url"
)

// excludeLabelSeparator joins exclude names in log labels. With the default
// names it yields the label the published files have always been logged with.
const excludeLabelSeparator = "和"

// URLRule configures the URL Rewriter.
type URLRule struct {
	// FilePrefix selects the files the rule applies to by base name.
	FilePrefix string

	// ExcludeNames are the disqualifying name substrings.
	ExcludeNames []string

	// Host is the hosting service of the rewritten URLs.
	Host string

	// Branches are the branch names accepted after owner/repo.
	Branches []string

	// TargetRepo replaces the repository segment.
	TargetRepo string

	// Owner replaces the owner segment. It is required.
	Owner string

	// LenientNames lets records without a string name pass the name filter.
	// Without it the filter evaluates as (name contains first) OR (name
	// contains any other), with only the first test guarded by the name
	// being set, so an unnamed record fails the file.
	LenientNames bool
}

// Validate checks that the rule can build a rewriter.
func (r URLRule) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return ErrMissingOwner
	}
	if r.Host == "" {
		return ErrEmptyHost
	}
	if len(r.Branches) == 0 {
		return ErrNoBranches
	}
	return nil
}

// Applies reports whether the rule applies to a file with the given base name.
func (r URLRule) Applies(fileBase string) bool {
	return strings.HasPrefix(fileBase, r.FilePrefix)
}

// ExcludeLabel returns the exclude names joined for log messages.
func (r URLRule) ExcludeLabel() string {
	return strings.Join(r.ExcludeNames, excludeLabelSeparator)
}

// URLRewriter applies a URLRule to documents.
// It is safe to reuse across documents.
type URLRewriter struct {
	rule        URLRule
	exclude     []string
	pattern     *regexp.Regexp
	replacement string
}

// NewURLRewriter validates rule and compiles its URL pattern.
func NewURLRewriter(rule URLRule) (*URLRewriter, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	branches := make([]string, len(rule.Branches))
	for i, b := range rule.Branches {
		branches[i] = regexp.QuoteMeta(b)
	}
	expr := "https://" + regexp.QuoteMeta(rule.Host) + "/[^/]+/[^/]+/(" + strings.Join(branches, "|") + ")"
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile url pattern: %w", err)
	}

	exclude := make([]string, len(rule.ExcludeNames))
	for i, name := range rule.ExcludeNames {
		exclude[i] = norm.NFC.String(name)
	}

	return &URLRewriter{
		rule:        rule,
		exclude:     exclude,
		pattern:     pattern,
		replacement: "https://" + rule.Host + "/" + rule.Owner + "/" + rule.TargetRepo + "/",
	}, nil
}

// Rule returns the rule the rewriter was built from.
func (w *URLRewriter) Rule() URLRule {
	return w.rule
}

// RewriteURLs is a convenience wrapper building a URLRewriter for one call.
func RewriteURLs(doc *document.Document, fileBase string, rule URLRule, sink EventSink) (bool, error) {
	w, err := NewURLRewriter(rule)
	if err != nil {
		return false, err
	}
	return w.Rewrite(doc, fileBase, sink)
}

// Rewrite applies the rule to doc and reports whether it changed anything.
//
// Files whose base name lacks the prefix, and documents without a urls
// list, are left alone. The first pass removes records by name, the second
// rewrites the url of every surviving record. The document is only modified
// once both passes have succeeded.
func (w *URLRewriter) Rewrite(doc *document.Document, fileBase string, sink EventSink) (bool, error) {
	if !w.rule.Applies(fileBase) {
		return false, nil
	}
	if doc.Root() == nil {
		return false, ErrNullDocument
	}

	urls, ok := doc.List(URLsKey)
	if !ok {
		return false, nil
	}

	changed := false

	kept := make([]any, 0, len(urls))
	for i, record := range urls {
		if record == nil {
			return false, fmt.Errorf("urls[%d]: %w", i, ErrNullRecord)
		}
		drop, err := w.disqualified(record)
		if err != nil {
			return false, fmt.Errorf("urls[%d]: %w", i, err)
		}
		if drop {
			name, _ := document.Field(record, NameField)
			sink.emit(Event{Kind: EventURLRemoved, File: fileBase, Name: fmt.Sprint(name)})
			continue
		}
		kept = append(kept, record)
	}
	if removed := len(urls) - len(kept); removed > 0 {
		changed = true
		sink.emit(Event{Kind: EventURLsRemovedTotal, File: fileBase, Count: removed})
	}

	type pendingURL struct {
		record *document.Object
		url    string
	}
	var pending []pendingURL

	for i, record := range kept {
		value, _ := document.Field(record, URLField)
		if !document.Truthy(value) {
			continue
		}
		before, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("urls[%d]: %w", i, ErrURLNotString)
		}
		after := w.RewriteURL(before)
		if after == before {
			continue
		}
		changed = true
		sink.emit(Event{Kind: EventURLUpdated, File: fileBase, Before: before, After: after})
		// Field only succeeds on objects, so the assertion holds.
		pending = append(pending, pendingURL{record: record.(*document.Object), url: after})
	}

	if len(kept) != len(urls) {
		doc.SetList(URLsKey, kept)
	}
	for _, p := range pending {
		p.record.Set(URLField, p.url)
	}
	return changed, nil
}

// RewriteURL replaces the owner and repository of the first hosting URL
// found in s. Text before and after the match is kept unchanged.
func (w *URLRewriter) RewriteURL(s string) string {
	loc := w.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	branch := s[loc[2]:loc[3]]
	return s[:loc[0]] + w.replacement + branch + s[loc[1]:]
}

// disqualified reports whether record must be removed because of its name.
func (w *URLRewriter) disqualified(record any) (bool, error) {
	if len(w.exclude) == 0 {
		return false, nil
	}

	value, _ := document.Field(record, NameField)
	name, ok := value.(string)
	if !ok {
		if w.rule.LenientNames {
			return false, nil
		}
		// A falsy name skips the guarded first test, and with a single
		// exclude name there is nothing left to evaluate.
		if !document.Truthy(value) && len(w.exclude) == 1 {
			return false, nil
		}
		return false, ErrNameNotString
	}

	name = norm.NFC.String(name)
	for i, sub := range w.exclude {
		if i == 0 && name == "" {
			continue
		}
		if strings.Contains(name, sub) {
			return true, nil
		}
	}
	return false, nil
}
