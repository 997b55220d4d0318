package discover

import (
	"fmt"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

// JSONExt is the extension of files collected by Discover.
// The comparison is case-sensitive.
const JSONExt = ".json"

// options holds the settings applied by Option functions.
type options struct {
	skipDirs map[string]bool
}

// Option configures Discover.
type Option func(*options)

// WithSkipDirs skips directories whose base name is one of names.
// The root directory itself is never skipped.
func WithSkipDirs(names ...string) Option {
	return func(o *options) {
		for _, name := range names {
			if name != "" {
				o.skipDirs[name] = true
			}
		}
	}
}

// Discover returns the paths of all JSON files under root, depth-first.
// Paths are relative to fsys, joined with fsys.Join.
//
// Any error reading a directory or stating an entry aborts the walk;
// a tree that cannot be listed completely is not processed partially.
func Discover(fsys billy.Filesystem, root string, opts ...Option) ([]string, error) {
	o := &options{skipDirs: make(map[string]bool)}
	for _, opt := range opts {
		opt(o)
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %q: %w", displayRoot(root), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", displayRoot(root))
	}

	results := make([]string, 0)
	if err := walk(fsys, root, o, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func walk(fsys billy.Filesystem, dir string, o *options, results *[]string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", displayRoot(dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		p := fsys.Join(dir, name)

		// Stat rather than the ReadDir entry: symlinked directories are walked.
		info, err := fsys.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to stat %q: %w", p, err)
		}

		if info.IsDir() {
			if o.skipDirs[name] {
				continue
			}
			if err := walk(fsys, p, o, results); err != nil {
				return err
			}
			continue
		}

		if extension(name) == JSONExt {
			*results = append(*results, p)
		}
	}

	return nil
}

// extension returns the extension of a base name. A leading dot marks a
// hidden file rather than an extension, so ".json" has none.
func extension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return ""
	}
	return name[dot:]
}

func displayRoot(p string) string {
	if p == "" {
		return "."
	}
	return p
}
