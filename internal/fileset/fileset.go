// Package fileset collects the .jack/.vm files a directory-mode CLI
// invocation should process, and drives independent per-file work
// concurrently while joining results back in deterministic order.
package fileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// OutputPath derives the sibling output path for path by swapping its
// extension for newExt (e.g. ".jack" -> ".vm"), using explicit suffix
// removal rather than a literal rstrip — see DESIGN.md Open Question 1
// (a naive rstrip(".vm")-style approach mis-strips names like
// mis-strips names like "foo.vvm").
func OutputPath(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

// Collect returns the files to process for a given CLI positional
// argument: if fileOrDir is a single file, that file alone (its
// extension is not checked against ext); if fileOrDir is a
// directory, every entry directly inside it whose extension is ext,
// sorted by name so that concatenation order is deterministic across
// platforms and runs, a guarantee the directory-scan this is grounded
// on does not actually provide — see DESIGN.md Open Question 4).
func Collect(fileOrDir, ext string) ([]string, error) {
	info, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("fileset: cannot stat %q: %w", fileOrDir, err)
	}

	if !info.IsDir() {
		return []string{fileOrDir}, nil
	}

	entries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("fileset: cannot read directory %q: %w", fileOrDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("fileset: no %q files found in %q", ext, fileOrDir)
	}
	return files, nil
}

// MapConcurrent runs fn over each of files concurrently (one
// goroutine per file, since per-file translation/compilation is
// independent), returning results in the same order as
// files regardless of completion order, or the first error
// encountered.
func MapConcurrent[T any](files []string, fn func(file string) (T, error)) ([]T, error) {
	results := make([]T, len(files))
	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			result, err := fn(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BaseName returns the filename sans extension, used both as a Jack
// class name and as a VM static-segment qualifier.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
