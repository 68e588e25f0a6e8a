// Package resolve locates the script a launch should run.
//
// A target is either a path (absolute, or relative with a separator) or a
// bare name. Bare names are looked up in an explicit, ordered list of
// directories supplied by the caller rather than in the process environment,
// so concurrent launches with different search paths do not interfere.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ctagard/inspect/internal/errors"
)

// Resolver resolves target names against a search path.
type Resolver struct {
	searchPath []string
}

// NewResolver creates a resolver that searches dirs in order.
func NewResolver(searchPath []string) *Resolver {
	dirs := make([]string, 0, len(searchPath))
	for _, dir := range searchPath {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return &Resolver{searchPath: dirs}
}

// SearchPath returns the directories searched for bare names.
func (r *Resolver) SearchPath() []string {
	return append([]string(nil), r.searchPath...)
}

// Resolve returns the absolute path of the script named by target.
func (r *Resolver) Resolve(target string) (string, error) {
	if target == "" {
		return "", errors.MissingParameter("target", "Specify the script to run, as a path or a name on the search path.")
	}

	if IsPath(target) {
		abs, err := filepath.Abs(target)
		if err != nil {
			return "", errors.TargetNotFound(target, r.searchPath).WithCause(err)
		}
		if !isRegularFile(abs) {
			return "", errors.TargetNotFound(target, r.searchPath)
		}
		return abs, nil
	}

	for _, dir := range r.searchPath {
		candidate := filepath.Join(dir, target)
		if isRegularFile(candidate) {
			return filepath.Abs(candidate)
		}
	}

	// The runtime treats a bare script argument as relative to the working
	// directory, so accept that last.
	if isRegularFile(target) {
		return filepath.Abs(target)
	}

	return "", errors.TargetNotFound(target, r.searchPath)
}

// IsPath reports whether target names a path rather than a bare name.
func IsPath(target string) bool {
	return filepath.IsAbs(target) || strings.ContainsRune(target, '/') || strings.ContainsRune(target, filepath.Separator)
}

// SplitList splits a PATH-style list, dropping empty entries.
func SplitList(list string) []string {
	if list == "" {
		return nil
	}
	var dirs []string
	for _, dir := range filepath.SplitList(list) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
