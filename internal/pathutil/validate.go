// Package pathutil confines history export and import files to known
// directories and shortens paths for logs.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ExportsDir is the directory under .resonance that holds history exports.
	ExportsDir = "exports"

	// ExportExt is the required extension of export and import files.
	ExportExt = ".jsonl"
)

// ErrPathRejected wraps every validation failure.
var ErrPathRejected = errors.New("path rejected")

// RedactPath shortens a path to .../<parent>/<basename> for logs and errors.
// "/home/user/.resonance/resonance.db" becomes ".../.resonance/resonance.db".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPathRejected, fmt.Sprintf(format, args...))
}

// ValidateExportPath checks that path names a .jsonl file inside the project
// root or ~/.resonance/exports.
func ValidateExportPath(path, projectRoot string) error {
	if !strings.EqualFold(filepath.Ext(path), ExportExt) {
		return rejected("%q must have a %s extension", RedactPath(path), ExportExt)
	}
	allowedDirs, err := DefaultAllowedExportDirs(projectRoot)
	if err != nil {
		return err
	}
	return ValidatePath(path, allowedDirs)
}

// ValidatePath returns nil if path resolves inside one of allowedDirs. The
// file need not exist; symlinks in its deepest existing ancestor are
// resolved, so a link pointing out of an allowed dir is rejected.
func ValidatePath(path string, allowedDirs []string) error {
	switch {
	case path == "":
		return rejected("path is empty")
	case len(allowedDirs) == 0:
		return rejected("no allowed directories configured")
	case strings.ContainsRune(path, '\x00'):
		return rejected("path contains null byte")
	}

	target, err := resolve(path)
	if err != nil {
		return rejected("cannot resolve %q: %v", RedactPath(path), err)
	}

	for _, dir := range allowedDirs {
		base, err := resolve(dir)
		if err != nil {
			continue
		}
		if target == base || strings.HasPrefix(target, base+string(os.PathSeparator)) {
			return nil
		}
	}
	return rejected("%q is outside allowed directories", RedactPath(target))
}

// resolve makes path absolute and evaluates symlinks on the longest
// existing prefix, re-appending the components that do not exist yet.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var missing []string
	for cur := abs; ; {
		if real, err := filepath.EvalSymlinks(cur); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				real = filepath.Join(real, missing[i])
			}
			return real, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("no existing ancestor")
		}
		missing = append(missing, filepath.Base(cur))
		cur = parent
	}
}

// DefaultAllowedExportDirs returns where history exports may be written or
// read: the project root and ~/.resonance/exports.
func DefaultAllowedExportDirs(projectRoot string) ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		projectRoot,
		filepath.Join(homeDir, ".resonance", ExportsDir),
	}, nil
}
