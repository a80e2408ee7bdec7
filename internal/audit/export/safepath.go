package export

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	dErrors "offboard/pkg/domainerrors"
)

// filenamePattern is the full allowed character set. Everything outside it,
// including path separators and shell metacharacters, is rejected before the
// name ever reaches the filesystem.
var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Resolver validates externally supplied filenames and maps them to paths
// strictly inside the export directory.
type Resolver struct {
	dir     string
	allowed map[string]struct{}
}

// NewResolver canonicalizes the export directory, which must exist.
func NewResolver(dir string) (*Resolver, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve export dir: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize export dir: %w", err)
	}

	allowed := make(map[string]struct{})
	for _, f := range []Format{FormatCSV, FormatJSONL, FormatXLSX, FormatPDF} {
		allowed["."+f.Extension()] = struct{}{}
	}

	return &Resolver{dir: canonical, allowed: allowed}, nil
}

// Dir returns the canonical export directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve validates the filename and returns its absolute path inside the
// export directory. Every rejection is a validation error so callers can
// distinguish a hostile name from a file that simply does not exist yet.
func (r *Resolver) Resolve(filename string) (string, error) {
	if filename == "" {
		return "", dErrors.New(dErrors.CodeValidation, "filename is required")
	}
	if !filenamePattern.MatchString(filename) {
		return "", dErrors.New(dErrors.CodeValidation, "filename contains invalid characters")
	}

	full := filepath.Join(r.dir, filename)

	// The character set already forbids separators, so Join cannot escape
	// the directory. The canonical check below still guards against a
	// symlink planted inside the export directory pointing elsewhere.
	canonical, err := filepath.EvalSymlinks(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		canonical = full
	case err != nil:
		return "", fmt.Errorf("canonicalize %s: %w", filename, err)
	}
	if canonical != full && !strings.HasPrefix(canonical, r.dir+string(filepath.Separator)) {
		return "", dErrors.New(dErrors.CodeValidation, "filename resolves outside the export directory")
	}

	if _, ok := r.allowed[strings.ToLower(filepath.Ext(filename))]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "file type is not allowed")
	}
	return full, nil
}
