package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitos/trade_journal/internal/domain"
)

// Reader resolves load sources into tables.
type Reader struct {
	baseDir  string
	maxBytes int64
}

// NewReader resolves relative paths against baseDir and rejects files larger
// than maxBytes (no limit when <= 0). When baseDir is set, paths that resolve
// outside it fail with domain.ErrPathNotAllowed. An empty baseDir means the
// working directory with no confinement.
func NewReader(baseDir string, maxBytes int64) *Reader {
	return &Reader{baseDir: baseDir, maxBytes: maxBytes}
}

func (r *Reader) ReadText(text string) (*domain.Table, error) {
	if r.maxBytes > 0 && int64(len(text)) > r.maxBytes {
		return nil, fmt.Errorf("csv text is %d bytes, limit is %d", len(text), r.maxBytes)
	}
	return ReadCSV(strings.NewReader(text))
}

func (r *Reader) ReadFile(path string) (*domain.Table, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", resolved)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", resolved, info.Size(), r.maxBytes)
	}

	if strings.EqualFold(filepath.Ext(resolved), ".xlsx") {
		return ReadXLSX(resolved)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", resolved, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func (r *Reader) resolve(path string) (string, error) {
	if r.baseDir == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		return abs, nil
	}

	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base dir %s: %w", r.baseDir, err)
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(base, abs)
	}
	abs = filepath.Clean(abs)
	if !within(base, abs) {
		return "", fmt.Errorf("%w: %s is outside %s", domain.ErrPathNotAllowed, path, base)
	}

	// symlinks inside base must not lead out of it
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		realBase, err := filepath.EvalSymlinks(base)
		if err != nil {
			return "", fmt.Errorf("failed to resolve base dir %s: %w", base, err)
		}
		if !within(realBase, real) {
			return "", fmt.Errorf("%w: %s is outside %s", domain.ErrPathNotAllowed, path, base)
		}
	}
	return abs, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
