package filesave

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"AXpress/internal/ports"
)

// DirSaver writes downloaded files into a single directory.
type DirSaver struct {
	dir string
}

var _ ports.FileSaver = (*DirSaver)(nil)

// NewDirSaver targets dir; it is created on first save.
func NewDirSaver(dir string) *DirSaver {
	return &DirSaver{dir: dir}
}

// Dir returns the target directory.
func (s *DirSaver) Dir() string {
	return s.dir
}

// Save streams r into dir/name. The name is reduced to one path element first.
func (s *DirSaver) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	base := SafeName(name)
	if base == "" {
		return 0, fmt.Errorf("save: empty file name")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dir %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+base+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return written, fmt.Errorf("write %s: %w", base, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, base)); err != nil {
		_ = os.Remove(tmpName)
		return written, fmt.Errorf("rename %s: %w", base, err)
	}

	return written, nil
}

// SafeName replaces path separators so name cannot leave the target directory.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
