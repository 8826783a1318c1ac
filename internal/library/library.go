// Package library saves exported card images somewhere the user can find
// them again. The service only moves bytes; it never renders an image.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrSaveFailed wraps every failure to store an image.
	ErrSaveFailed = errors.New("save to library failed")
	// ErrOutsideExports is returned for references that resolve outside the
	// export directory.
	ErrOutsideExports = fmt.Errorf("%w: reference outside export directory", ErrSaveFailed)
)

// Library stores the image behind ref and returns the saved asset reference.
type Library interface {
	Save(ctx context.Context, ref string) (string, error)
}

// LocalPath turns a file:// URI or plain path into a filesystem path.
func LocalPath(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty image reference", ErrSaveFailed)
	}
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		return filepath.FromSlash(u.Path), nil
	}
	if strings.Contains(ref, "://") {
		return "", fmt.Errorf("%w: unsupported reference %q", ErrSaveFailed, ref)
	}
	return ref, nil
}

// Sources confines the files a library may read to one directory tree, the
// place the client writes exported cards to.
type Sources struct {
	root string
}

// NewSources builds Sources rooted at dir, creating it if needed.
func NewSources(dir string) (Sources, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Sources{}, fmt.Errorf("create export dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Sources{}, fmt.Errorf("resolve export dir: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Sources{}, fmt.Errorf("resolve export dir: %w", err)
	}
	return Sources{root: root}, nil
}

// Resolve maps ref to a regular file inside the export directory. Relative
// paths are taken from the export directory; symlinks are followed before
// the containment check.
func (s Sources) Resolve(ref string) (string, error) {
	if s.root == "" {
		return "", fmt.Errorf("%w: no export directory", ErrSaveFailed)
	}
	p, err := LocalPath(ref)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	rel, err := filepath.Rel(s.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideExports
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrSaveFailed, ref)
	}
	return resolved, nil
}

func objectName(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".png"
	}
	return uuid.NewString() + ext
}

// LocalLibrary copies images from the export directory into a library
// directory.
type LocalLibrary struct {
	dir     string
	sources Sources
}

// NewLocalLibrary builds a library rooted at dir, creating it if needed.
func NewLocalLibrary(dir string, sources Sources) (*LocalLibrary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &LocalLibrary{dir: dir, sources: sources}, nil
}

// Save copies the image and returns a file:// reference to the copy.
func (l *LocalLibrary) Save(ctx context.Context, ref string) (string, error) {
	src, err := l.sources.Resolve(ref)
	if err != nil {
		return "", err
	}
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer in.Close()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	dst := filepath.Join(l.dir, objectName(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		abs = dst
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
