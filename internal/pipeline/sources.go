package pipeline

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceLayout describes where copied source roots go:
// BuildDir/Out/<root relative to BaseDir>.
type SourceLayout struct {
	BaseDir  string
	BuildDir string
	Out      string
}

// Target returns the copy destination of a source root. Roots outside
// BaseDir are placed under their base name.
func (l SourceLayout) Target(root string) (string, error) {
	base, err := filepath.Abs(l.BaseDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(abs)
	}
	return filepath.Join(l.BuildDir, l.Out, rel), nil
}

// CopySources copies every root to its target, replacing earlier copies,
// and returns the copied roots in the same order.
func (l SourceLayout) CopySources(roots []string) ([]string, error) {
	copied := make([]string, 0, len(roots))
	for _, root := range roots {
		target, err := l.Target(root)
		if err != nil {
			return nil, err
		}
		if within(root, target) {
			return nil, fmt.Errorf("source root %s is inside its copy target %s", root, target)
		}
		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", target, err)
		}
		if err := copyTree(root, target); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", root, err)
		}
		copied = append(copied, target)
	}
	return copied, nil
}

// Cleanup deletes the copied source directories. Each name is relative to BuildDir;
// no names means the default Out directory.
func (l SourceLayout) Cleanup(names ...string) ([]string, error) {
	if len(names) == 0 {
		names = []string{l.Out}
	}
	var removed []string
	for _, name := range names {
		dir := filepath.Join(l.BuildDir, name)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		removed = append(removed, dir)
	}
	return removed, nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	p, err1 := filepath.Abs(path)
	d, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	return p == d || strings.HasPrefix(p, d+string(filepath.Separator))
}

// copyTree copies src to dst. When dst lies inside src it is left out of
// the walk, so a project root can be copied into its own build directory.
func copyTree(src, dst string) error {
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, err := filepath.Abs(path); err == nil && abs == absDst {
				return filepath.SkipDir
			}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
