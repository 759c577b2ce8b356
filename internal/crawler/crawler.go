package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans directories for files to remap.
type Crawler struct {
	ignored    []string
	extensions []string
}

// NewCrawler creates a crawler that only reports files with one of the
// given extensions. No extensions means every regular file.
func NewCrawler(extensions ...string) *Crawler {
	return &Crawler{
		ignored:    []string{".git", ".svn", ".idea"},
		extensions: extensions,
	}
}

// Ignore adds directory names to skip.
func (c *Crawler) Ignore(names ...string) *Crawler {
	c.ignored = append(c.ignored, names...)
	return c
}

// ScanProject walks the root directory and calls onFile for every matching file.
// A root that is a file is reported directly if it matches.
func (c *Crawler) ScanProject(root string, onFile func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !c.matches(d.Name()) {
			return nil
		}

		return onFile(path)
	})
}

// Collect returns every matching file under the roots, without duplicates, in walk order.
func (c *Crawler) Collect(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		err := c.ScanProject(root, func(path string) error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

func (c *Crawler) matches(name string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
