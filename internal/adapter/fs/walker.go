package fs

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"kbrag/internal/port"
)

var _ port.FileWalker = (*Walker)(nil)

type Walker struct {
	includes []string
	excludes []string
	maxBytes int64
}

// NewWalker returns a walker that keeps files matching any include pattern
// and no exclude pattern. A maxBytes of zero disables the size limit.
func NewWalker(includes, excludes []string, maxBytes int64) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
		maxBytes: maxBytes,
	}
}

// Walk returns the matching files under root. root may also be a single
// file, which is returned as long as it fits the size limit.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if w.tooLarge(info.Size()) {
			return nil, nil
		}
		return []port.FileInfo{toFileInfo(root, info)}, nil
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) && !w.tooLarge(info.Size()) {
			files = append(files, toFileInfo(path, info))
		}

		return nil
	})

	return files, err
}

func toFileInfo(path string, info os.FileInfo) port.FileInfo {
	return port.FileInfo{
		Path:    path,
		ModTime: info.ModTime().Unix(),
		Size:    info.Size(),
	}
}

func (w *Walker) tooLarge(size int64) bool {
	return w.maxBytes > 0 && size > w.maxBytes
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
