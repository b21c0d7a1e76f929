package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

type FileParser interface {
	// Parse extracts plain text from the file at path.
	Parse(path string) (string, error)
}
