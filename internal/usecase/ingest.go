package usecase

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kbrag/internal/adapter/parser"
	"kbrag/internal/domain"
	"kbrag/internal/logger"
	"kbrag/internal/port"
)

// IngestUseCase registers uploaded files and extracts their text.
type IngestUseCase struct {
	store  port.DocumentStore
	walker port.FileWalker
	parser port.FileParser
	now    func() time.Time
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(store port.DocumentStore, walker port.FileWalker, parser port.FileParser) *IngestUseCase {
	return &IngestUseCase{
		store:  store,
		walker: walker,
		parser: parser,
		now:    time.Now,
	}
}

// IngestResult contains the results of an ingest operation.
type IngestResult struct {
	Completed []domain.Document
	Failed    []domain.Document
	Skipped   []string
	Errors    []string
}

// Progress is called after each file with the number handled so far.
type Progress func(done, total int)

// Discover lists the files under the given paths that match the walker's
// patterns.
func (u *IngestUseCase) Discover(paths []string) ([]port.FileInfo, error) {
	var files []port.FileInfo
	for _, p := range paths {
		found, err := u.walker.Walk(p)
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// Ingest stores every file as a document. A file whose text cannot be
// extracted stays in the store with status failed.
func (u *IngestUseCase) Ingest(files []port.FileInfo, progress Progress) (*IngestResult, error) {
	result := &IngestResult{}

	for i, file := range files {
		name := filepath.Base(file.Path)
		if !parser.Accepted(name) {
			result.Skipped = append(result.Skipped, file.Path)
			logger.Info("skipping %s: unsupported file type", file.Path)
			if progress != nil {
				progress(i+1, len(files))
			}
			continue
		}

		doc, err := u.ingestFile(file, name)
		if err != nil {
			return result, err
		}
		if doc.Status == domain.StatusCompleted {
			result.Completed = append(result.Completed, doc)
		} else {
			result.Failed = append(result.Failed, doc)
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}

	return result, nil
}

// IngestPaths discovers and ingests files in one step.
func (u *IngestUseCase) IngestPaths(paths []string, progress Progress) (*IngestResult, error) {
	files, err := u.Discover(paths)
	if err != nil {
		return nil, err
	}
	return u.Ingest(files, progress)
}

// ingestFile returns an error only when the store fails. Parse failures
// are recorded on the document.
func (u *IngestUseCase) ingestFile(file port.FileInfo, name string) (domain.Document, error) {
	doc := domain.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       parser.TypeLabel(name),
		Size:       file.Size,
		Status:     domain.StatusProcessing,
		Content:    domain.MissingContent(),
		UploadedAt: u.now(),
	}
	if err := u.store.PutDoc(doc); err != nil {
		return doc, fmt.Errorf("failed to store document %s: %w", name, err)
	}

	text, err := u.parser.Parse(file.Path)
	if err != nil {
		logger.Warn("failed to extract text from %s: %v", file.Path, err)
		doc.Status = domain.StatusFailed
		if err := u.store.SetStatus(doc.ID, domain.StatusFailed); err != nil {
			return doc, fmt.Errorf("failed to update document %s: %w", name, err)
		}
		return doc, nil
	}

	if err := u.store.SetContent(doc.ID, text); err != nil {
		return doc, fmt.Errorf("failed to store content of %s: %w", name, err)
	}
	doc.Status = domain.StatusCompleted
	doc.Content = domain.TextContent(text)
	logger.Debug("ingested %s as %s (%d bytes)", name, doc.ID, file.Size)

	return doc, nil
}
