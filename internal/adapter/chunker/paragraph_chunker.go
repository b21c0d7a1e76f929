package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// DefaultChunkSize is the soft upper bound, in characters, of a chunk.
const DefaultChunkSize = 600

var _ port.Chunker = (*ParagraphChunker)(nil)

// paragraphBreak matches a blank line or a CJK full stop with any trailing
// whitespace, including ideographic and no-break spaces.
var paragraphBreak = regexp.MustCompile(`\n{2,}|。[\s\v\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]*`)

type ParagraphChunker struct {
	chunkSize int
}

func NewParagraphChunker(chunkSize int) (*ParagraphChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, chunkSize)
	}
	return &ParagraphChunker{chunkSize: chunkSize}, nil
}

func (c *ParagraphChunker) ChunkSize() int {
	return c.chunkSize
}

func (c *ParagraphChunker) Chunk(doc domain.Document, content string) ([]domain.Chunk, error) {
	texts, err := SplitIntoChunks(content, c.chunkSize)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			DocID:   doc.ID,
			DocName: doc.Name,
			Index:   i,
			Text:    text,
		})
	}
	return chunks, nil
}

// SplitIntoChunks groups the paragraphs of text into chunks of roughly
// chunkSize characters. A single paragraph longer than chunkSize becomes
// its own oversized chunk. Text with content but no usable paragraphs is
// cut into fixed chunkSize slices instead.
func SplitIntoChunks(text string, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, chunkSize)
	}
	if text == "" {
		return nil, nil
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, para := range paragraphBreak.Split(text, -1) {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(trimmed)

		if currentLen > 0 && currentLen+paraLen > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(trimmed)
		currentLen += paraLen
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	if len(chunks) == 0 && strings.TrimSpace(text) != "" {
		chunks = fixedSlices(text, chunkSize)
	}

	return chunks, nil
}

func fixedSlices(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
