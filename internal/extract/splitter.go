package extract

import (
	"fmt"
	"strings"
)

// Chunk is a contiguous span of extracted text from one document.
type Chunk struct {
	ID    string
	PDFID string
	Text  string
	Index int
}

// Splitter cuts text into fixed-size chunks with overlap between consecutive
// chunks so context at chunk boundaries is not lost.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the ordered chunks of text, each carrying a deterministic ID
// of the form "{pdfID}_{index}". Windows that contain only whitespace, such
// as a blank stretch spanning several extracted pages, are dropped and the
// remaining chunks are numbered contiguously. Whitespace-only input yields no
// chunks.
func (s *Splitter) Split(pdfID, text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []Chunk
	step := s.chunkSize - s.overlap

	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			index := len(chunks)
			chunks = append(chunks, Chunk{
				ID:    ChunkID(pdfID, index),
				PDFID: pdfID,
				Text:  piece,
				Index: index,
			})
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunkID derives the store key for the index-th chunk of a document.
func ChunkID(pdfID string, index int) string {
	return fmt.Sprintf("%s_%d", pdfID, index)
}
