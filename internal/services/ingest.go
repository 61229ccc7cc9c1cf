package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quizbot-backend/internal/models"
	"quizbot-backend/internal/repository"
)

const (
	chunkSize    = 500
	chunkOverlap = 100

	embedWorkers = 4
)

// IngestService turns an uploaded file into embedded, retrievable chunks.
type IngestService struct {
	embedder Embedder
	docs     *repository.DocumentRepo
	chunks   *repository.ChunkRepo
}

func NewIngestService(embedder Embedder, docs *repository.DocumentRepo, chunks *repository.ChunkRepo) *IngestService {
	return &IngestService{
		embedder: embedder,
		docs:     docs,
		chunks:   chunks,
	}
}

// IngestFile extracts, splits, embeds and stores a document. Returns the
// stored document record.
func (s *IngestService) IngestFile(ctx context.Context, path, title string) (*models.Document, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	pieces := splitText(text, chunkSize, chunkOverlap)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("document produced no chunks")
	}
	log.Printf("[INFO] Ingesting %q: %d chunks", title, len(pieces))

	doc := &models.Document{
		Title:      title,
		SourceFile: filepath.Base(path),
		ChunkCount: len(pieces),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	chunks, err := s.embedChunks(ctx, doc.ID, pieces)
	if err != nil {
		s.docs.Delete(ctx, doc.ID)
		return nil, err
	}

	if err := s.chunks.CreateBatch(ctx, chunks); err != nil {
		s.docs.Delete(ctx, doc.ID)
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	log.Printf("[INFO] Document %s ingested successfully", doc.ID)
	return doc, nil
}

// embedChunks embeds all pieces with a bounded number of concurrent calls.
func (s *IngestService) embedChunks(ctx context.Context, docID uuid.UUID, pieces []string) ([]models.Chunk, error) {
	chunks := make([]models.Chunk, len(pieces))

	var wg sync.WaitGroup
	sem := make(chan struct{}, embedWorkers)

	var mu sync.Mutex
	var firstErr error

	for i, piece := range pieces {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, piece string) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := s.embedder.EmbedText(ctx, piece)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to embed chunk %d: %w", i, err)
				}
				mu.Unlock()
				return
			}

			chunks[i] = models.Chunk{
				DocumentID: docID,
				Position:   i,
				Text:       piece,
				Embedding:  vec,
			}
		}(i, piece)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return chunks, nil
}

// splitText cuts text into overlapping chunks of roughly size characters,
// preferring to break at a whitespace boundary near the end of the window.
func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var pieces []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			pieces = append(pieces, strings.TrimSpace(text[start:]))
			break
		}

		// Back up to whitespace so words stay intact, unless that would
		// shrink the chunk too much.
		cut := end
		for cut > start+size/2 && !isSpace(text[cut-1]) {
			cut--
		}
		if cut == start+size/2 {
			cut = end
		}

		piece := strings.TrimSpace(text[start:cut])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		// Always make forward progress even with aggressive overlap, and
		// align the overlap start to a word boundary.
		next := cut - overlap
		if next <= start {
			next = cut
		}
		for next < cut && next > 0 && !isSpace(text[next-1]) {
			next++
		}
		start = next
	}
	return pieces
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}
