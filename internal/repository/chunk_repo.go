package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizbot-backend/internal/models"
)

type ChunkRepo struct {
	pool *pgxpool.Pool
}

func NewChunkRepo(pool *pgxpool.Pool) *ChunkRepo {
	return &ChunkRepo{pool: pool}
}

// CreateBatch stores all chunks of a document in one transaction.
func (r *ChunkRepo) CreateBatch(ctx context.Context, chunks []models.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range chunks {
		chunks[i].ID = uuid.New()

		embBytes, err := json.Marshal(chunks[i].Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}

		batch.Queue(
			`INSERT INTO chunks (id, document_id, position, text, embedding) VALUES ($1, $2, $3, $4, $5)`,
			chunks[i].ID, chunks[i].DocumentID, chunks[i].Position, chunks[i].Text, embBytes,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return tx.Commit(ctx)
}

// ListEmbedded returns every chunk with its embedding decoded, for ranking.
func (r *ChunkRepo) ListEmbedded(ctx context.Context) ([]models.Chunk, error) {
	query := `SELECT id, document_id, position, text, embedding FROM chunks ORDER BY document_id, position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var embBytes []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Position, &c.Text, &embBytes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(embBytes, &c.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for chunk %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID)
	return err
}
