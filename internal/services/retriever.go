package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"quizbot-backend/internal/models"
)

const embedCacheTTL = 24 * time.Hour

type chunkSource interface {
	ListEmbedded(ctx context.Context) ([]models.Chunk, error)
}

// Embedder turns text into a vector. Implemented by GeminiService.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// DocRetriever ranks ingested chunks against a query by cosine similarity.
// Query embeddings are cached in Redis; the corpus is small enough that
// brute-force ranking over all stored chunks is fine.
type DocRetriever struct {
	chunks   chunkSource
	embedder Embedder
	redis    *redis.Client
}

func NewDocRetriever(chunks chunkSource, embedder Embedder, redisClient *redis.Client) *DocRetriever {
	return &DocRetriever{
		chunks:   chunks,
		embedder: embedder,
		redis:    redisClient,
	}
}

// Retrieve returns the topK most relevant chunk texts for the query, ordered
// by relevance descending. An empty or uninitialized corpus yields an empty
// slice, not an error.
func (r *DocRetriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	chunks, err := r.chunks.ListEmbedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return []string{}, nil
	}

	queryVec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{text: c.Text, score: cosineSimilarity(queryVec, c.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	passages := make([]string, len(ranked))
	for i, s := range ranked {
		passages[i] = s.text
	}
	return passages, nil
}

func (r *DocRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := embedCacheKey(query)

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, key).Result(); err == nil {
			var vec []float32
			if json.Unmarshal([]byte(cached), &vec) == nil && len(vec) > 0 {
				return vec, nil
			}
		}
	}

	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(vec); err == nil {
			if err := r.redis.Set(ctx, key, string(data), embedCacheTTL).Err(); err != nil {
				log.Printf("[WARN] Failed to cache query embedding: %v", err)
			}
		}
	}

	return vec, nil
}

func embedCacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "embedding:" + hex.EncodeToString(sum[:])
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
