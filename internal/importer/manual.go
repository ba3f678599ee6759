package importer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/manual"
	"go.uber.org/zap"
)

// ManualResult summarizes a manual import
type ManualResult struct {
	Document string `json:"document"`
	Chunks   int    `json:"chunks"`
	Embedded int    `json:"embedded"`
}

// ImportManual splits a .txt/.md/.pdf manual into chunks and stores them under
// the file's base name. Embeddings are attached when an embedder is given;
// an embedding failure leaves that chunk without a vector.
func ImportManual(ctx context.Context, store ManualWriter, embedder Embedder, path string, logger *zap.Logger) (*ManualResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := manual.Load(path)
	if err != nil {
		return nil, err
	}

	texts := manual.Chunk(m.Text())
	chunks := make([]database.ManualChunk, 0, len(texts))
	result := &ManualResult{Document: filepath.Base(path)}

	for i, text := range texts {
		chunk := database.ManualChunk{Document: result.Document, Position: i, Content: text}
		if embedder != nil {
			vec, err := embedder.Embed(ctx, text)
			if err != nil {
				logger.Warn("embedding failed", zap.Int("chunk", i), zap.Error(err))
			} else {
				chunk.Embedding = vec
				result.Embedded++
			}
		}
		chunks = append(chunks, chunk)
	}

	if err := store.SaveManualChunks(result.Document, chunks); err != nil {
		return nil, fmt.Errorf("failed to store manual: %w", err)
	}
	result.Chunks = len(chunks)

	logger.Info("manual imported",
		zap.String("document", result.Document),
		zap.Int("chunks", result.Chunks),
		zap.Int("embedded", result.Embedded))
	return result, nil
}
