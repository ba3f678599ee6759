package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// ManualChunk is one retrieval-sized piece of an imported manual
type ManualChunk struct {
	ID        int64
	Document  string
	Position  int
	Content   string
	Embedding []float32
}

// SaveManualChunks replaces every chunk of a document in one transaction
func (d *DB) SaveManualChunks(document string, chunks []ManualChunk) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM manual_chunks WHERE document = ?`, document); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO manual_chunks (document, position, content, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		var embedding sql.NullString
		if len(c.Embedding) > 0 {
			data, err := json.Marshal(c.Embedding)
			if err != nil {
				return fmt.Errorf("failed to encode embedding: %w", err)
			}
			embedding = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.Exec(document, i, c.Content, embedding); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListManualChunks returns the chunks of a document in order
func (d *DB) ListManualChunks(document string) ([]ManualChunk, error) {
	rows, err := d.Query(`
		SELECT id, document, position, content, embedding
		FROM manual_chunks WHERE document = ?
		ORDER BY position
	`, document)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []ManualChunk
	for rows.Next() {
		var c ManualChunk
		var embedding sql.NullString
		if err := rows.Scan(&c.ID, &c.Document, &c.Position, &c.Content, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &c.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode embedding: %w", err)
			}
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
