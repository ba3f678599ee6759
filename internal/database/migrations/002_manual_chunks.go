package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "manual_chunks",
		Up:      manualChunks,
	})
}

// manualChunks stores the imported manual split into retrieval-sized chunks.
// The embedding column holds a JSON float array when an embedder was available.
func manualChunks(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS manual_chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document TEXT NOT NULL,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(document, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_manual_chunks_document ON manual_chunks(document)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
