// Package sqlite implements the knowledge store on a single SQLite table.
//
// Full-text documents and their chunks share the documents table; chunks
// point at their parent through a cascading foreign key. Embeddings are
// stored as little-endian float32 blobs and similarity ranking happens
// in-process, which is plenty for a per-project documentation corpus.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
)

var _ driven.KnowledgeStore = (*Store)(nil)

// Store is a SQLite-backed knowledge store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if necessary) the knowledge database under the
// given data directory. If dataDir is empty, defaults to ~/.docsage/data.
// Call Init before use to apply migrations.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docsage", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys so chunk deletion cascades
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Init applies pending schema migrations.
func (s *Store) Init(ctx context.Context) error {
	return s.migrate(ctx, migrations.FS)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// AddKnowledge stores documents in a single transaction. Insert-only:
// documents are immutable once written.
func (s *Store) AddKnowledge(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, content, embedding, created_at, parent_id, is_full_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if doc.ID == "" || doc.Content == "" {
			return domain.ErrInvalidInput
		}

		embeddingBlob := float32SliceToBytes(doc.Embedding)

		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Content, embeddingBlob,
			doc.CreatedAt, doc.ParentID, doc.IsFullText); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SearchKnowledge performs a lexical substring match against document content.
func (s *Store) SearchKnowledge(ctx context.Context, query string, topK int) ([]domain.Document, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, created_at, parent_id, is_full_text
		FROM documents
		WHERE content LIKE ? ESCAPE '\'
		ORDER BY rowid
		LIMIT ?
	`, "%"+escapeLike(query)+"%", topK)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SearchByEmbedding ranks every stored document by cosine similarity to the
// query vector and returns the top K. Ties keep insertion order, earlier
// documents first.
func (s *Store) SearchByEmbedding(ctx context.Context, query []float32, topK int) ([]domain.Document, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, created_at, parent_id, is_full_text
		FROM documents
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}

	type scored struct {
		doc   domain.Document
		score float64
	}

	candidates := make([]scored, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != len(query) {
			continue // different provider or missing embedding
		}
		candidates = append(candidates, scored{doc: doc, score: cosineSimilarity(query, doc.Embedding)})
	}

	// Stable sort preserves insertion order among equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]domain.Document, topK)
	for i := range results {
		results[i] = candidates[i].doc
	}
	return results, nil
}

// DeleteDocument removes a document. Chunks referencing it are removed by
// the cascading foreign key.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Helper Functions ====================

// cosineSimilarity computes the cosine of the angle between two vectors of
// equal length. Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
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

// escapeLike escapes LIKE wildcards in user-supplied query text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocuments scans multiple document rows.
func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var embeddingBlob []byte
		var parentID sql.NullString
		var createdAt sql.NullTime

		if err := rows.Scan(&doc.ID, &doc.Content, &embeddingBlob,
			&createdAt, &parentID, &doc.IsFullText); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.Embedding = bytesToFloat32Slice(embeddingBlob)
		if parentID.Valid {
			doc.ParentID = &parentID.String
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}
