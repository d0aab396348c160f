package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	authorsTable   = "authors"
	documentsTable = "documents"

	createAuthorsQuery = `CREATE TABLE IF NOT EXISTS ` + authorsTable + ` (
        id INTEGER PRIMARY KEY ASC,
        name TEXT NOT NULL,
        position INTEGER NOT NULL,
        UNIQUE(name))`
	createDocumentsQuery = `CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
        id INTEGER PRIMARY KEY ASC,
        author_id INTEGER NOT NULL,
        position INTEGER NOT NULL,
        body TEXT NOT NULL,
        FOREIGN KEY(author_id) REFERENCES ` + authorsTable + `(id))`

	loadQuery = `SELECT a."name", d."body" FROM ` + authorsTable + ` a
        LEFT JOIN ` + documentsTable + ` d ON d."author_id" = a."id"
        ORDER BY a."position", d."position"`
	insertAuthorQuery   = `INSERT INTO ` + authorsTable + ` ("name", "position") VALUES (?, ?)`
	insertDocumentQuery = `INSERT INTO ` + documentsTable + ` ("author_id", "position", "body") VALUES (?, ?, ?)`
)

// SQLSource keeps a corpus in two SQL tables, authors and documents, both
// ordered by an explicit position column.
type SQLSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database file and its schema.
func OpenSQLite(ctx context.Context, path string) (*SQLSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %v", err)
	}
	// ":memory:" databases are per connection
	db.SetMaxOpenConns(1)

	s, err := NewSQLSource(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSource wraps db and creates the tables if they are missing.
func NewSQLSource(ctx context.Context, db *sql.DB) (*SQLSource, error) {
	for _, q := range []string{createAuthorsQuery, createDocumentsQuery} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to create schema: %v", err)
		}
	}
	return &SQLSource{db: db}, nil
}

// Load reads every author with its documents in stored order.
func (s *SQLSource) Load(ctx context.Context) (*Corpus, error) {
	rows, err := s.db.QueryContext(ctx, loadQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %v", err)
	}
	defer rows.Close()

	c := &Corpus{}
	for rows.Next() {
		var name string
		var body sql.NullString
		if err := rows.Scan(&name, &body); err != nil {
			return nil, err
		}
		n := len(c.Authors)
		if n == 0 || c.Authors[n-1].Name != name {
			c.Authors = append(c.Authors, Author{Name: name})
			n++
		}
		if body.Valid {
			c.Authors[n-1].Documents = append(c.Authors[n-1].Documents, body.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save replaces the stored corpus in a single transaction.
func (s *SQLSource) Save(ctx context.Context, c *Corpus) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+documentsTable); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+authorsTable); err != nil {
		return err
	}

	for i, a := range c.Authors {
		res, err := tx.ExecContext(ctx, insertAuthorQuery, a.Name, i)
		if err != nil {
			return fmt.Errorf("failed to insert author %s: %v", a.Name, err)
		}
		authorID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for j, doc := range a.Documents {
			if _, err := tx.ExecContext(ctx, insertDocumentQuery, authorID, j, doc); err != nil {
				return fmt.Errorf("failed to insert document %d of %s: %v", j, a.Name, err)
			}
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

var _ Source = (*SQLSource)(nil)
var _ Sink = (*SQLSource)(nil)
