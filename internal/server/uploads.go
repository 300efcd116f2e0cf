package server

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ziadkadry99/docchat/internal/db"
)

// upload is one row of the uploads table.
type upload struct {
	ID        string
	Filename  string
	Path      string
	SizeBytes int64
	Chunks    int
	CreatedAt time.Time
}

// recordUpload stores u, replacing any earlier row for the same filename.
func recordUpload(ctx context.Context, database *db.DB, u upload) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording upload %s: %w", u.Filename, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM uploads WHERE filename = ?`, u.Filename); err != nil {
		return fmt.Errorf("replacing upload %s: %w", u.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, path, size_bytes, chunks, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.Path, u.SizeBytes, u.Chunks, u.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording upload %s: %w", u.Filename, err)
	}
	return tx.Commit()
}

func listUploads(ctx context.Context, database *db.DB) ([]upload, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, filename, path, size_bytes, chunks, created_at FROM uploads ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()

	var out []upload
	for rows.Next() {
		var (
			u       upload
			created string
		)
		if err := rows.Scan(&u.ID, &u.Filename, &u.Path, &u.SizeBytes, &u.Chunks, &created); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, u)
	}
	return out, rows.Err()
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// secureFilename reduces a client-supplied name to a safe base name made
// of ASCII letters, digits, dots, dashes and underscores. The result may
// be empty.
func secureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
