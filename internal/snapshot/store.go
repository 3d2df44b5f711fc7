package snapshot

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"apistub/node"
)

//go:embed schema.sql
var schema string

// ErrScanNotFound is returned for unknown scan IDs.
var ErrScanNotFound = errors.New("scan not found")

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
}

// Scan describes a stored scan.
type Scan struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Label     string
	Classes   int
}

// MemberRef locates a child node inside a stored scan.
type MemberRef struct {
	ScanID  uuid.UUID
	ClassID string
	Kind    string
	Name    string
	Type    string
}

// connPragmas run on every pooled connection the driver opens.
const connPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", "file:"+path+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db %s: %w", path, err)
	}

	// Initialize schema
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveScan stores nodes as a new scan in one transaction.
func (s *Store) SaveScan(ctx context.Context, label string, nodes []*node.ClassNode) (Scan, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Scan{}, fmt.Errorf("generate scan id: %w", err)
	}

	scan := Scan{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Label:     label,
		Classes:   len(nodes),
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return Scan{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, created_at, label, class_count) VALUES (?, ?, ?, ?)`,
		scan.ID.String(), scan.CreatedAt.UnixNano(), scan.Label, scan.Classes,
	)
	if err != nil {
		return Scan{}, fmt.Errorf("insert scan: %w", err)
	}

	for ordinal, n := range nodes {
		if err := insertClass(ctx, tx, scan.ID, ordinal, n); err != nil {
			return Scan{}, fmt.Errorf("insert %s: %w", n.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Scan{}, fmt.Errorf("commit: %w", err)
	}

	return scan, nil
}

func insertClass(ctx context.Context, tx *sql.Tx, scanID uuid.UUID, ordinal int, n *node.ClassNode) error {
	view := n.ShapedView()

	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO classes (scan_id, ordinal, class_id, name, namespace, source, shape, view)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID.String(), ordinal, view.ID, view.Name, view.Namespace, view.Source, view.Shape, string(data),
	)
	if err != nil {
		return err
	}

	for position, ch := range view.Children {
		typ := ch.Type
		if ch.Kind == "method" {
			typ = ch.Returns
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO children (scan_id, ordinal, position, kind, name, type) VALUES (?, ?, ?, ?, ?, ?)`,
			scanID.String(), ordinal, position, ch.Kind, ch.Name, typ,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ListScans returns every stored scan, newest first.
func (s *Store) ListScans(ctx context.Context) ([]Scan, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, created_at, label, class_count FROM scans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []Scan

	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}

		scans = append(scans, scan)
	}

	return scans, rows.Err()
}

// LoadScan returns a stored scan and its class views in saved order.
func (s *Store) LoadScan(ctx context.Context, id uuid.UUID) (Scan, []node.ClassView, error) {
	scan, err := scanRow(s.conn.QueryRowContext(ctx,
		`SELECT id, created_at, label, class_count FROM scans WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, nil, fmt.Errorf("%s: %w", id, ErrScanNotFound)
	}

	if err != nil {
		return Scan{}, nil, err
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT view FROM classes WHERE scan_id = ? ORDER BY ordinal`, id.String())
	if err != nil {
		return Scan{}, nil, err
	}
	defer rows.Close()

	views := make([]node.ClassView, 0, scan.Classes)

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return Scan{}, nil, err
		}

		var view node.ClassView
		if err := yaml.Unmarshal([]byte(data), &view); err != nil {
			return Scan{}, nil, fmt.Errorf("decode stored view: %w", err)
		}

		views = append(views, view)
	}

	return scan, views, rows.Err()
}

// DeleteScan removes a scan and everything stored with it.
func (s *Store) DeleteScan(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrScanNotFound)
	}

	return nil
}

// FindMembers returns every stored child node with the given name.
func (s *Store) FindMembers(ctx context.Context, name string) ([]MemberRef, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT ch.scan_id, c.class_id, ch.kind, ch.name, ch.type
		 FROM children ch
		 JOIN classes c ON c.scan_id = ch.scan_id AND c.ordinal = ch.ordinal
		 WHERE ch.name = ?
		 ORDER BY ch.scan_id, ch.ordinal, ch.position`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []MemberRef

	for rows.Next() {
		var (
			ref    MemberRef
			scanID string
		)

		if err := rows.Scan(&scanID, &ref.ClassID, &ref.Kind, &ref.Name, &ref.Type); err != nil {
			return nil, err
		}

		if ref.ScanID, err = uuid.Parse(scanID); err != nil {
			return nil, fmt.Errorf("stored scan id %q: %w", scanID, err)
		}

		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// MemberNames returns the distinct stored child names in lexical order.
func (s *Store) MemberNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT DISTINCT name FROM children ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var (
		scan    Scan
		id      string
		created int64
	)

	if err := row.Scan(&id, &created, &scan.Label, &scan.Classes); err != nil {
		return Scan{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Scan{}, fmt.Errorf("stored scan id %q: %w", id, err)
	}

	scan.ID = parsed
	scan.CreatedAt = time.Unix(0, created).UTC()

	return scan, nil
}
