package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.RunStore = (*runStore)(nil)

// runStore implements driven.RunStore using SQLite.
type runStore struct {
	store *Store
}

// Save stores or replaces a run with its nodes and linkages.
func (s *runStore) Save(ctx context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := saveRun(ctx, tx, run); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

func saveRun(ctx context.Context, tx *sql.Tx, run *domain.Run) error {
	// Cascades to nodes and linkages.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("replacing run: %w", err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_at, finished_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Root, formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, n := range run.Nodes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_nodes (
				run_id, seq, name, parent, depth, status, reason, location, entities, doc_type, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, n.Name, nullString(n.Parent), n.Depth, n.Status.String(),
			nullString(n.Reason), n.Location, n.Entities, nullString(n.DocumentType), nullString(n.Version))
		if err != nil {
			return fmt.Errorf("inserting node %s: %w", n.Name, err)
		}
	}

	for _, l := range run.Linkages {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO run_linkages (
				run_id, master_model, master_id, detail_model, detail_id,
				representation_name, product_name, product_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, l.Master.Model, l.Master.ID, l.Detail.Model, l.Detail.ID,
			l.Key.RepresentationName, l.Key.ProductName, l.Key.ProductID)
		if err != nil {
			return fmt.Errorf("inserting linkage %s: %w", l.Master, err)
		}
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, root, started_at, finished_at FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	if run.Nodes, err = s.nodes(ctx, id); err != nil {
		return nil, err
	}
	if run.Linkages, err = s.linkages(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// Latest returns the most recently started run.
func (s *runStore) Latest(ctx context.Context) (*domain.Run, error) {
	var id string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY started_at DESC, id ASC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest run: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns all runs, newest first, without nodes or linkages.
func (s *runStore) List(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, root, started_at, finished_at FROM runs
		ORDER BY started_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes a run.
func (s *runStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *runStore) nodes(ctx context.Context, id string) ([]domain.NodeRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, parent, depth, status, reason, location, entities, doc_type, version
		FROM run_nodes WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.NodeRecord
	for rows.Next() {
		var (
			n                domain.NodeRecord
			parent, reason   sql.NullString
			docType, version sql.NullString
			status           string
		)
		if err := rows.Scan(&n.Name, &parent, &n.Depth, &status, &reason, &n.Location, &n.Entities,
			&docType, &version); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		kind, ok := domain.ParseStatusKind(status)
		if !ok {
			return nil, fmt.Errorf("node %s: unknown status %q", n.Name, status)
		}
		n.Status = kind
		n.Parent = parent.String
		n.Reason = reason.String
		n.DocumentType = docType.String
		n.Version = version.String
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *runStore) linkages(ctx context.Context, id string) ([]domain.LinkageRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT master_model, master_id, detail_model, detail_id,
		       representation_name, product_name, product_id
		FROM run_linkages WHERE run_id = ?
		ORDER BY master_model, master_id, detail_model, detail_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("listing linkages: %w", err)
	}
	defer rows.Close()

	var linkages []domain.LinkageRecord
	for rows.Next() {
		var l domain.LinkageRecord
		if err := rows.Scan(&l.Master.Model, &l.Master.ID, &l.Detail.Model, &l.Detail.ID,
			&l.Key.RepresentationName, &l.Key.ProductName, &l.Key.ProductID); err != nil {
			return nil, fmt.Errorf("scanning linkage: %w", err)
		}
		linkages = append(linkages, l)
	}
	return linkages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var (
		run               domain.Run
		started, finished string
	)
	if err := row.Scan(&run.ID, &run.Root, &started, &finished); err != nil {
		return nil, err
	}
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	return &run, nil
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
