package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"go.uber.org/zap"
)

// Repository persists cases in SQLite. Listing order is creation order.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewRepository creates a repository over an already migrated database.
func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Create stores a new case and assigns its id and creation time.
func (r *Repository) Create(ctx context.Context, name string, inputs scenario.Input, results []metrics.RawRow) (*Case, error) {
	c := &Case{
		ID:      r.newID(),
		Name:    name,
		Created: r.now(),
		Inputs:  inputs.Clone(),
		Results: nonNilResults(results),
	}

	inputsJSON, resultsJSON, err := encodePayload(c.Inputs, c.Results)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cases (id, name, created, inputs, results) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Created.Format(time.RFC3339Nano), inputsJSON, resultsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert case: %w", err)
	}

	r.logger.Info("case created",
		zap.String("op", "cases.Create"),
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.Int("results", len(c.Results)),
	)
	return c, nil
}

// List returns every case summary in creation order.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created FROM cases ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		var created string
		if err := rows.Scan(&s.ID, &s.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan case summary: %w", err)
		}
		if s.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("invalid created time for case %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}
	return summaries, nil
}

// Get returns the full case, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*Case, error) {
	var (
		c           Case
		created     string
		updated     sql.NullString
		inputsJSON  string
		resultsJSON string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created, updated, inputs, results FROM cases WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &created, &updated, &inputsJSON, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read case %s: %w", id, err)
	}

	if c.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("invalid created time for case %s: %w", id, err)
	}
	if updated.Valid {
		t, err := time.Parse(time.RFC3339Nano, updated.String)
		if err != nil {
			return nil, fmt.Errorf("invalid updated time for case %s: %w", id, err)
		}
		c.Updated = &t
	}
	if err := json.Unmarshal([]byte(inputsJSON), &c.Inputs); err != nil {
		return nil, fmt.Errorf("failed to decode inputs of case %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &c.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results of case %s: %w", id, err)
	}
	c.Results = nonNilResults(c.Results)

	return &c, nil
}

// Update replaces the inputs and results of an existing case. The id and
// creation time never change.
func (r *Repository) Update(ctx context.Context, id string, inputs scenario.Input, results []metrics.RawRow) (*Case, error) {
	inputsJSON, resultsJSON, err := encodePayload(inputs, nonNilResults(results))
	if err != nil {
		return nil, err
	}

	updated := r.now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE cases SET inputs = ?, results = ?, updated = ? WHERE id = ?`,
		inputsJSON, resultsJSON, updated.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update case %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	r.logger.Info("case updated",
		zap.String("op", "cases.Update"),
		zap.String("id", id),
	)
	return r.Get(ctx, id)
}

// Delete removes a case, or returns ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	r.logger.Info("case deleted",
		zap.String("op", "cases.Delete"),
		zap.String("id", id),
	)
	return nil
}

// Clear removes every case.
func (r *Repository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases`)
	if err != nil {
		return fmt.Errorf("failed to clear cases: %w", err)
	}
	removed, _ := res.RowsAffected()
	r.logger.Info("cases cleared",
		zap.String("op", "cases.Clear"),
		zap.Int64("removed", removed),
	)
	return nil
}

// All returns every full case in creation order.
func (r *Repository) All(ctx context.Context) ([]Case, error) {
	summaries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]Case, 0, len(summaries))
	for _, s := range summaries {
		c, err := r.Get(ctx, s.ID)
		if errors.Is(err, ErrNotFound) {
			// Deleted between the listing and the read.
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, *c)
	}
	return all, nil
}

func encodePayload(inputs scenario.Input, results []metrics.RawRow) (string, string, error) {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode inputs: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(inputsJSON), string(resultsJSON), nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNilResults(results []metrics.RawRow) []metrics.RawRow {
	if results == nil {
		return []metrics.RawRow{}
	}
	return results
}
