// Package repo provides the Postgres implementation of the programs store
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	perrs "bangcheong/internal/platform/errors"
	"bangcheong/internal/platform/store"
	"bangcheong/internal/services/programs/domain"
)

// Repo is the programs persistence surface
type Repo interface {
	domain.StorePort
}

// PG is the Postgres implementation
type PG struct {
	q store.RowQuerier
}

// NewPG binds the repo to a sql seam
func NewPG(q store.RowQuerier) *PG { return &PG{q: q} }

const columns = `id, title, broadcaster, category, record_date, apply_start_date, apply_end_date, link, image_url, extra_data, is_manual, created_at, updated_at`

// ListAll returns every program ordered deterministically. The crawl run
// reconciles against this snapshot, so iteration order doubles as the
// match tie-break order
func (r *PG) ListAll(ctx context.Context) ([]domain.Program, error) {
	const sql = `
		SELECT ` + columns + `
		FROM programs
		ORDER BY created_at, id
	`
	rows, err := r.q.Query(ctx, sql)
	if err != nil {
		return nil, perrs.FromPG(err, "programs.ListAll")
	}
	defer rows.Close()

	var out []domain.Program
	for rows.Next() {
		var p domain.Program
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Broadcaster, &p.Category,
			&p.RecordDate, &p.ApplyStart, &p.ApplyEnd,
			&p.Link, &p.ImageURL, &p.ExtraData, &p.ManualLock,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, perrs.FromPG(err, "programs.ListAll")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, perrs.FromPG(err, "programs.ListAll")
	}
	return out, nil
}

// Create inserts a first sighting and returns the generated id
func (r *PG) Create(ctx context.Context, p domain.NewProgram) (uuid.UUID, error) {
	const sql = `
		INSERT INTO programs (
			id, title, broadcaster, category,
			record_date, apply_start_date, apply_end_date,
			link, image_url, extra_data, is_manual,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, FALSE,
			NOW(), NOW()
		)
	`
	id := uuid.New()
	if _, err := r.q.Exec(ctx, sql,
		id, p.Title, p.Broadcaster, p.Category,
		p.RecordDate, p.ApplyStart, p.ApplyEnd,
		p.Link, p.ImageURL, p.ExtraData,
	); err != nil {
		return uuid.Nil, perrs.FromPG(err, "programs.Create")
	}
	return id, nil
}

// Update applies a partial mutation. An empty update is a no-op
func (r *PG) Update(ctx context.Context, id uuid.UUID, u domain.Update) error {
	if u.Empty() {
		return nil
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.RecordDate != nil {
		add("record_date", *u.RecordDate)
	}
	if u.ApplyEnd != nil {
		add("apply_end_date", *u.ApplyEnd)
	}
	if u.Link != nil {
		add("link", *u.Link)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if u.ExtraData != nil {
		add("extra_data", *u.ExtraData)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	sql := fmt.Sprintf(
		`UPDATE programs SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return perrs.FromPG(err, "programs.Update")
	}
	if tag.RowsAffected() == 0 {
		return perrs.NotFoundf("program %s not found", id)
	}
	return nil
}
