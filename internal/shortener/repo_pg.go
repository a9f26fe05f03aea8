package shortener

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linksmith/linksmith/internal/errx"
	"github.com/linksmith/linksmith/internal/idgen"
)

const linkColumns = "id, original_url, slug, owner_tag, visit_count, created_at, updated_at"

type pgRepo struct {
	pool *pgxpool.Pool
	ids  idgen.Generator
}

// RepositoryConfig holds configuration for the repository.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	// Default: UUID v7 for index locality, one retry on entropy failure.
	ids := config.IDGenerator
	if ids == nil {
		ids = idgen.NewV7(1)
	}

	return &pgRepo{pool: pool, ids: ids}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (Link, error) {
	var l Link
	err := row.Scan(&l.ID, &l.OriginalURL, &l.Slug, &l.Owner, &l.VisitCount, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isSlugUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *pgRepo) CreateLink(ctx context.Context, link Link) (Link, error) {
	const op = "shortener.repo.CreateLink"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		link.ID = id
	}

	// No availability pre-check: the links_slug_unique constraint is the
	// authoritative guard, and its violation is the conflict signal.
	row := r.pool.QueryRow(ctx,
		`INSERT INTO links (id, original_url, slug, owner_tag)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+linkColumns,
		link.ID, link.OriginalURL, link.Slug, link.Owner,
	)

	created, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *pgRepo) ListLinks(ctx context.Context, owner string) ([]Link, error) {
	const op = "shortener.repo.ListLinks"

	query := `SELECT ` + linkColumns + ` FROM links`
	args := []any{}
	if owner != "" {
		query += ` WHERE owner_tag = $1`
		args = append(args, owner)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	links := make([]Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return links, nil
}

func (r *pgRepo) GetLinkBySlug(ctx context.Context, slug string) (Link, error) {
	const op = "shortener.repo.GetLinkBySlug"

	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE slug = $1`, slug)

	link, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return link, nil
}

func (r *pgRepo) GetLinkByID(ctx context.Context, id uuid.UUID) (Link, error) {
	const op = "shortener.repo.GetLinkByID"

	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE id = $1`, id)

	link, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return link, nil
}

func (r *pgRepo) UpdateSlug(ctx context.Context, id uuid.UUID, newSlug string) (Link, error) {
	const op = "shortener.repo.UpdateSlug"

	row := r.pool.QueryRow(ctx,
		`UPDATE links
		 SET slug = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+linkColumns,
		id, newSlug,
	)

	link, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return link, nil
}

func (r *pgRepo) DeleteLink(ctx context.Context, id uuid.UUID) error {
	const op = "shortener.repo.DeleteLink"

	// visit_events rows go with the link via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return mapRepoError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return errx.E(op, errx.NotFound, pgx.ErrNoRows)
	}
	return nil
}

func (r *pgRepo) ResolveAndTrack(ctx context.Context, slug string) (Link, error) {
	const op = "shortener.repo.ResolveAndTrack"

	visitID, err := r.ids.Generate()
	if err != nil {
		return Link{}, errx.E(op, errx.Unavailable, err)
	}

	// Counter bump and event append commit together or not at all. The
	// in-place increment keeps concurrent resolves from losing updates;
	// there is no read-modify-write of visit_count anywhere.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Link{}, errx.E(op, errx.Unavailable, err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE links
		 SET visit_count = visit_count + 1, updated_at = now()
		 WHERE slug = $1
		 RETURNING `+linkColumns,
		slug,
	)

	link, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO visit_events (id, link_id) VALUES ($1, $2)`,
		visitID, link.ID,
	); err != nil {
		return Link{}, mapRepoError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Link{}, errx.E(op, errx.Unavailable, err)
	}
	return link, nil
}

func (r *pgRepo) ListVisits(ctx context.Context, linkID uuid.UUID) ([]Visit, error) {
	const op = "shortener.repo.ListVisits"

	// Distinguish "no visits yet" from "no such link".
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM links WHERE id = $1)`, linkID).Scan(&exists)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	if !exists {
		return nil, errx.E(op, errx.NotFound, pgx.ErrNoRows)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, link_id, visited_at FROM visit_events
		 WHERE link_id = $1
		 ORDER BY visited_at ASC, id ASC`,
		linkID,
	)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	visits := make([]Visit, 0)
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.LinkID, &v.VisitedAt); err != nil {
			return nil, mapRepoError(op, err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return visits, nil
}
