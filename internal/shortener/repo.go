package shortener

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for links and their visit
// events. Implementations enforce slug uniqueness at the storage boundary
// (a unique violation on insert or slug update surfaces as Conflict) and
// apply visit tracking as a single atomic unit.
type Repository interface {
	// CreateLink inserts a new link. Conflict if the slug is taken.
	CreateLink(ctx context.Context, link Link) (Link, error)

	// ListLinks returns all links, or only those with the given owner tag
	// when owner is non-empty. Order is unspecified.
	ListLinks(ctx context.Context, owner string) ([]Link, error)

	// GetLinkBySlug returns the link with the given slug. NotFound if absent.
	GetLinkBySlug(ctx context.Context, slug string) (Link, error)

	// GetLinkByID returns the link with the given id. NotFound if absent.
	GetLinkByID(ctx context.Context, id uuid.UUID) (Link, error)

	// UpdateSlug changes a link's slug. NotFound if the id is unknown;
	// Conflict if the new slug belongs to a different link.
	UpdateSlug(ctx context.Context, id uuid.UUID, newSlug string) (Link, error)

	// DeleteLink removes a link and, through the store's cascade, all of its
	// visit events. NotFound if the id is unknown.
	DeleteLink(ctx context.Context, id uuid.UUID) error

	// ResolveAndTrack bumps the link's visit count by exactly one and appends
	// exactly one visit event, atomically, returning the updated link.
	// NotFound if the slug is unknown.
	ResolveAndTrack(ctx context.Context, slug string) (Link, error)

	// ListVisits returns the link's visit events ascending by visit time.
	// NotFound if the link id is unknown.
	ListVisits(ctx context.Context, linkID uuid.UUID) ([]Visit, error)
}
