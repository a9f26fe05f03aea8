package shortener

import (
	"time"

	"github.com/google/uuid"
)

// Link is a stored short link. Slug is the only mutable field besides the
// denormalized VisitCount; UpdatedAt moves whenever either changes.
type Link struct {
	ID          uuid.UUID
	OriginalURL string
	Slug        string

	// Owner is an unauthenticated, caller-supplied tag set at creation and
	// immutable afterwards. It only scopes which caller may later mutate or
	// delete the link; it is not a verified identity and not a security
	// boundary. Empty means the link is unowned.
	Owner string

	// VisitCount caches the number of visit events for this link. The store
	// keeps it in step with the event log inside the tracking transaction.
	VisitCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Visit is one immutable record of a slug resolution. Visits are never
// mutated and only disappear when their link is deleted.
type Visit struct {
	ID        uuid.UUID
	LinkID    uuid.UUID
	VisitedAt time.Time
}
