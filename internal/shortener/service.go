package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/linksmith/linksmith/internal/errx"
	"github.com/linksmith/linksmith/sluggen"
)

const (
	DefaultSlugLength     = 6
	MaxSlugLength         = 64
	MaxURLLength          = 2048
	DefaultSlugMaxRetries = 5
)

// CreateLinkRequest represents the parameters for creating a new link.
type CreateLinkRequest struct {
	OriginalURL string
	CustomSlug  string // optional: if empty, a slug is generated
	Owner       string // optional weak-trust owner tag
}

// Service defines the business logic operations for the shortener core.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	List(ctx context.Context, owner string) ([]Link, error)
	GetBySlug(ctx context.Context, slug string) (Link, error)
	Resolve(ctx context.Context, slug string) (string, error)
	UpdateSlug(ctx context.Context, id uuid.UUID, newSlug, callerOwner string) (Link, error)
	Delete(ctx context.Context, id uuid.UUID, callerOwner string) error
	Visits(ctx context.Context, id uuid.UUID) ([]Visit, error)
}

// Cache is an optional read-through cache for link lookups by slug.
// Implementations treat failures as misses; the store stays authoritative.
type Cache interface {
	GetLink(ctx context.Context, slug string) (Link, bool)
	SetLink(ctx context.Context, link Link)
	Invalidate(ctx context.Context, slugs ...string)
}

type service struct {
	repo           Repository
	cache          Cache // nil when caching is disabled
	slugGenerator  sluggen.Generator
	slugLength     int
	slugMaxRetries int
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	SlugGenerator  sluggen.Generator
	SlugLength     int
	SlugMaxRetries int // attempts when generating a unique slug (default: 5)
	Cache          Cache
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	slugGen := config.SlugGenerator
	if slugGen == nil {
		slugGen = sluggen.NewAlphanumeric()
	}

	slugLength := config.SlugLength
	if slugLength <= 0 || slugLength > MaxSlugLength {
		slugLength = DefaultSlugLength
	}

	retries := config.SlugMaxRetries
	if retries <= 0 {
		retries = DefaultSlugMaxRetries
	}

	return &service{
		repo:           repo,
		cache:          config.Cache,
		slugGenerator:  slugGen,
		slugLength:     slugLength,
		slugMaxRetries: retries,
	}
}

// Create creates a new short link with an optional custom slug and owner tag.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (Link, error) {
	const op = "shortener.service.Create"

	if err := validateURL(req.OriginalURL); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	// Custom slug path: validate and attempt the insert once. The store's
	// unique constraint decides availability; no pre-check.
	if req.CustomSlug != "" {
		if err := validateSlug(req.CustomSlug); err != nil {
			return Link{}, errx.E(op, errx.Invalid, err)
		}

		created, err := s.repo.CreateLink(ctx, Link{
			OriginalURL: req.OriginalURL,
			Slug:        req.CustomSlug,
			Owner:       req.Owner,
		})
		if err != nil {
			return Link{}, errx.E(op, errx.KindOf(err), err)
		}
		s.cacheSet(ctx, created)
		return created, nil
	}

	// Generated slug path: fresh candidate per attempt, bounded retries.
	for range s.slugMaxRetries {
		slug, err := s.slugGenerator.Generate(s.slugLength)
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}

		created, err := s.repo.CreateLink(ctx, Link{
			OriginalURL: req.OriginalURL,
			Slug:        slug,
			Owner:       req.Owner,
		})
		if err == nil {
			s.cacheSet(ctx, created)
			return created, nil
		}

		// Retry on collision, fail on anything else.
		if errx.KindOf(err) != errx.Conflict {
			return Link{}, errx.E(op, errx.KindOf(err), err)
		}
	}

	return Link{}, errx.Errorf(op, errx.Exhausted,
		"no free slug found in %d attempts", s.slugMaxRetries)
}

// List returns all links, or only the given owner's when owner is non-empty.
func (s *service) List(ctx context.Context, owner string) ([]Link, error) {
	const op = "shortener.service.List"

	links, err := s.repo.ListLinks(ctx, owner)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return links, nil
}

// GetBySlug returns link details without recording a visit.
func (s *service) GetBySlug(ctx context.Context, slug string) (Link, error) {
	const op = "shortener.service.GetBySlug"

	if slug == "" {
		return Link{}, errx.Errorf(op, errx.Invalid, "slug cannot be empty")
	}

	if s.cache != nil {
		if link, ok := s.cache.GetLink(ctx, slug); ok {
			return link, nil
		}
	}

	link, err := s.repo.GetLinkBySlug(ctx, slug)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	s.cacheSet(ctx, link)
	return link, nil
}

// Resolve records a visit and returns the original URL. It always goes to the
// store: the counter bump and event append are transactional there, so the
// cache cannot serve this path.
func (s *service) Resolve(ctx context.Context, slug string) (string, error) {
	const op = "shortener.service.Resolve"

	if slug == "" {
		return "", errx.Errorf(op, errx.Invalid, "slug cannot be empty")
	}

	link, err := s.repo.ResolveAndTrack(ctx, slug)
	if err != nil {
		return "", errx.E(op, errx.KindOf(err), err)
	}
	s.cacheSet(ctx, link)
	return link.OriginalURL, nil
}

// UpdateSlug changes a link's slug after the ownership check. A denied caller
// gets NotFound, same as an unknown id. Updating to the current slug is a
// successful no-op.
func (s *service) UpdateSlug(ctx context.Context, id uuid.UUID, newSlug, callerOwner string) (Link, error) {
	const op = "shortener.service.UpdateSlug"

	if err := validateSlug(newSlug); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	if !ownerMayModify(link.Owner, callerOwner) {
		return Link{}, errx.Errorf(op, errx.NotFound, "link %s not found for this owner", id)
	}

	if newSlug == link.Slug {
		return link, nil
	}

	updated, err := s.repo.UpdateSlug(ctx, id, newSlug)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}

	s.cacheInvalidate(ctx, link.Slug, updated.Slug)
	return updated, nil
}

// Delete removes a link and all its visit events after the ownership check.
func (s *service) Delete(ctx context.Context, id uuid.UUID, callerOwner string) error {
	const op = "shortener.service.Delete"

	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	if !ownerMayModify(link.Owner, callerOwner) {
		return errx.Errorf(op, errx.NotFound, "link %s not found for this owner", id)
	}

	if err := s.repo.DeleteLink(ctx, id); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}

	s.cacheInvalidate(ctx, link.Slug)
	return nil
}

// Visits returns a link's visit history, oldest first.
func (s *service) Visits(ctx context.Context, id uuid.UUID) ([]Visit, error) {
	const op = "shortener.service.Visits"

	visits, err := s.repo.ListVisits(ctx, id)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return visits, nil
}

func (s *service) cacheSet(ctx context.Context, link Link) {
	if s.cache != nil {
		s.cache.SetLink(ctx, link)
	}
}

func (s *service) cacheInvalidate(ctx context.Context, slugs ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, slugs...)
	}
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("url too long (max %d characters)", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}

func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return errors.New("slug cannot be empty")
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug too long (maximum %d characters)", MaxSlugLength)
	}

	for _, char := range slug {
		if !isValidSlugChar(char) {
			return errors.New("slug contains invalid characters (only alphanumeric, dash, and underscore allowed)")
		}
	}
	return nil
}

func isValidSlugChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
