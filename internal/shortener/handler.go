package shortener

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/linksmith/linksmith/internal/errx"
	"github.com/linksmith/linksmith/internal/httpx"
)

// CreateLinkHTTPRequest is the JSON body for creating a link.
type CreateLinkHTTPRequest struct {
	URL        string `json:"url"`
	CustomSlug string `json:"custom_slug,omitempty"`
	Owner      string `json:"owner,omitempty"`
}

// UpdateLinkHTTPRequest is the JSON body for changing a link's slug.
type UpdateLinkHTTPRequest struct {
	Slug string `json:"slug"`
}

// LinkResponse is the JSON form of a link.
type LinkResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	OriginalURL string `json:"original_url"`
	Owner       string `json:"owner,omitempty"`
	VisitCount  int64  `json:"visit_count"`
	ShortURL    string `json:"short_url"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// VisitsResponse is the JSON form of a link's visit history.
type VisitsResponse struct {
	LinkID string   `json:"link_id"`
	Visits []string `json:"visits"`
}

// Handler provides HTTP handlers for the shortener service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // base for display short URLs (e.g. "https://lnk.example")
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: cfg.BaseURL,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func (h *Handler) toResponse(link Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID.String(),
		Slug:        link.Slug,
		OriginalURL: link.OriginalURL,
		Owner:       link.Owner,
		VisitCount:  link.VisitCount,
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, link.Slug),
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   link.UpdatedAt.Format(time.RFC3339),
	}
}

// writeServiceError maps a service failure onto the wire via its error kind.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind.String(),
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.NotFound:
		logger.WarnContext(ctx, "link not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found", "short link doesn't exist", nil)

	case errx.Conflict:
		logger.WarnContext(ctx, "slug conflict", logAttrs...)
		httpx.WriteError(w, http.StatusConflict, "conflict",
			"This slug is already in use",
			map[string]string{
				"hint": "Try a different custom slug or let us generate one for you",
			})

	case errx.Invalid:
		logger.WarnContext(ctx, "invalid request", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	case errx.Exhausted:
		logger.ErrorContext(ctx, "slug allocation exhausted", logAttrs...)
		httpx.WriteError(w, http.StatusServiceUnavailable, "allocation_exhausted",
			"Could not allocate a free slug. Please retry.", nil)

	case errx.Unavailable:
		logger.ErrorContext(ctx, "service unavailable", logAttrs...)
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable",
			"Unable to complete the request at this time. Please try again.", nil)

	default:
		logger.ErrorContext(ctx, "unexpected error", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to complete the request at this time. Please try again.", nil)
	}
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[CreateLinkHTTPRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		OriginalURL: req.URL,
		CustomSlug:  req.CustomSlug,
		Owner:       req.Owner,
	})
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"slug", link.Slug,
		"custom_slug", req.CustomSlug != "",
		"owned", link.Owner != "",
	)

	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(link))
}

// ListLinks handles GET /api/links. The optional owner query parameter
// narrows the result to one owner tag.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	owner := r.URL.Query().Get("owner")

	links, err := h.service.List(ctx, owner)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, h.toResponse(link))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// GetLink handles GET /api/links/{slug}. No visit is recorded.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	slug := r.PathValue("slug")
	if err := validateSlugFormat(slug); err != nil {
		logger.WarnContext(ctx, "invalid slug format", "slug", slug, "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_slug", err.Error(), nil)
		return
	}

	link, err := h.service.GetBySlug(ctx, slug)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.toResponse(link))
}

// UpdateLink handles PUT /api/links/{id}. The caller's owner claim comes from
// the owner query parameter; a mismatch reads as NotFound.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r, logger)
	if !ok {
		return
	}

	req, err := httpx.DecodeJSON[UpdateLinkHTTPRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.service.UpdateSlug(ctx, id, req.Slug, r.URL.Query().Get("owner"))
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "slug updated",
		"link_id", link.ID.String(),
		"slug", link.Slug,
	)

	httpx.WriteJSON(w, http.StatusOK, h.toResponse(link))
}

// DeleteLink handles DELETE /api/links/{id}. Visit events cascade away with
// the link.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r, logger)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id, r.URL.Query().Get("owner")); err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link deleted", "link_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ListVisits handles GET /api/links/{id}/visits.
func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.pathID(w, r, logger)
	if !ok {
		return
	}

	visits, err := h.service.Visits(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	resp := VisitsResponse{
		LinkID: id.String(),
		Visits: make([]string, 0, len(visits)),
	}
	for _, v := range visits {
		resp.Visits = append(resp.Visits, v.VisitedAt.Format(time.RFC3339Nano))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// ResolveLink handles GET /{slug}: records the visit and redirects to the
// original URL.
func (h *Handler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	slug := r.PathValue("slug")
	if err := validateSlugFormat(slug); err != nil {
		logger.WarnContext(ctx, "invalid slug format", "slug", slug, "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_slug", err.Error(), nil)
		return
	}

	originalURL, err := h.service.Resolve(ctx, slug)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "slug resolved",
		"slug", slug,
		"original_url", originalURL,
		"user_agent", r.UserAgent(),
		"referer", r.Referer(),
	)

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// pathID parses the {id} path segment, writing the error response itself on
// failure. An unparsable id reads as NotFound: ids are opaque, so a malformed
// one simply names no link.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.WarnContext(r.Context(), "unparsable link id", "id", raw)
		httpx.WriteError(w, http.StatusNotFound, "not_found", "short link doesn't exist", nil)
		return uuid.Nil, false
	}
	return id, true
}

// validateSlugFormat is a lightweight slug check for the HTTP layer before
// the service sees the value.
func validateSlugFormat(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("invalid link")
	}
	return nil
}
