package articles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-press/inkwell/internal/platform/httpx"
	"github.com/inkwell-press/inkwell/internal/shared"
)

// Handler wires the article JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers read-only article routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

// MountAuthorRoutes registers routes for authors and admins.
func (h *Handler) MountAuthorRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type articleRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Body      string `json:"body"`
	Premium   bool   `json:"premium"`
	Published bool   `json:"published"`
}

func articleID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.List(r.Context(), shared.IdentityFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, articles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := articleID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid article ID")
		return
	}
	article, err := h.service.Get(r.Context(), id, shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}

	var req articleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	article, err := h.service.Create(r.Context(), identity.UserID, ArticleInput{
		Title: req.Title, Body: req.Body, Premium: req.Premium, Published: req.Published,
	})
	if err != nil {
		h.logger.Error("create article", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, article)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := articleID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid article ID")
		return
	}

	var req articleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	article, err := h.service.Update(r.Context(), id, ArticleInput{
		Title: req.Title, Body: req.Body, Premium: req.Premium, Published: req.Published,
	}, shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := articleID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid article ID")
		return
	}
	if err := h.service.Delete(r.Context(), id, shared.IdentityFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
