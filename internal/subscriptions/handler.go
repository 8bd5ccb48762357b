package subscriptions

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/platform/httpx"
	"github.com/inkwell-press/inkwell/internal/shared"
)

type Handler struct {
	logger        *slog.Logger
	service       *Service
	validator     *validator.Validate
	webhookSecret string
}

func NewHandler(logger *slog.Logger, service *Service, webhookSecret string) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		validator:     validator.New(),
		webhookSecret: webhookSecret,
	}
}

// MountRoutes registers authenticated subscription routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/{id}", h.cancel)
}

// MountWebhookRoutes registers provider callbacks. These sit outside the
// JWT middleware and authenticate with a shared secret header instead.
func (h *Handler) MountWebhookRoutes(r chi.Router) {
	r.Post("/payment", h.paymentWebhook)
}

type createRequest struct {
	Plan string `json:"plan" validate:"required,oneof=basic standard premium"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	now := time.Now().UTC()
	sub, err := h.service.Create(r.Context(), SubscriptionInput{
		UserID:      identity.UserID,
		Plan:        req.Plan,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 1, 0),
	})
	if err != nil {
		h.logger.Error("create subscription", slog.Int64("user_id", identity.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	subs, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subs)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid subscription ID")
		return
	}
	sub, err := h.service.Cancel(r.Context(), id, identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

type paymentWebhookRequest struct {
	UserID    int64  `json:"userId" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Reference string `json:"reference" validate:"required"`
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook secret")
		return
	}

	var req paymentWebhookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a positive decimal")
		return
	}

	err = h.service.HandlePaymentCompleted(r.Context(), PaymentEvent{
		UserID:    req.UserID,
		Amount:    amount,
		Reference: req.Reference,
	})
	if err != nil {
		h.logger.Error("payment webhook", slog.String("reference", req.Reference), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
