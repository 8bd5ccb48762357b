package affiliate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/platform/httpx"
	"github.com/inkwell-press/inkwell/internal/shared"
)

// DistributionEnqueuer hands a distribution request off to the background
// worker.
type DistributionEnqueuer interface {
	EnqueueCommissionDistribution(ctx context.Context, payerID int64, amount decimal.Decimal, reference string) error
}

// Handler wires the affiliate JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	enqueuer  DistributionEnqueuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. enqueuer may be nil, in which case
// admin-triggered distributions run synchronously.
func NewHandler(logger *slog.Logger, service *Service, enqueuer DistributionEnqueuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		enqueuer:  enqueuer,
		validator: validator.New(),
	}
}

// MountRoutes registers affiliate routes available to any authenticated user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", h.getStats)
	r.Get("/tree", h.getTree)
	r.Post("/commission/preview", h.previewCommission)
}

// MountAdminRoutes registers operator-only affiliate routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/commission/distribute", h.distributeCommission)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}

	stats, err := h.service.GetStats(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("affiliate stats", slog.Int64("user_id", identity.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}

	tree, err := h.service.GetReferralTree(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("referral tree", slog.Int64("user_id", identity.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}

type commissionRequest struct {
	PayerID int64  `json:"payerId" validate:"required,gt=0"`
	Amount  string `json:"amount" validate:"required"`
}

func (h *Handler) decodeCommissionRequest(w http.ResponseWriter, r *http.Request) (commissionRequest, decimal.Decimal, bool) {
	var req commissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return req, decimal.Zero, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, decimal.Zero, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a positive decimal")
		return req, decimal.Zero, false
	}
	return req, amount, true
}

// previewCommission returns the pure calculation without posting anything.
func (h *Handler) previewCommission(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := h.decodeCommissionRequest(w, r)
	if !ok {
		return
	}

	breakdown, err := h.service.PreviewCommission(r.Context(), req.PayerID, amount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"directCommission":   breakdown.Direct.String(),
		"indirectCommission": breakdown.Indirect.String(),
		"totalCommission":    breakdown.Total.String(),
	})
}

// distributeCommission triggers a distribution for a completed payment. The
// role guard restricting this to admins is installed by the router.
func (h *Handler) distributeCommission(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := h.decodeCommissionRequest(w, r)
	if !ok {
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueCommissionDistribution(r.Context(), req.PayerID, amount, "admin"); err != nil {
			h.logger.Error("enqueue distribution", slog.Int64("payer_id", req.PayerID), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	if err := h.service.Distribute(r.Context(), req.PayerID, amount); err != nil {
		h.logger.Error("distribute commission", slog.Int64("payer_id", req.PayerID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "distributed"})
}
