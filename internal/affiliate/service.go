package affiliate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Store combines the directory reads the service fans out over.
type Store interface {
	DirectoryPort
	GraphPort
}

// Service is the affiliate façade exposed to the HTTP layer and jobs.
type Service struct {
	dir         Store
	graph       *Graph
	calc        *Calculator
	ledger      *Ledger
	distributor *Distributor
	cache       *StatsCache
	logger      *slog.Logger
	frontendURL string
}

// ServiceConfig groups service construction parameters.
type ServiceConfig struct {
	FrontendURL string
}

// NewService builds the affiliate Service and its collaborators.
func NewService(dir Store, graph *Graph, calc *Calculator, ledger *Ledger, distributor *Distributor, cache *StatsCache, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:         dir,
		graph:       graph,
		calc:        calc,
		ledger:      ledger,
		distributor: distributor,
		cache:       cache,
		logger:      logger,
		frontendURL: cfg.FrontendURL,
	}
}

// GetStats returns the account summary, both referral sets, the current-tier
// rates and the shareable referral link. The view is cached briefly; the rates
// shown always come from the counter read at build time.
func (s *Service) GetStats(ctx context.Context, accountID int64) (*Stats, error) {
	return s.cache.FetchStats(ctx, accountID, func(ctx context.Context) (*Stats, error) {
		return s.buildStats(ctx, accountID)
	})
}

func (s *Service) buildStats(ctx context.Context, accountID int64) (*Stats, error) {
	account, err := s.dir.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var (
		directs   []Account
		indirects []Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		directs, err = s.graph.DirectReferrals(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		indirects, err = s.graph.IndirectReferrals(gctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	return &Stats{
		Account:             *account,
		DirectReferrals:     directs,
		IndirectReferrals:   indirects,
		DirectRatePercent:   DirectRate(account.DirectReferralCount).Mul(hundred),
		IndirectRatePercent: IndirectRate(account.DirectReferralCount).Mul(hundred),
		ReferralLink:        fmt.Sprintf("%s/register?ref=%s", s.frontendURL, account.ReferralCode),
	}, nil
}

// GetReferralTree returns the two-level referral view.
func (s *Service) GetReferralTree(ctx context.Context, accountID int64) (*Tree, error) {
	return s.graph.ReferralTree(ctx, accountID)
}

// PreviewCommission returns the pure commission calculation with no side
// effects.
func (s *Service) PreviewCommission(ctx context.Context, payerID int64, amount decimal.Decimal) (Breakdown, error) {
	return s.calc.Calculate(ctx, payerID, amount)
}

// Distribute runs the commission distribution for one completed payment and
// drops the stale cached stats of the rewarded referrers.
func (s *Service) Distribute(ctx context.Context, payerID int64, amount decimal.Decimal) error {
	err := s.distributor.Distribute(ctx, payerID, amount)
	s.invalidateChain(ctx, payerID)
	return err
}

// Settle moves the given amount from pending to total earnings for an
// account. Called by the payout process, never by distribution.
func (s *Service) Settle(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	account, err := s.ledger.Settle(ctx, accountID, amount)
	if err != nil {
		return nil, err
	}
	if cerr := s.cache.Invalidate(ctx, accountID); cerr != nil {
		s.logger.Warn("invalidate stats cache", slog.Int64("account_id", accountID), slog.Any("error", cerr))
	}
	return account, nil
}

// invalidateChain drops cached stats for the payer's referrer chain after a
// distribution touched their balances.
func (s *Service) invalidateChain(ctx context.Context, payerID int64) {
	payer, err := s.dir.FindByID(ctx, payerID)
	if err != nil || payer.ReferredBy == "" {
		return
	}
	var ids []int64
	if direct, err := s.dir.FindByReferralCode(ctx, payer.ReferredBy); err == nil {
		ids = append(ids, direct.ID)
		if direct.ReferredBy != "" {
			if indirect, err := s.dir.FindByReferralCode(ctx, direct.ReferredBy); err == nil {
				ids = append(ids, indirect.ID)
			}
		}
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("invalidate stats cache", slog.Any("error", err))
	}
}
