package affiliate

import "context"

// GraphPort exposes the reads needed to walk the referral forest.
type GraphPort interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	ListReferredBy(ctx context.Context, code string) ([]Account, error)
}

// Graph answers read-only questions about the referral forest. Traversal depth
// is hard-capped at two hops; deeper chains exist in the data but are never
// walked.
type Graph struct {
	dir GraphPort
}

// NewGraph builds a Graph instance.
func NewGraph(dir GraphPort) *Graph {
	return &Graph{dir: dir}
}

// DirectReferrals returns all accounts created under the given account's code,
// in signup order.
func (g *Graph) DirectReferrals(ctx context.Context, accountID int64) ([]Account, error) {
	account, err := g.dir.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return g.dir.ListReferredBy(ctx, account.ReferralCode)
}

// IndirectReferrals returns the union of the direct referrals of each direct
// referral. The forest invariant rules out overlap between branches, but the
// union is deduplicated anyway.
func (g *Graph) IndirectReferrals(ctx context.Context, accountID int64) ([]Account, error) {
	directs, err := g.DirectReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	var indirect []Account
	for _, d := range directs {
		children, err := g.dir.ListReferredBy(ctx, d.ReferralCode)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			indirect = append(indirect, child)
		}
	}
	return indirect, nil
}

// ReferralTree materialises the two-level view for display. Each branch nests
// its own direct referrals verbatim.
func (g *Graph) ReferralTree(ctx context.Context, accountID int64) (*Tree, error) {
	account, err := g.dir.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	directs, err := g.dir.ListReferredBy(ctx, account.ReferralCode)
	if err != nil {
		return nil, err
	}

	tree := &Tree{Account: *account, DirectReferrals: make([]TreeBranch, 0, len(directs))}
	for _, d := range directs {
		children, err := g.dir.ListReferredBy(ctx, d.ReferralCode)
		if err != nil {
			return nil, err
		}
		tree.DirectReferrals = append(tree.DirectReferrals, TreeBranch{
			Account:           d,
			IndirectReferrals: children,
		})
	}
	return tree, nil
}
