package finance

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/bank"
	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/partner"
	"github.com/estate/backend/internal/domain/shared"
)

// In-memory repository fakes for service tests.

type fakeEntryRepo struct {
	entries map[uuid.UUID]*ledger.LedgerEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]*ledger.LedgerEntry)}
}

func (r *fakeEntryRepo) Save(ctx context.Context, e *ledger.LedgerEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *fakeEntryRepo) SaveWithLock(ctx context.Context, e *ledger.LedgerEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *fakeEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeEntryRepo) FindByAccount(ctx context.Context, account ledger.Account) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if e.Account == account {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeEntryRepo) FindByRef(ctx context.Context, refID uuid.UUID, refType ledger.RefType) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if e.RefID == refID && e.RefType == refType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindUnreconciled(ctx context.Context, from, to time.Time) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if !e.Reconciled && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeEntryRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if !from.IsZero() && e.EntryDate.Before(from) {
			continue
		}
		if !to.IsZero() && e.EntryDate.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeEntryRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ledger.LedgerEntry], error) {
	return shared.Paginated[*ledger.LedgerEntry]{}, nil
}

func (r *fakeEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

type fakePlanRepo struct {
	plans map[uuid.UUID]*installment.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uuid.UUID]*installment.Plan)}
}

func (r *fakePlanRepo) Save(ctx context.Context, p *installment.Plan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *fakePlanRepo) SaveWithLock(ctx context.Context, p *installment.Plan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *fakePlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*installment.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*installment.Plan, error) {
	var out []*installment.Plan
	for _, p := range r.plans {
		if p.BuyerID == buyerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) FindByPlot(ctx context.Context, plotID uuid.UUID) (*installment.Plan, error) {
	for _, p := range r.plans {
		if p.PlotID == plotID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePlanRepo) FindActive(ctx context.Context) ([]*installment.Plan, error) {
	var out []*installment.Plan
	for _, p := range r.plans {
		if p.Status == installment.PlanStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*installment.Plan], error) {
	return shared.Paginated[*installment.Plan]{}, nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.plans, id)
	return nil
}

type fakeRuleRepo struct {
	rules map[uuid.UUID]*commission.Rule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[uuid.UUID]*commission.Rule)}
}

func (r *fakeRuleRepo) Save(ctx context.Context, rule *commission.Rule) error {
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*commission.Rule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rule, nil
}

func (r *fakeRuleRepo) FindCandidates(ctx context.Context, projectID uuid.UUID) ([]*commission.Rule, error) {
	var out []*commission.Rule
	for _, rule := range r.rules {
		if rule.Active && (rule.ProjectID == nil || *rule.ProjectID == projectID) {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*commission.Rule], error) {
	return shared.Paginated[*commission.Rule]{}, nil
}

func (r *fakeRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.rules, id)
	return nil
}

type fakeCommissionRepo struct {
	commissions map[uuid.UUID]*commission.Commission
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{commissions: make(map[uuid.UUID]*commission.Commission)}
}

func (r *fakeCommissionRepo) Save(ctx context.Context, c *commission.Commission) error {
	r.commissions[c.ID] = c
	return nil
}

func (r *fakeCommissionRepo) SaveWithLock(ctx context.Context, c *commission.Commission) error {
	r.commissions[c.ID] = c
	return nil
}

func (r *fakeCommissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*commission.Commission, error) {
	c, ok := r.commissions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *fakeCommissionRepo) FindByAgent(ctx context.Context, agentID uuid.UUID) ([]*commission.Commission, error) {
	var out []*commission.Commission
	for _, c := range r.commissions {
		if c.AgentID == agentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommissionRepo) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*commission.Commission, error) {
	var out []*commission.Commission
	for _, c := range r.commissions {
		if c.PlotID == plotID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommissionRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*commission.Commission], error) {
	return shared.Paginated[*commission.Commission]{}, nil
}

func (r *fakeCommissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.commissions, id)
	return nil
}

type fakePartnerRepo struct {
	partners map[uuid.UUID]*partner.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[uuid.UUID]*partner.Partner)}
}

func (r *fakePartnerRepo) Save(ctx context.Context, p *partner.Partner) error {
	r.partners[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) SaveWithLock(ctx context.Context, p *partner.Partner) error {
	r.partners[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	p, ok := r.partners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePartnerRepo) FindAll(ctx context.Context) ([]*partner.Partner, error) {
	out := make([]*partner.Partner, 0, len(r.partners))
	for _, p := range r.partners {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePartnerRepo) FindActive(ctx context.Context) ([]*partner.Partner, error) {
	var out []*partner.Partner
	for _, p := range r.partners {
		if p.Status == partner.StatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePartnerRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*partner.Partner], error) {
	return shared.Paginated[*partner.Partner]{}, nil
}

func (r *fakePartnerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.partners, id)
	return nil
}

type fakeBankRepo struct {
	accounts map[uuid.UUID]*bank.Account
}

func newFakeBankRepo() *fakeBankRepo {
	return &fakeBankRepo{accounts: make(map[uuid.UUID]*bank.Account)}
}

func (r *fakeBankRepo) Save(ctx context.Context, a *bank.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeBankRepo) SaveWithLock(ctx context.Context, a *bank.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeBankRepo) FindByID(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *fakeBankRepo) FindByAccountNo(ctx context.Context, accountNo string) (*bank.Account, error) {
	for _, a := range r.accounts {
		if a.AccountNo == accountNo {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBankRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*bank.Account], error) {
	return shared.Paginated[*bank.Account]{}, nil
}

func (r *fakeBankRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.accounts, id)
	return nil
}

type fakeEventBus struct {
	published []shared.DomainEvent
}

func (b *fakeEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.published = append(b.published, events...)
	return nil
}
