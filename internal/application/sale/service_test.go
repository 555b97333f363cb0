package sale

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/application/finance"
	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/property"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/estate/backend/internal/infrastructure/lock"
	"github.com/estate/backend/internal/infrastructure/notification"
)

// In-memory fakes. Each repo supports failure injection on Save so the
// compensation path can be driven from any step.

type fakePlotRepo struct {
	plots map[uuid.UUID]*property.Plot
}

func newFakePlotRepo() *fakePlotRepo {
	return &fakePlotRepo{plots: make(map[uuid.UUID]*property.Plot)}
}

func (r *fakePlotRepo) Save(ctx context.Context, p *property.Plot) error {
	r.plots[p.ID] = p
	return nil
}

func (r *fakePlotRepo) SaveWithLock(ctx context.Context, p *property.Plot) error {
	r.plots[p.ID] = p
	return nil
}

func (r *fakePlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*property.Plot, error) {
	p, ok := r.plots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePlotRepo) FindByProjectAndNo(ctx context.Context, projectID uuid.UUID, plotNo string) (*property.Plot, error) {
	for _, p := range r.plots {
		if p.ProjectID == projectID && p.PlotNo == plotNo {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePlotRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*property.Plot], error) {
	return shared.Paginated[*property.Plot]{}, nil
}

type fakePlanRepo struct {
	plans   map[uuid.UUID]*installment.Plan
	saveErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uuid.UUID]*installment.Plan)}
}

func (r *fakePlanRepo) Save(ctx context.Context, p *installment.Plan) error {
	if r.saveErr != nil {
		return r.saveErr
	}
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
	return nil, nil
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
	return nil, nil
}

func (r *fakePlanRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*installment.Plan], error) {
	return shared.Paginated[*installment.Plan]{}, nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.plans, id)
	return nil
}

type fakeCommissionRepo struct {
	commissions map[uuid.UUID]*commission.Commission
	saveErr     error
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{commissions: make(map[uuid.UUID]*commission.Commission)}
}

func (r *fakeCommissionRepo) Save(ctx context.Context, c *commission.Commission) error {
	if r.saveErr != nil {
		return r.saveErr
	}
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
	return nil, nil
}

func (r *fakeCommissionRepo) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*commission.Commission, error) {
	return nil, nil
}

func (r *fakeCommissionRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*commission.Commission], error) {
	return shared.Paginated[*commission.Commission]{}, nil
}

func (r *fakeCommissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.commissions, id)
	return nil
}

type fakeRuleRepo struct {
	rules []*commission.Rule
}

func (r *fakeRuleRepo) Save(ctx context.Context, rule *commission.Rule) error {
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*commission.Rule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, shared.ErrNotFound
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
	return nil
}

type fakeSellerPaymentRepo struct {
	payments map[uuid.UUID]*property.SellerPayment
	saveErr  error
}

func newFakeSellerPaymentRepo() *fakeSellerPaymentRepo {
	return &fakeSellerPaymentRepo{payments: make(map[uuid.UUID]*property.SellerPayment)}
}

func (r *fakeSellerPaymentRepo) Save(ctx context.Context, p *property.SellerPayment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.payments[p.ID] = p
	return nil
}

func (r *fakeSellerPaymentRepo) SaveWithLock(ctx context.Context, p *property.SellerPayment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *fakeSellerPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*property.SellerPayment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeSellerPaymentRepo) FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]*property.SellerPayment, error) {
	var out []*property.SellerPayment
	for _, p := range r.payments {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeSellerPaymentRepo) FindByPlot(ctx context.Context, plotID uuid.UUID) (*property.SellerPayment, error) {
	for _, p := range r.payments {
		if p.PlotID == plotID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSellerPaymentRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*property.SellerPayment], error) {
	return shared.Paginated[*property.SellerPayment]{}, nil
}

func (r *fakeSellerPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.payments, id)
	return nil
}

type fakeEntryRepo struct {
	entries map[uuid.UUID]*ledger.LedgerEntry
	saveErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]*ledger.LedgerEntry)}
}

func (r *fakeEntryRepo) Save(ctx context.Context, e *ledger.LedgerEntry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
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
	return nil, nil
}

func (r *fakeEntryRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *fakeEntryRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ledger.LedgerEntry], error) {
	return shared.Paginated[*ledger.LedgerEntry]{}, nil
}

func (r *fakeEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

type fakeEventBus struct {
	published []shared.DomainEvent
}

func (b *fakeEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.published = append(b.published, events...)
	return nil
}

type fakeDispatcher struct {
	notifications []notification.SaleNotification
	err           error
}

func (d *fakeDispatcher) NotifySaleCompleted(ctx context.Context, n notification.SaleNotification) error {
	if d.err != nil {
		return d.err
	}
	d.notifications = append(d.notifications, n)
	return nil
}

type fixture struct {
	service        *Service
	plotRepo       *fakePlotRepo
	planRepo       *fakePlanRepo
	commissionRepo *fakeCommissionRepo
	ruleRepo       *fakeRuleRepo
	sellerRepo     *fakeSellerPaymentRepo
	entryRepo      *fakeEntryRepo
	dispatcher     *fakeDispatcher
	eventBus       *fakeEventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		plotRepo:       newFakePlotRepo(),
		planRepo:       newFakePlanRepo(),
		commissionRepo: newFakeCommissionRepo(),
		ruleRepo:       &fakeRuleRepo{},
		sellerRepo:     newFakeSellerPaymentRepo(),
		entryRepo:      newFakeEntryRepo(),
		dispatcher:     &fakeDispatcher{},
		eventBus:       &fakeEventBus{},
	}
	logger := zap.NewNop()
	commissionService := finance.NewCommissionService(
		f.ruleRepo, f.commissionRepo, f.entryRepo,
		cache.NewInMemoryRuleCache(time.Minute),
		f.eventBus, logger,
	)
	f.service = NewService(
		f.plotRepo, f.planRepo, f.commissionRepo, f.sellerRepo, f.entryRepo,
		commissionService, f.dispatcher, lock.NewKeyedMutex(),
		f.eventBus, logger, time.Second,
	)
	return f
}

func (f *fixture) addPlot(t *testing.T, sizeMarla int64) *property.Plot {
	t.Helper()
	plot, err := property.NewPlot("P-101", uuid.New(), decimal.NewFromInt(sizeMarla))
	require.NoError(t, err)
	f.plotRepo.plots[plot.ID] = plot
	return plot
}

func (f *fixture) addPercentRule(t *testing.T, percent float64) *commission.Rule {
	t.Helper()
	rule, err := commission.NewRule(
		nil,
		decimal.Zero, decimal.NewFromInt(100),
		commission.RuleTypePercent, decimal.NewFromFloat(percent),
		1, time.Now().Add(-time.Hour),
	)
	require.NoError(t, err)
	f.ruleRepo.rules = append(f.ruleRepo.rules, rule)
	return rule
}

func monthlySpecs(count int, amount int64) []InstallmentSpec {
	specs := make([]InstallmentSpec, count)
	for i := range specs {
		specs[i] = InstallmentSpec{
			DueDate: time.Now().AddDate(0, i+1, 0),
			Amount:  decimal.NewFromInt(amount),
		}
	}
	return specs
}

func TestProcessSaleFullPayment(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	agentID := uuid.New()
	plot := f.addPlot(t, 10).WithSeller(sellerID).WithBookingAgent(agentID)
	f.addPercentRule(t, 2)

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, property.PlotSold, plot.Status)
	assert.Nil(t, result.PlanID)

	// Full payment posts the whole price as income.
	income, err := f.entryRepo.FindByRef(context.Background(), plot.ID, ledger.RefTypePlot)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, ledger.EntryTypeCredit, income[0].Type)
	assert.Equal(t, "1000000", income[0].Amount.Amount().String())

	// 2% commission for the booking agent.
	require.NotNil(t, result.CommissionID)
	c, err := f.commissionRepo.FindByID(context.Background(), *result.CommissionID)
	require.NoError(t, err)
	assert.Equal(t, agentID, c.AgentID)
	assert.Equal(t, "20000.00", c.Amount.Amount().StringFixed(2))

	// Seller gets their share of the price.
	require.NotNil(t, result.PaymentID)
	payment, err := f.sellerRepo.FindByID(context.Background(), *result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, sellerID, payment.SellerID)
	assert.Equal(t, "700000.00", payment.Amount.Amount().StringFixed(2))

	require.Len(t, f.dispatcher.notifications, 1)
	assert.Equal(t, plot.ID, f.dispatcher.notifications[0].PlotID)
}

func TestProcessSaleInstallments(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 5)

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:       plot.ID,
		BuyerID:      uuid.New(),
		SalePrice:    decimal.NewFromInt(1000000),
		PaymentMode:  "installments",
		DownPayment:  decimal.NewFromInt(100000),
		Installments: monthlySpecs(3, 300000),
	})
	require.NoError(t, err)
	require.NotNil(t, result.PlanID)

	plan, err := f.planRepo.FindByID(context.Background(), *result.PlanID)
	require.NoError(t, err)
	assert.True(t, plan.DownPaymentPaid)
	assert.Len(t, plan.Installments, 3)

	// The down payment is the only posting at sale time.
	entries, err := f.entryRepo.FindByRef(context.Background(), plan.ID, ledger.RefTypeInstallmentPlan)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "100000", entries[0].Amount.Amount().String())

	// No agent and no seller on this plot.
	assert.Nil(t, result.CommissionID)
	assert.Nil(t, result.PaymentID)
}

func TestProcessSaleRejectsSoldPlot(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 5)
	require.NoError(t, plot.MarkSold(uuid.New(), valueobject.NewMoneyPKR(decimal.NewFromInt(500000)), time.Now()))

	_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Empty(t, f.entryRepo.entries)
}

func TestProcessSaleReservedPlotSellable(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 5)
	require.NoError(t, plot.Reserve())

	_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	assert.Equal(t, property.PlotSold, plot.Status)
}

func TestProcessSaleNoMatchingRuleNoCommission(t *testing.T) {
	f := newFixture(t)
	agentID := uuid.New()
	plot := f.addPlot(t, 50).WithBookingAgent(agentID)

	// Rule covers up to 10 marla; the plot is 50, so no rule applies.
	rule, err := commission.NewRule(
		nil, decimal.Zero, decimal.NewFromInt(10),
		commission.RuleTypePercent, decimal.NewFromInt(2),
		1, time.Now().Add(-time.Hour),
	)
	require.NoError(t, err)
	f.ruleRepo.rules = append(f.ruleRepo.rules, rule)

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	assert.Nil(t, result.CommissionID)
	assert.Empty(t, f.commissionRepo.commissions)
	assert.Equal(t, property.PlotSold, plot.Status)
}

func TestProcessSaleCompensatesOnFailure(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	agentID := uuid.New()
	plot := f.addPlot(t, 10).WithSeller(sellerID).WithBookingAgent(agentID)
	f.addPercentRule(t, 2)

	// The seller payment is the last record the saga writes. Failing it
	// must take back everything written before it.
	f.sellerRepo.saveErr = shared.NewDomainError("INTERNAL", "storage unavailable")

	_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:       plot.ID,
		BuyerID:      uuid.New(),
		SalePrice:    decimal.NewFromInt(1000000),
		PaymentMode:  "installments",
		DownPayment:  decimal.NewFromInt(100000),
		Installments: monthlySpecs(3, 300000),
	})
	require.Error(t, err)

	assert.Equal(t, property.PlotAvailable, plot.Status)
	assert.Nil(t, plot.BuyerID)
	assert.Empty(t, f.planRepo.plans)
	assert.Empty(t, f.commissionRepo.commissions)
	assert.Empty(t, f.sellerRepo.payments)
	assert.Empty(t, f.entryRepo.entries)
	assert.Empty(t, f.dispatcher.notifications)
}

func TestProcessSaleCompensatesOnCommissionFailure(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 10).WithBookingAgent(uuid.New())
	f.addPercentRule(t, 2)
	f.commissionRepo.saveErr = shared.NewDomainError("INTERNAL", "storage unavailable")

	_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.Error(t, err)

	assert.Equal(t, property.PlotAvailable, plot.Status)
	assert.Empty(t, f.entryRepo.entries)
	assert.Empty(t, f.commissionRepo.commissions)
}

func TestProcessSaleNotificationFailureDoesNotFailSale(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 5)
	f.dispatcher.err = context.DeadlineExceeded

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, property.PlotSold, plot.Status)
}

func TestProcessSaleValidation(t *testing.T) {
	f := newFixture(t)
	plot := f.addPlot(t, 5)

	t.Run("unknown payment mode", func(t *testing.T) {
		_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
			PlotID:      plot.ID,
			BuyerID:     uuid.New(),
			SalePrice:   decimal.NewFromInt(1000000),
			PaymentMode: "barter",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)
	})

	t.Run("installments without schedule", func(t *testing.T) {
		_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
			PlotID:      plot.ID,
			BuyerID:     uuid.New(),
			SalePrice:   decimal.NewFromInt(1000000),
			PaymentMode: "installments",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)
	})

	t.Run("unknown plot", func(t *testing.T) {
		_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
			PlotID:      uuid.New(),
			BuyerID:     uuid.New(),
			SalePrice:   decimal.NewFromInt(1000000),
			PaymentMode: "full",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaySeller(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	plot := f.addPlot(t, 10).WithSeller(sellerID)

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	require.NotNil(t, result.PaymentID)

	payment, err := f.service.PaySeller(context.Background(), *result.PaymentID, PaySellerRequest{
		Amount: decimal.NewFromInt(300000),
	})
	require.NoError(t, err)
	assert.Equal(t, property.SellerPaymentPartial, payment.Status)
	assert.Equal(t, "300000", payment.PaidAmount.Amount().String())
	assert.Equal(t, "400000", payment.Remaining().Amount().String())

	// The payout posts its own expense entry next to the accrual.
	entries, err := f.entryRepo.FindByRef(context.Background(), payment.ID, ledger.RefTypeSellerPayment)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	payment, err = f.service.PaySeller(context.Background(), *result.PaymentID, PaySellerRequest{
		Amount: decimal.NewFromInt(400000),
	})
	require.NoError(t, err)
	assert.Equal(t, property.SellerPaymentPaid, payment.Status)
}

func TestPaySellerOverpayRejected(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	plot := f.addPlot(t, 10).WithSeller(sellerID)

	result, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)
	require.NotNil(t, result.PaymentID)

	_, err = f.service.PaySeller(context.Background(), *result.PaymentID, PaySellerRequest{
		Amount: decimal.NewFromInt(700001),
	})
	require.Error(t, err)

	payment, ferr := f.sellerRepo.FindByID(context.Background(), *result.PaymentID)
	require.NoError(t, ferr)
	assert.True(t, payment.PaidAmount.IsZero())
	assert.Equal(t, property.SellerPaymentPending, payment.Status)
}

func TestSellerPaymentsBySeller(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	plot := f.addPlot(t, 10).WithSeller(sellerID)

	_, err := f.service.ProcessSale(context.Background(), ProcessSaleRequest{
		PlotID:      plot.ID,
		BuyerID:     uuid.New(),
		SalePrice:   decimal.NewFromInt(1000000),
		PaymentMode: "full",
	})
	require.NoError(t, err)

	payments, err := f.service.SellerPaymentsBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	none, err := f.service.SellerPaymentsBySeller(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
