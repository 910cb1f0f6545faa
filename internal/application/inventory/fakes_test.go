package inventory

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memStore keeps every inventory table in maps. memScope snapshots it so a
// failed Execute leaves it untouched, like a rolled back transaction.
type memStore struct {
	godowns     map[uuid.UUID]inventory.Godown
	batches     map[uuid.UUID]inventory.StockBatch
	stocks      map[[2]uuid.UUID]inventory.GodownStock
	movements   []inventory.StockMovement
	transfers   map[uuid.UUID]inventory.StockTransfer
	allocations map[uuid.UUID]inventory.Allocation
	sequences   map[string]int64
	products    map[uuid.UUID]*catalog.Product
	projects    map[uuid.UUID]*project.Project
}

func newMemStore() *memStore {
	return &memStore{
		godowns:     make(map[uuid.UUID]inventory.Godown),
		batches:     make(map[uuid.UUID]inventory.StockBatch),
		stocks:      make(map[[2]uuid.UUID]inventory.GodownStock),
		transfers:   make(map[uuid.UUID]inventory.StockTransfer),
		allocations: make(map[uuid.UUID]inventory.Allocation),
		sequences:   make(map[string]int64),
		products:    make(map[uuid.UUID]*catalog.Product),
		projects:    make(map[uuid.UUID]*project.Project),
	}
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.godowns {
		cp.godowns[k] = v
	}
	for k, v := range s.batches {
		cp.batches[k] = v
	}
	for k, v := range s.stocks {
		cp.stocks[k] = v
	}
	cp.movements = append(cp.movements, s.movements...)
	for k, v := range s.transfers {
		cp.transfers[k] = v
	}
	for k, v := range s.allocations {
		cp.allocations[k] = copyAllocation(v)
	}
	for k, v := range s.sequences {
		cp.sequences[k] = v
	}
	cp.products = s.products
	cp.projects = s.projects
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.godowns = from.godowns
	s.batches = from.batches
	s.stocks = from.stocks
	s.movements = from.movements
	s.transfers = from.transfers
	s.allocations = from.allocations
	s.sequences = from.sequences
}

func (s *memStore) set() *txn.Set {
	return &txn.Set{
		GodownRepo:     memGodowns{s},
		BatchRepo:      memBatches{s},
		StockRepo:      memStocks{s},
		MovementRepo:   memMovements{s},
		TransferRepo:   memTransfers{s},
		AllocationRepo: memAllocations{s},
		SequenceRepo:   memSequences{s},
	}
}

func (s *memStore) stock(godownID, productID uuid.UUID) inventory.GodownStock {
	return s.stocks[[2]uuid.UUID{godownID, productID}]
}

func (s *memStore) batchesOf(godownID, productID uuid.UUID) []inventory.StockBatch {
	var out []inventory.StockBatch
	for _, b := range s.batches {
		if b.GodownID == godownID && b.ProductID == productID {
			out = append(out, b)
		}
	}
	inventory.SortFIFO(out)
	return out
}

func copyAllocation(a inventory.Allocation) inventory.Allocation {
	a.Lines = append([]inventory.AllocationLine(nil), a.Lines...)
	return a
}

type memScope struct{ s *memStore }

func (m memScope) Execute(_ context.Context, fn func(repos txn.Repositories) error) error {
	before := m.s.snapshot()
	if err := fn(m.s.set()); err != nil {
		m.s.restore(before)
		return err
	}
	return nil
}

type memGodowns struct{ s *memStore }

func (r memGodowns) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.Godown, error) {
	g, ok := r.s.godowns[id]
	if !ok || g.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return &g, nil
}

func (r memGodowns) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.Godown, int64, error) {
	var out []inventory.Godown
	for _, g := range r.s.godowns {
		if g.TenantID == tenantID {
			out = append(out, g)
		}
	}
	return out, int64(len(out)), nil
}

func (r memGodowns) FindDefault(_ context.Context, tenantID uuid.UUID) (*inventory.Godown, error) {
	for _, g := range r.s.godowns {
		if g.TenantID == tenantID && g.IsDefault {
			return &g, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memGodowns) ExistsByCode(_ context.Context, tenantID uuid.UUID, code string) (bool, error) {
	for _, g := range r.s.godowns {
		if g.TenantID == tenantID && g.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// defaultTaken mirrors the unique index allowing one default godown per tenant
func (r memGodowns) defaultTaken(g *inventory.Godown) bool {
	if !g.IsDefault {
		return false
	}
	for id, other := range r.s.godowns {
		if id != g.ID && other.TenantID == g.TenantID && other.IsDefault {
			return true
		}
	}
	return false
}

func (r memGodowns) Save(_ context.Context, g *inventory.Godown) error {
	if r.defaultTaken(g) {
		return shared.ErrAlreadyExists
	}
	r.s.godowns[g.ID] = *g
	return nil
}

func (r memGodowns) SaveWithLock(_ context.Context, g *inventory.Godown) error {
	cur, ok := r.s.godowns[g.ID]
	if !ok || cur.Version != g.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	if r.defaultTaken(g) {
		return shared.ErrAlreadyExists
	}
	r.s.godowns[g.ID] = *g
	return nil
}

func (r memGodowns) ClearDefault(_ context.Context, tenantID, keepID uuid.UUID) error {
	for id, g := range r.s.godowns {
		if g.TenantID == tenantID && id != keepID && g.IsDefault {
			g.IsDefault = false
			g.Version++
			r.s.godowns[id] = g
		}
	}
	return nil
}

func (r memGodowns) DeleteForTenant(_ context.Context, _, id uuid.UUID) error {
	delete(r.s.godowns, id)
	return nil
}

func (r memGodowns) HasStock(_ context.Context, _, id uuid.UUID) (bool, error) {
	for _, st := range r.s.stocks {
		if st.GodownID == id && st.Quantity.IsPositive() {
			return true, nil
		}
	}
	return false, nil
}

func (r memGodowns) HasBatches(_ context.Context, _, id uuid.UUID) (bool, error) {
	for _, b := range r.s.batches {
		if b.GodownID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memGodowns) Count(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for _, g := range r.s.godowns {
		if g.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type memBatches struct{ s *memStore }

func (r memBatches) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*inventory.StockBatch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

func (r memBatches) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockBatch, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r memBatches) FindAvailableForUpdate(_ context.Context, _, godownID, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var out []inventory.StockBatch
	for _, b := range r.s.batchesOf(godownID, productID) {
		if b.HasStock() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBatches) FindAll(_ context.Context, _ uuid.UUID, f inventory.BatchFilter) ([]inventory.StockBatch, int64, error) {
	var out []inventory.StockBatch
	for _, b := range r.s.batches {
		if f.GodownID != nil && b.GodownID != *f.GodownID {
			continue
		}
		if f.ProductID != nil && b.ProductID != *f.ProductID {
			continue
		}
		if f.AvailableOnly && !b.HasStock() {
			continue
		}
		out = append(out, b)
	}
	inventory.SortFIFO(out)
	return out, int64(len(out)), nil
}

func (r memBatches) Create(_ context.Context, b *inventory.StockBatch) error {
	r.s.batches[b.ID] = *b
	return nil
}

func (r memBatches) UpdateRemaining(_ context.Context, b *inventory.StockBatch) error {
	cur := r.s.batches[b.ID]
	cur.RemainingQty = b.RemainingQty
	r.s.batches[b.ID] = cur
	return nil
}

type memStocks struct{ s *memStore }

func (r memStocks) Find(_ context.Context, _, godownID, productID uuid.UUID) (*inventory.GodownStock, error) {
	st, ok := r.s.stocks[[2]uuid.UUID{godownID, productID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	st.ClearDomainEvents()
	return &st, nil
}

func (r memStocks) FindForUpdate(ctx context.Context, tenantID, godownID, productID uuid.UUID) (*inventory.GodownStock, error) {
	return r.Find(ctx, tenantID, godownID, productID)
}

func (r memStocks) FindAll(_ context.Context, _ uuid.UUID, f inventory.StockFilter) ([]inventory.GodownStock, int64, error) {
	var out []inventory.GodownStock
	for _, st := range r.s.stocks {
		if f.GodownID != nil && st.GodownID != *f.GodownID {
			continue
		}
		if f.ProductID != nil && st.ProductID != *f.ProductID {
			continue
		}
		if f.NonZeroOnly && st.IsEmpty() {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GodownID.String() < out[j].GodownID.String() })
	return out, int64(len(out)), nil
}

func (r memStocks) Create(_ context.Context, st *inventory.GodownStock) error {
	key := [2]uuid.UUID{st.GodownID, st.ProductID}
	if _, ok := r.s.stocks[key]; ok {
		return nil
	}
	r.s.stocks[key] = *st
	return nil
}

func (r memStocks) Update(_ context.Context, st *inventory.GodownStock) error {
	key := [2]uuid.UUID{st.GodownID, st.ProductID}
	if r.s.stocks[key].Version != st.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.s.stocks[key] = *st
	return nil
}

func (r memStocks) LowStock(context.Context, uuid.UUID) ([]inventory.LowStockItem, error) {
	return nil, nil
}

func (r memStocks) Valuation(_ context.Context, _ uuid.UUID) ([]inventory.GodownValuation, error) {
	byGodown := make(map[uuid.UUID]*inventory.GodownValuation)
	for _, st := range r.s.stocks {
		v, ok := byGodown[st.GodownID]
		if !ok {
			g := r.s.godowns[st.GodownID]
			v = &inventory.GodownValuation{GodownID: g.ID, GodownCode: g.Code, GodownName: g.Name, TotalValue: decimal.Zero}
			byGodown[st.GodownID] = v
		}
		v.Products++
		v.TotalValue = v.TotalValue.Add(st.TotalValue)
	}
	var out []inventory.GodownValuation
	for _, v := range byGodown {
		out = append(out, *v)
	}
	return out, nil
}

type memMovements struct{ s *memStore }

func (r memMovements) Create(_ context.Context, m *inventory.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r memMovements) FindAll(_ context.Context, _ uuid.UUID, f inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	var out []inventory.StockMovement
	for _, m := range r.s.movements {
		if f.Type != "" && m.MovementType != f.Type {
			continue
		}
		if f.ReferenceID != nil && m.ReferenceID != *f.ReferenceID {
			continue
		}
		if f.GodownID != nil && m.GodownID != *f.GodownID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

type memTransfers struct{ s *memStore }

func (r memTransfers) Create(_ context.Context, t *inventory.StockTransfer) error {
	r.s.transfers[t.ID] = *t
	return nil
}

func (r memTransfers) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*inventory.StockTransfer, error) {
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (r memTransfers) FindAll(context.Context, uuid.UUID, inventory.TransferFilter) ([]inventory.StockTransfer, int64, error) {
	var out []inventory.StockTransfer
	for _, t := range r.s.transfers {
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

type memAllocations struct{ s *memStore }

func (r memAllocations) Create(_ context.Context, a *inventory.Allocation) error {
	r.s.allocations[a.ID] = copyAllocation(*a)
	return nil
}

func (r memAllocations) Update(_ context.Context, a *inventory.Allocation) error {
	cur, ok := r.s.allocations[a.ID]
	if !ok || cur.Version != a.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.s.allocations[a.ID] = copyAllocation(*a)
	return nil
}

func (r memAllocations) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.Allocation, error) {
	a, ok := r.s.allocations[id]
	if !ok || a.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := copyAllocation(a)
	cp.ClearDomainEvents()
	return &cp, nil
}

func (r memAllocations) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Allocation, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r memAllocations) FindAll(_ context.Context, _ uuid.UUID, f inventory.AllocationFilter) ([]inventory.Allocation, int64, error) {
	var out []inventory.Allocation
	for _, a := range r.s.allocations {
		if f.ProjectID != nil && a.ProjectID != *f.ProjectID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, copyAllocation(a))
	}
	return out, int64(len(out)), nil
}

func (r memAllocations) ProjectConsumption(_ context.Context, _, projectID uuid.UUID) ([]inventory.MaterialConsumption, error) {
	byProduct := make(map[uuid.UUID]*inventory.MaterialConsumption)
	var order []uuid.UUID
	for _, a := range r.s.allocations {
		if a.ProjectID != projectID {
			continue
		}
		for _, l := range a.Lines {
			mc, ok := byProduct[l.ProductID]
			if !ok {
				mc = &inventory.MaterialConsumption{ProductID: l.ProductID, AllocatedQty: decimal.Zero, ReversedQty: decimal.Zero, NetQty: decimal.Zero, NetCost: decimal.Zero}
				byProduct[l.ProductID] = mc
				order = append(order, l.ProductID)
			}
			mc.AllocatedQty = mc.AllocatedQty.Add(l.Quantity)
			mc.ReversedQty = mc.ReversedQty.Add(l.ReversedQty)
			mc.NetQty = mc.NetQty.Add(l.Outstanding())
			mc.NetCost = mc.NetCost.Add(l.Outstanding().Mul(l.UnitCost))
		}
	}
	out := make([]inventory.MaterialConsumption, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	return out, nil
}

func (r memAllocations) SumNetCost(_ context.Context, _ uuid.UUID, projectID *uuid.UUID, _ shared.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range r.s.allocations {
		if projectID == nil || a.ProjectID == *projectID {
			total = total.Add(a.NetCost())
		}
	}
	return total, nil
}

type memSequences struct{ s *memStore }

func (r memSequences) Next(_ context.Context, tenantID uuid.UUID, key string) (int64, error) {
	k := tenantID.String() + "/" + key
	r.s.sequences[k]++
	return r.s.sequences[k], nil
}

type memProducts struct {
	catalog.ProductRepository
	s *memStore
}

func (r memProducts) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindByIDsForTenant(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memProjects struct {
	project.Repository
	s *memStore
}

func (r memProjects) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*project.Project, error) {
	p, ok := r.s.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
	// failOn rejects any batch carrying an event of this type
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if p.failOn != "" && e.EventType() == p.failOn {
			return errors.New("broker unavailable")
		}
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires the three services over one memStore with two active
// godowns, a cement product and an active project
type fixture struct {
	store       *memStore
	tenantID    uuid.UUID
	main        *inventory.Godown
	site        *inventory.Godown
	cement      *catalog.Product
	steel       *catalog.Product
	project     *project.Project
	godowns     *GodownService
	stock       *StockService
	allocations *AllocationService
	published   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	tenantID := uuid.New()
	logger := zaptest.NewLogger(t)
	scope := memScope{s}
	pub := &recordingPublisher{}

	mainGodown, err := inventory.NewGodown(tenantID, "MAIN", "Main Yard", "Plot 4, Ring Road")
	require.NoError(t, err)
	mainGodown.IsDefault = true
	mainGodown.ClearDomainEvents()
	site, err := inventory.NewGodown(tenantID, "SITE-A", "Tower A site store", "")
	require.NoError(t, err)
	site.ClearDomainEvents()
	s.godowns[mainGodown.ID] = *mainGodown
	s.godowns[site.ID] = *site

	cement, err := catalog.NewProduct(tenantID, "CEM-OPC53", catalog.Details{
		Name: "OPC 53 Cement", Category: catalog.CategoryCement, Unit: catalog.UnitBag,
		GSTRate: decimal.NewFromInt(28), ReorderLevel: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	steel, err := catalog.NewProduct(tenantID, "TMT-12", catalog.Details{
		Name: "TMT Bar 12mm", Category: catalog.CategorySteel, Unit: catalog.UnitKg,
		GSTRate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	s.products[cement.ID] = cement
	s.products[steel.ID] = steel

	p, err := project.NewProject(tenantID, uuid.New(), "P-1", project.Details{Name: "Tower A"})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	p.ClearDomainEvents()
	s.projects[p.ID] = p

	repos := s.set()
	products := memProducts{s: s}
	projects := memProjects{s: s}

	godowns := NewGodownService(repos.GodownRepo, scope, logger)
	stock := NewStockService(StockRepositories{
		Godowns:   repos.GodownRepo,
		Products:  products,
		Stocks:    repos.StockRepo,
		Batches:   repos.BatchRepo,
		Movements: repos.MovementRepo,
		Transfers: repos.TransferRepo,
	}, scope, logger)
	allocations := NewAllocationService(repos.AllocationRepo, repos.GodownRepo, products, projects, scope, logger)
	for _, svc := range []interface{ SetEventPublisher(shared.EventPublisher) }{godowns, stock, allocations} {
		svc.SetEventPublisher(pub)
	}

	return &fixture{
		store:       s,
		tenantID:    tenantID,
		main:        mainGodown,
		site:        site,
		cement:      cement,
		steel:       steel,
		project:     p,
		godowns:     godowns,
		stock:       stock,
		allocations: allocations,
		published:   pub,
	}
}

// receive books qty of product into godown at cost on the given day
func (f *fixture) receive(t *testing.T, godownID, productID uuid.UUID, qty, cost int64, day int) *ReceiveStockResponse {
	t.Helper()
	on := testDay(day)
	resp, err := f.stock.Receive(context.Background(), f.tenantID, ReceiveStockRequest{
		GodownID:     godownID,
		ProductID:    productID,
		Quantity:     decimal.NewFromInt(qty),
		UnitCost:     decimal.NewFromInt(cost),
		ReceivedDate: &on,
	})
	require.NoError(t, err)
	return resp
}
