package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taptosell/marketplace-workflow/internal/application/engine"
	"github.com/taptosell/marketplace-workflow/internal/application/port"
	"github.com/taptosell/marketplace-workflow/internal/domain/entity"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// In-memory repositories backing the service tests. They implement the
// same compare-and-set contract as the sqlite repositories.

type memProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*entity.Product
	order    []int64
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1, products: make(map[int64]*entity.Product)}
}

func (r *memProductRepo) Kind() workflow.Kind { return workflow.KindProduct }

func (r *memProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.products[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, id := range r.order {
		if p, ok := r.products[id]; ok && p.SupplierID == supplierID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) UpdatePrice(ctx context.Context, id int64, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Price = price
	}
	return nil
}

func (r *memProductRepo) SetCommissionRate(ctx context.Context, id int64, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.CommissionRate = rate
	}
	return nil
}

func (r *memProductRepo) DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.SupplierID != supplierID || p.Status != workflow.StateDraft.String() {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *memProductRepo) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	rec := p.WorkflowRecord()
	return &rec, nil
}

func (r *memProductRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Status != from.String() {
		return false, nil
	}
	p.Status = to.String()
	p.StatusReason = reason
	return true, nil
}

func (r *memProductRepo) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []workflow.Record{}
	for _, id := range r.order {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		for _, st := range states {
			if p.Status == st.String() {
				out = append(out, p.WorkflowRecord())
			}
		}
	}
	return out, nil
}

var _ port.ProductRepository = (*memProductRepo)(nil)

type memItemRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*entity.InventoryItem
	order  []int64
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{nextID: 1, items: make(map[int64]*entity.InventoryItem)}
}

func (r *memItemRepo) Kind() workflow.Kind { return workflow.KindInventoryItem }

func (r *memItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.nextID
	r.nextID++
	cp := *item
	r.items[item.ID] = &cp
	r.order = append(r.order, item.ID)
	return nil
}

func (r *memItemRepo) GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryItem
	for _, id := range r.order {
		if item, ok := r.items[id]; ok && item.SupplierID == supplierID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memItemRepo) LinkPromotedProduct(ctx context.Context, id, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.PromotedProductID = &productID
	}
	return nil
}

func (r *memItemRepo) DeleteDraft(ctx context.Context, id, supplierID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.SupplierID != supplierID || item.Status != workflow.StateDraft.String() {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *memItemRepo) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	rec := item.WorkflowRecord()
	return &rec, nil
}

func (r *memItemRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Status != from.String() {
		return false, nil
	}
	item.Status = to.String()
	item.StatusReason = reason
	return true, nil
}

func (r *memItemRepo) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []workflow.Record{}
	for _, id := range r.order {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		for _, st := range states {
			if item.Status == st.String() {
				out = append(out, item.WorkflowRecord())
			}
		}
	}
	return out, nil
}

var _ port.InventoryItemRepository = (*memItemRepo)(nil)

type memAppealRepo struct {
	mu      sync.Mutex
	nextID  int64
	appeals map[int64]*entity.PriceAppeal
	order   []int64
}

func newMemAppealRepo() *memAppealRepo {
	return &memAppealRepo{nextID: 1, appeals: make(map[int64]*entity.PriceAppeal)}
}

func (r *memAppealRepo) Kind() workflow.Kind { return workflow.KindPriceAppeal }

func (r *memAppealRepo) Create(ctx context.Context, a *entity.PriceAppeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	cp := *a
	r.appeals[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

func (r *memAppealRepo) GetByID(ctx context.Context, id int64) (*entity.PriceAppeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appeals[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAppealRepo) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.PriceAppeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PriceAppeal
	for _, id := range r.order {
		if a, ok := r.appeals[id]; ok && a.SupplierID == supplierID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAppealRepo) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appeals[id]
	if !ok {
		return nil, nil
	}
	rec := a.WorkflowRecord()
	return &rec, nil
}

func (r *memAppealRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appeals[id]
	if !ok || a.Status != from.String() {
		return false, nil
	}
	a.Status = to.String()
	a.StatusReason = reason
	return true, nil
}

func (r *memAppealRepo) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []workflow.Record{}
	for _, id := range r.order {
		a, ok := r.appeals[id]
		if !ok {
			continue
		}
		for _, st := range states {
			if a.Status == st.String() {
				out = append(out, a.WorkflowRecord())
			}
		}
	}
	return out, nil
}

var _ port.PriceAppealRepository = (*memAppealRepo)(nil)

type memWithdrawalRepo struct {
	mu          sync.Mutex
	nextID      int64
	withdrawals map[int64]*entity.WithdrawalRequest
	order       []int64
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{nextID: 1, withdrawals: make(map[int64]*entity.WithdrawalRequest)}
}

func (r *memWithdrawalRepo) Kind() workflow.Kind { return workflow.KindWithdrawalRequest }

func (r *memWithdrawalRepo) Create(ctx context.Context, w *entity.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = r.nextID
	r.nextID++
	cp := *w
	r.withdrawals[w.ID] = &cp
	r.order = append(r.order, w.ID)
	return nil
}

func (r *memWithdrawalRepo) GetByID(ctx context.Context, id int64) (*entity.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWithdrawalRepo) ListBySupplier(ctx context.Context, supplierID int64) ([]*entity.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WithdrawalRequest
	for _, id := range r.order {
		if w, ok := r.withdrawals[id]; ok && w.SupplierID == supplierID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memWithdrawalRepo) GetRecord(ctx context.Context, id int64) (*workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	rec := w.WorkflowRecord()
	return &rec, nil
}

func (r *memWithdrawalRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.Status != from.String() {
		return false, nil
	}
	w.Status = to.String()
	w.StatusReason = reason
	return true, nil
}

func (r *memWithdrawalRepo) ListByStatus(ctx context.Context, states ...workflow.State) ([]workflow.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []workflow.Record{}
	for _, id := range r.order {
		w, ok := r.withdrawals[id]
		if !ok {
			continue
		}
		for _, st := range states {
			if w.Status == st.String() {
				out = append(out, w.WorkflowRecord())
			}
		}
	}
	return out, nil
}

var _ port.WithdrawalRepository = (*memWithdrawalRepo)(nil)

type memSettingsRepo struct {
	mu       sync.Mutex
	settings map[string]string
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{settings: make(map[string]string)}
}

func (r *memSettingsRepo) Get(ctx context.Context, key string) (*entity.PlatformSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	return &entity.PlatformSetting{Key: key, Value: value}, nil
}

func (r *memSettingsRepo) GetAll(ctx context.Context) ([]*entity.PlatformSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PlatformSetting
	for key, value := range r.settings {
		out = append(out, &entity.PlatformSetting{Key: key, Value: value})
	}
	return out, nil
}

func (r *memSettingsRepo) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

var _ port.SettingsRepository = (*memSettingsRepo)(nil)

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.StatusHistory
}

func (r *memHistoryRepo) Append(ctx context.Context, h *entity.StatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, h)
	return nil
}

func (r *memHistoryRepo) ListByRecord(ctx context.Context, kind workflow.Kind, recordID int64) ([]*entity.StatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StatusHistory
	for _, h := range r.entries {
		if h.Kind == kind.String() && h.RecordID == recordID {
			out = append(out, h)
		}
	}
	return out, nil
}

var _ port.HistoryRepository = (*memHistoryRepo)(nil)

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// testEnv bundles the in-memory stack a service test needs
type testEnv struct {
	products    *memProductRepo
	items       *memItemRepo
	withdrawals *memWithdrawalRepo
	appeals     *memAppealRepo
	settings    *memSettingsRepo
	history     *memHistoryRepo
	engine      *engine.Engine
}

func newTestEnv() *testEnv {
	env := &testEnv{
		products:    newMemProductRepo(),
		items:       newMemItemRepo(),
		withdrawals: newMemWithdrawalRepo(),
		appeals:     newMemAppealRepo(),
		settings:    newMemSettingsRepo(),
		history:     &memHistoryRepo{},
	}
	env.engine = engine.New(workflow.DefaultTable(), passthroughTx{}, env.history, zap.NewNop())
	env.engine.RegisterStore(env.products)
	env.engine.RegisterStore(env.items)
	env.engine.RegisterStore(env.withdrawals)
	env.engine.RegisterStore(env.appeals)
	return env
}

func (env *testEnv) stores() []port.RecordStore {
	return []port.RecordStore{env.products, env.items, env.withdrawals, env.appeals}
}
