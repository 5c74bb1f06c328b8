package stock_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Bodega-ledger/internal/application/stock"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria: un memStore compartido con repositorios que implementan
// los puertos del dominio, y un TxRunner que simula la atomicidad restaurando
// un snapshot si fn devuelve error.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	movements    []*entity.StockMovement
	balances     map[string]*entity.StockBalance
	reservations map[string]*entity.Reservation
	warehouses   map[string]*entity.Warehouse
	items        map[string]*entity.Item
	bins         map[string]*entity.BinLocation
	lots         map[string]*entity.Lot // clave itemID|lotCode
	serials      map[string]*entity.SerialNumber
}

func newMemStore() *memStore {
	return &memStore{
		balances:     make(map[string]*entity.StockBalance),
		reservations: make(map[string]*entity.Reservation),
		warehouses:   make(map[string]*entity.Warehouse),
		items:        make(map[string]*entity.Item),
		bins:         make(map[string]*entity.BinLocation),
		lots:         make(map[string]*entity.Lot),
		serials:      make(map[string]*entity.SerialNumber),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.balances {
		cp := *v
		c.balances[k] = &cp
	}
	for k, v := range s.reservations {
		cp := *v
		c.reservations[k] = &cp
	}
	for k, v := range s.warehouses {
		cp := *v
		c.warehouses[k] = &cp
	}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.bins {
		cp := *v
		c.bins[k] = &cp
	}
	for k, v := range s.lots {
		cp := *v
		c.lots[k] = &cp
	}
	for k, v := range s.serials {
		cp := *v
		c.serials[k] = &cp
	}
	return c
}

func (s *memStore) repos() stock.Repos {
	return stock.Repos{
		Movements:    &memMovementRepo{s},
		Balances:     &memBalanceRepo{s},
		Reservations: &memReservationRepo{s},
		Items:        &memItemRepo{s},
		Warehouses:   &memWarehouseRepo{s},
		Bins:         &memBinRepo{s},
		Lots:         &memLotRepo{s},
		Serials:      &memSerialRepo{s},
	}
}

// memTxRunner serializa las "transacciones" con un mutex y revierte el estado
// al snapshot previo si fn falla, emulando el rollback.
type memTxRunner struct {
	mu    sync.Mutex
	store *memStore
}

func (t *memTxRunner) Run(ctx context.Context, fn func(r stock.Repos) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := t.store.clone()
	if err := fn(t.store.repos()); err != nil {
		*t.store = *snapshot
		return err
	}
	return nil
}

// staleCheckTxRunner reproduce al proceso que llega segundo en una carrera de
// correlación: dentro de su transacción la búsqueda previa por correlación no
// ve nada (el otro proceso todavía no era visible), así que el insert choca
// con la guarda de unicidad igual que contra el índice en PostgreSQL.
type staleCheckTxRunner struct {
	inner *memTxRunner
}

func (t *staleCheckTxRunner) Run(ctx context.Context, fn func(r stock.Repos) error) error {
	return t.inner.Run(ctx, func(r stock.Repos) error {
		r.Movements = &staleMovementRepo{r.Movements}
		return fn(r)
	})
}

type staleMovementRepo struct {
	repository.StockMovementRepository
}

func (r *staleMovementRepo) FindByCorrelation(_, _ string) ([]*entity.StockMovement, error) {
	return nil, nil
}

// ── Movimientos ──

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	for _, prev := range r.s.movements {
		if prev.CorrelationID == m.CorrelationID && prev.OperationClass == m.OperationClass &&
			prev.TransactionGroupID != m.TransactionGroupID {
			return domain.ErrDuplicateCorrelation
		}
	}
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMovementRepo) FindByCorrelation(correlationID, operationClass string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CorrelationID == correlationID && m.OperationClass == operationClass {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, string, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.BinLocationID != "" && m.SourceBinID != filter.BinLocationID && m.DestinationBinID != filter.BinLocationID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, "", nil
}

// ── Saldos ──

type memBalanceRepo struct{ s *memStore }

func (r *memBalanceRepo) Get(p entity.StockPosition) (*entity.StockBalance, error) {
	if b, ok := r.s.balances[p.Key()]; ok {
		cp := *b
		return &cp, nil
	}
	return &entity.StockBalance{Position: p}, nil
}

func (r *memBalanceRepo) GetForUpdate(p entity.StockPosition) (*entity.StockBalance, error) {
	return r.Get(p)
}

func (r *memBalanceRepo) Upsert(b *entity.StockBalance) error {
	cp := *b
	r.s.balances[b.Position.Key()] = &cp
	return nil
}

func (r *memBalanceRepo) ListByWarehouse(warehouseID string, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	for _, b := range r.s.balances {
		if b.Position.WarehouseID != warehouseID || !b.QuantityOnHand.IsPositive() {
			continue
		}
		if filter.ItemID != "" && b.Position.ItemID != filter.ItemID {
			continue
		}
		if filter.BinLocationID != "" && b.Position.BinLocationID != filter.BinLocationID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position.Key() < out[j].Position.Key() })
	return out, nil
}

// ── Reservas ──

type memReservationRepo struct{ s *memStore }

func (r *memReservationRepo) Create(res *entity.Reservation) error {
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}

func (r *memReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	if res, ok := r.s.reservations[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, nil
}

func (r *memReservationRepo) GetForUpdate(id string) (*entity.Reservation, error) {
	return r.GetByID(id)
}

func (r *memReservationRepo) UpdateStatus(id, status string) error {
	res, ok := r.s.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	res.Status = status
	return nil
}

func (r *memReservationRepo) ListActiveByPosition(p entity.StockPosition) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.Status == entity.ReservationActive && res.Position == p {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Catálogo ──

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) GetByID(id string) (*entity.Item, error) {
	if it, ok := r.s.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *memItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	for _, it := range r.s.items {
		if it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

type memWarehouseRepo struct{ s *memStore }

func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	if wh, ok := r.s.warehouses[id]; ok {
		cp := *wh
		return &cp, nil
	}
	return nil, nil
}

type memBinRepo struct{ s *memStore }

func (r *memBinRepo) GetByID(id string) (*entity.BinLocation, error) {
	if b, ok := r.s.bins[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

type memLotRepo struct{ s *memStore }

func (r *memLotRepo) GetByItemAndCode(itemID, lotCode string) (*entity.Lot, error) {
	if l, ok := r.s.lots[itemID+"|"+lotCode]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *memLotRepo) Create(lot *entity.Lot) error {
	cp := *lot
	r.s.lots[lot.ItemID+"|"+lot.LotCode] = &cp
	return nil
}

type memSerialRepo struct{ s *memStore }

func (r *memSerialRepo) GetByID(id string) (*entity.SerialNumber, error) {
	if sn, ok := r.s.serials[id]; ok {
		cp := *sn
		return &cp, nil
	}
	return nil, nil
}

func (r *memSerialRepo) GetByCode(serialCode string) (*entity.SerialNumber, error) {
	for _, sn := range r.s.serials {
		if sn.SerialCode == serialCode {
			cp := *sn
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSerialRepo) Create(serial *entity.SerialNumber) error {
	cp := *serial
	r.s.serials[serial.ID] = &cp
	return nil
}

func (r *memSerialRepo) UpdateStatus(id, status string) error {
	sn, ok := r.s.serials[id]
	if !ok {
		return domain.ErrNotFound
	}
	sn.Status = status
	return nil
}
