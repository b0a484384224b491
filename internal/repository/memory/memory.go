// Package memory fornece repositórios em memória usados quando DATABASE_URL
// não está definida (desenvolvimento local) e nos testes ponta a ponta.
// As mesmas guardas e regras de integridade do PostgreSQL são aplicadas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storemanager/internal/domain"
	"storemanager/internal/errors"
	"storemanager/internal/validation"
)

type sale struct {
	date  time.Time
	lines []domain.SaleLine
}

// Store guarda produtos e vendas sob um único mutex, o que mantém a
// integridade referencial entre as duas tabelas.
type Store struct {
	mu            sync.RWMutex
	products      map[int64]domain.Product
	sales         map[int64]*sale
	nextProductID int64
	nextSaleID    int64
	now           func() time.Time
}

// NewStore cria um Store vazio.
func NewStore() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		sales:    make(map[int64]*sale),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Products expõe o Store como domain.ProductRepository.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Sales expõe o Store como domain.SaleRepository.
func (s *Store) Sales() *SaleRepository { return &SaleRepository{s: s} }

// ProductRepository é a visão de produtos do Store.
type ProductRepository struct{ s *Store }

// SaleRepository é a visão de vendas do Store.
type SaleRepository struct{ s *Store }

var (
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.SaleRepository    = (*SaleRepository)(nil)
)

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// --- Produtos ---

func (r *ProductRepository) Create(ctx context.Context, name string, quantity int) (int64, error) {
	if name == "" || quantity < 1 {
		return 0, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.Name == name {
			return 0, errors.NewConflictError(validation.MsgProductExists)
		}
	}
	r.s.nextProductID++
	id := r.s.nextProductID
	r.s.products[id] = domain.Product{ID: id, Name: name, Quantity: quantity}
	return id, nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return r.filter(func(domain.Product) bool { return true }), nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) ([]domain.Product, error) {
	if name == "" {
		return nil, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return r.filter(func(p domain.Product) bool { return p.Name == name }), nil
}

func (r *ProductRepository) filter(keep func(domain.Product) bool) []domain.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	if id < 1 {
		return domain.Product{}, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return domain.Product{}, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, errors.NewNotFoundError(validation.MsgProductNotFound)
	}
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, name string, quantity int) (bool, error) {
	if id < 1 || name == "" || quantity < 1 {
		return false, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	for _, p := range r.s.products {
		if p.Name == name && p.ID != id {
			return false, errors.NewConflictError(validation.MsgProductExists)
		}
	}
	r.s.products[id] = domain.Product{ID: id, Name: name, Quantity: quantity}
	return true, nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if id < 1 {
		return false, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	for _, sl := range r.s.sales {
		for _, l := range sl.lines {
			if l.ProductID == id {
				return false, errors.NewConflictError("Product is referenced by existing sales")
			}
		}
	}
	delete(r.s.products, id)
	return true, nil
}

func (r *ProductRepository) GetQuantity(ctx context.Context, id int64) (int, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}

func (r *ProductRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	if id < 1 || quantity < 0 {
		return false, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return false, nil
	}
	p.Quantity = quantity
	r.s.products[id] = p
	return true, nil
}

// --- Vendas ---

func validLines(lines []domain.SaleLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if l.ProductID < 1 || l.Quantity < 1 {
			return false
		}
	}
	return true
}

// productsExist deve ser chamado com o lock adquirido.
func (s *Store) productsExist(lines []domain.SaleLine) bool {
	for _, l := range lines {
		if _, ok := s.products[l.ProductID]; !ok {
			return false
		}
	}
	return true
}

func (r *SaleRepository) Create(ctx context.Context, lines []domain.SaleLine) (int64, error) {
	if !validLines(lines) {
		return 0, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.productsExist(lines) {
		return 0, errors.ErrUnknownProduct
	}
	r.s.nextSaleID++
	id := r.s.nextSaleID
	r.s.sales[id] = &sale{date: r.s.now(), lines: append([]domain.SaleLine(nil), lines...)}
	return id, nil
}

func (r *SaleRepository) GetAll(ctx context.Context) ([]domain.SaleRow, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.sales))
	for id := range r.s.sales {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.SaleRow, 0)
	for _, id := range ids {
		sl := r.s.sales[id]
		for _, l := range byProduct(sl.lines) {
			rows = append(rows, domain.SaleRow{SaleID: id, ProductID: l.ProductID, Quantity: l.Quantity, Date: sl.date})
		}
	}
	return rows, nil
}

func (r *SaleRepository) GetByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	if saleID < 1 {
		return nil, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.lineRows(saleID), nil
}

// lineRows deve ser chamado com o lock adquirido.
func (s *Store) lineRows(saleID int64) []domain.SaleLineRow {
	rows := make([]domain.SaleLineRow, 0)
	sl, ok := s.sales[saleID]
	if !ok {
		return rows
	}
	for _, l := range byProduct(sl.lines) {
		rows = append(rows, domain.SaleLineRow{ProductID: l.ProductID, Quantity: l.Quantity, Date: sl.date})
	}
	return rows
}

// byProduct devolve uma cópia das linhas ordenada por produto, a mesma ordem
// das consultas do PostgreSQL.
func byProduct(lines []domain.SaleLine) []domain.SaleLine {
	out := append([]domain.SaleLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (r *SaleRepository) Update(ctx context.Context, saleID int64, lines []domain.SaleLine) (bool, error) {
	if saleID < 1 || !validLines(lines) {
		return false, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sl, ok := r.s.sales[saleID]
	if !ok || len(sl.lines) == 0 {
		return false, nil
	}
	if !r.s.productsExist(lines) {
		return false, errors.ErrUnknownProduct
	}
	sl.lines = append([]domain.SaleLine(nil), lines...)
	return true, nil
}

func (r *SaleRepository) DeleteByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	if saleID < 1 {
		return nil, errors.ErrMissingArgument
	}
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.lineRows(saleID)
	if len(rows) == 0 {
		return nil, errors.NewNotFoundError(validation.MsgSaleNotFound)
	}
	delete(r.s.sales, saleID)
	return rows, nil
}
