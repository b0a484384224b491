package domain

import "context"

// Product representa o item do estoque (a Entidade).
// Quantity nunca fica negativa após uma operação confirmada.
type Product struct {
	ID       int64  `json:"id" example:"1"`
	Name     string `json:"name" example:"Lemonade"`
	Quantity int    `json:"quantity" example:"10"`
}

// ProductRequest é o payload de criação/atualização de produto.
// Quantity é mantida como valor bruto para distinguir "ausente" (nil) de "inválido" (0, "abc").
type ProductRequest struct {
	Name     string `json:"name" example:"Lemonade"`
	Quantity any    `json:"quantity" swaggertype:"integer" example:"10"`
}

// --- Interfaces de Contrato ---

// ProductRepository é o contrato de persistência de produtos.
// Implementado por productrepo (PostgreSQL) e memory (em memória).
type ProductRepository interface {
	Create(ctx context.Context, name string, quantity int) (int64, error)
	GetAll(ctx context.Context) ([]Product, error)
	GetByName(ctx context.Context, name string) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, id int64, name string, quantity int) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	GetQuantity(ctx context.Context, id int64) (int, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (bool, error)
}
