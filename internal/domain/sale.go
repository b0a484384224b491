package domain

import (
	"context"
	"time"
)

// SaleLine é um par produto/quantidade já normalizado e validado.
type SaleLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// SaleLineInput é a linha como chegou no corpo da requisição.
// O produto pode vir como "product_id" ou "productId"; os valores ficam brutos
// para que a resposta devolva exatamente o que o cliente enviou.
type SaleLineInput struct {
	ProductID    any `json:"product_id,omitempty" swaggertype:"integer"`
	ProductIDAlt any `json:"productId,omitempty" swaggertype:"integer"`
	Quantity     any `json:"quantity,omitempty" swaggertype:"integer"`
}

// SaleRow é uma linha da listagem geral: uma linha por item, com a data do cabeçalho.
type SaleRow struct {
	SaleID    int64     `json:"saleId"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Date      time.Time `json:"date"`
}

// SaleLineRow é uma linha de uma venda específica.
type SaleLineRow struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Date      time.Time `json:"date"`
}

// SaleCreated é a resposta de POST /sales.
type SaleCreated struct {
	ID        int64           `json:"id"`
	ItemsSold []SaleLineInput `json:"itemsSold"`
}

// SaleUpdated é a resposta de PUT /sales/{id}.
type SaleUpdated struct {
	SaleID      int64           `json:"saleId"`
	ItemUpdated []SaleLineInput `json:"itemUpdated"`
}

// Lines converte as linhas lidas do banco de volta para SaleLine.
func Lines(rows []SaleLineRow) []SaleLine {
	lines := make([]SaleLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, SaleLine{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return lines
}

// SaleRepository é o contrato de persistência de vendas (cabeçalho + linhas).
type SaleRepository interface {
	Create(ctx context.Context, lines []SaleLine) (int64, error)
	GetAll(ctx context.Context) ([]SaleRow, error)
	GetByID(ctx context.Context, saleID int64) ([]SaleLineRow, error)
	Update(ctx context.Context, saleID int64, lines []SaleLine) (bool, error)
	DeleteByID(ctx context.Context, saleID int64) ([]SaleLineRow, error)
}
