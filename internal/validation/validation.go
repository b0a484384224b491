// Package validation reúne as regras de formato e faixa das entradas de produtos e vendas.
// Toda função retorna nil quando a entrada passa e um apperror.AppError com o
// código HTTP e a mensagem exata quando falha.
package validation

import (
	"encoding/json"
	"math"
	"unicode/utf16"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
)

// Mensagens expostas pela API. Os textos são contrato com os clientes.
const (
	MsgNameRequired       = `"name" is required`
	MsgNameLength         = `"name" length must be at least 5 characters long`
	MsgProductExists      = "Product already exists"
	MsgQuantityRequired   = `"quantity" is required`
	MsgQuantityInvalid    = `"quantity" must be a number larger than or equal to 1`
	MsgProductIDRequired  = `"product_id" is required`
	MsgProductNotFound    = "Product not found"
	MsgSaleNotFound       = "Sale not found"
	MsgAmountNotPermitted = "Such amount is not permitted to sell"
	MsgUnknownProductSale = `Dont find any product with this "product_id"`
)

const (
	minNameLength = 5
	// maior inteiro exato em float64 (Number.MAX_SAFE_INTEGER)
	maxExactFloat = 1<<53 - 1
)

// ProductName valida o nome do produto. existing é o resultado da busca por nome
// feita pelo chamador; nil significa que a busca não foi feita e a unicidade passa.
func ProductName(name string, existing []domain.Product) error {
	switch {
	case name == "":
		return apperror.NewValidationError(MsgNameRequired)
	case nameLength(name) < minNameLength:
		return apperror.NewUnprocessableError(MsgNameLength)
	case nameTaken(name, existing):
		return apperror.NewConflictError(MsgProductExists)
	}
	return nil
}

// nameLength conta unidades UTF-16, como o comprimento de string dos clientes JSON.
func nameLength(name string) int {
	return len(utf16.Encode([]rune(name)))
}

func nameTaken(name string, existing []domain.Product) bool {
	for _, p := range existing {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ProductQuantity valida a quantidade bruta e devolve o inteiro correspondente.
// Zero é um valor presente: falha com 422, não com 400.
func ProductQuantity(raw any) (int, error) {
	if blankQuantity(raw) {
		return 0, apperror.NewValidationError(MsgQuantityRequired)
	}
	q, ok := asQuantity(raw)
	if !ok {
		return 0, apperror.NewUnprocessableError(MsgQuantityInvalid)
	}
	return q, nil
}

// asQuantity aceita inteiros entre 1 e math.MaxInt32.
func asQuantity(v any) (int, bool) {
	q, ok := AsInt(v)
	if !ok || q < 1 || q > math.MaxInt32 {
		return 0, false
	}
	return int(q), true
}

// NormalizedLine é a linha com a referência de produto já unificada.
type NormalizedLine struct {
	ProductID any
	Quantity  any
}

// NormalizeSaleLines aceita tanto "product_id" quanto "productId".
func NormalizeSaleLines(lines []domain.SaleLineInput) []NormalizedLine {
	out := make([]NormalizedLine, 0, len(lines))
	for _, l := range lines {
		pid := l.ProductID
		if pid == nil {
			pid = l.ProductIDAlt
		}
		out = append(out, NormalizedLine{ProductID: pid, Quantity: l.Quantity})
	}
	return out
}

// SaleLines normaliza e valida o conjunto de linhas de uma venda.
// As regras são avaliadas em ordem sobre todas as linhas: referência de produto,
// presença da quantidade e faixa da quantidade. A primeira regra violada vence.
// Um conjunto vazio passa aqui; quem o rejeita é o repositório de vendas.
func SaleLines(lines []domain.SaleLineInput) ([]domain.SaleLine, error) {
	normalized := NormalizeSaleLines(lines)

	ids := make([]int64, len(normalized))
	for i, l := range normalized {
		id, ok := AsInt(l.ProductID)
		if !ok || id < 1 {
			return nil, apperror.NewValidationError(MsgProductIDRequired)
		}
		ids[i] = id
	}

	for _, l := range normalized {
		if blankQuantity(l.Quantity) {
			return nil, apperror.NewValidationError(MsgQuantityRequired)
		}
	}

	out := make([]domain.SaleLine, len(normalized))
	for i, l := range normalized {
		q, ok := asQuantity(l.Quantity)
		if !ok {
			return nil, apperror.NewUnprocessableError(MsgQuantityInvalid)
		}
		out[i] = domain.SaleLine{ProductID: ids[i], Quantity: q}
	}
	return out, nil
}

// ProductFound falha com 404 quando a busca não retornou nenhum produto.
func ProductFound(products []domain.Product) (domain.Product, error) {
	if len(products) == 0 {
		return domain.Product{}, apperror.NewNotFoundError(MsgProductNotFound)
	}
	return products[0], nil
}

// blankQuantity trata como ausente nil, string vazia e false. Zero está presente.
func blankQuantity(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	return false
}

// AsInt converte um número JSON decodificado (float64, json.Number ou inteiro) para int64.
// Strings, booleanos e números fracionários não são aceitos. Floats acima de
// 2^53 são rejeitados por não serem exatos.
func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || math.Abs(t) > maxExactFloat {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return AsInt(f)
	}
	return 0, false
}
