package stockservice

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/validation"
)

// ProductStock define o que a reconciliação precisa do repositório de produtos.
type ProductStock interface {
	GetQuantity(ctx context.Context, id int64) (int, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (bool, error)
}

// SaleLines define o que a reconciliação precisa do repositório de vendas.
type SaleLines interface {
	GetByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error)
	DeleteByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error)
}

// Adjustment é a mudança de estoque de um produto: de Previous para Next.
type Adjustment struct {
	ProductID int64
	Previous  int
	Next      int
}

// Delta é a variação com sinal aplicada ao estoque.
func (a Adjustment) Delta() int { return a.Next - a.Previous }

// Plan é o conjunto validado de ajustes, calculado antes de qualquer escrita.
type Plan []Adjustment

// Service reconcilia o estoque dos produtos com o ciclo de vida das vendas.
// Toda operação tem duas fases: planejar (ler e validar todos os ajustes) e
// aplicar (gravar). Nada é gravado se algum ajuste for inválido.
type Service struct {
	products ProductStock
	sales    SaleLines
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(products ProductStock, sales SaleLines, logger logger.Logger) *Service {
	return &Service{products: products, sales: sales, logger: logger}
}

// deltas agrega a variação por produto mantendo a ordem de aparição.
type deltas struct {
	order []int64
	by    map[int64]int
}

func newDeltas() *deltas { return &deltas{by: make(map[int64]int)} }

func (d *deltas) add(productID int64, delta int) {
	if _, seen := d.by[productID]; !seen {
		d.order = append(d.order, productID)
	}
	d.by[productID] += delta
}

// PlanOutgoing calcula a baixa de estoque das linhas. Qualquer produto que
// ficaria negativo (ou cuja quantidade não pode ser lida) falha com 422.
func (s *Service) PlanOutgoing(ctx context.Context, lines []domain.SaleLine) (Plan, error) {
	d := newDeltas()
	for _, l := range lines {
		d.add(l.ProductID, -l.Quantity)
	}
	return s.plan(ctx, d, true)
}

// PlanIncoming calcula a devolução de estoque das linhas. Não há limite
// inferior: só falha quando a quantidade de algum produto não pode ser lida.
func (s *Service) PlanIncoming(ctx context.Context, lines []domain.SaleLine) (Plan, error) {
	d := newDeltas()
	for _, l := range lines {
		d.add(l.ProductID, l.Quantity)
	}
	return s.plan(ctx, d, false)
}

func notPermitted() error {
	return apperror.NewBusinessRuleError(validation.MsgAmountNotPermitted)
}

// plan lê as quantidades atuais em paralelo e valida cada candidato.
// floor indica a fase de saída: candidatos negativos e produtos ausentes viram 422.
func (s *Service) plan(ctx context.Context, d *deltas, floor bool) (Plan, error) {
	ids := make([]int64, 0, len(d.order))
	for _, id := range d.order {
		if d.by[id] != 0 {
			ids = append(ids, id)
		}
	}

	current := make([]int, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			q, err := s.products.GetQuantity(gctx, id)
			if err != nil {
				return fmt.Errorf("produto %d: %w", id, err)
			}
			current[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if isMissingProduct(err) {
			s.logger.Warn("Produto da venda não encontrado ao planejar estoque.", map[string]interface{}{"error": err.Error()})
			if floor {
				return nil, notPermitted()
			}
			return nil, apperror.NewNotFoundError(validation.MsgProductNotFound)
		}
		s.logger.Error("Falha ao ler quantidades para reconciliação.", err)
		return nil, apperror.NewInternalError("Falha ao ler estoque.", err)
	}

	plan := make(Plan, len(ids))
	for i, id := range ids {
		next := current[i] + d.by[id]
		if floor && next < 0 {
			s.logger.Info("Quantidade insuficiente para a venda.", map[string]interface{}{
				"product_id": id,
				"current":    current[i],
				"delta":      d.by[id],
			})
			return nil, notPermitted()
		}
		plan[i] = Adjustment{ProductID: id, Previous: current[i], Next: next}
	}
	return plan, nil
}

func isMissingProduct(err error) bool {
	var notFound *apperror.NotFoundError
	return errors.As(err, &notFound) || errors.Is(err, apperror.ErrMissingArgument)
}

// Apply grava todos os ajustes do plano em sequência. Se uma escrita falhar,
// os produtos já gravados voltam à quantidade anterior e um InternalError é retornado.
func (s *Service) Apply(ctx context.Context, plan Plan) error {
	for i, adj := range plan {
		ok, err := s.products.UpdateQuantity(ctx, adj.ProductID, adj.Next)
		if err == nil && !ok {
			err = apperror.NewNotFoundError(validation.MsgProductNotFound)
		}
		if err != nil {
			s.logger.Error("Falha ao gravar ajuste de estoque; desfazendo ajustes anteriores.", err)
			s.rollback(ctx, plan[:i])
			return apperror.NewInternalError(fmt.Sprintf("Falha ao ajustar estoque do produto %d.", adj.ProductID), err)
		}
	}

	if len(plan) > 0 {
		s.logger.Debug("Plano de estoque aplicado.", map[string]interface{}{"adjustments": len(plan)})
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, applied Plan) {
	for _, adj := range applied {
		if _, err := s.products.UpdateQuantity(ctx, adj.ProductID, adj.Previous); err != nil {
			s.logger.Error(fmt.Sprintf("Estoque divergente: não foi possível restaurar o produto %d.", adj.ProductID), err)
		}
	}
}

// Revert desfaz um plano já aplicado, aplicando as variações inversas sobre
// as quantidades atuais.
func (s *Service) Revert(ctx context.Context, plan Plan) error {
	d := newDeltas()
	for _, adj := range plan {
		d.add(adj.ProductID, -adj.Delta())
	}
	inverse, err := s.plan(ctx, d, false)
	if err != nil {
		return err
	}
	return s.Apply(ctx, inverse)
}

// ApplyOutgoing planeja e aplica a baixa de estoque das linhas.
func (s *Service) ApplyOutgoing(ctx context.Context, lines []domain.SaleLine) (Plan, error) {
	plan, err := s.PlanOutgoing(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ApplyIncoming planeja e aplica a devolução de estoque das linhas.
func (s *Service) ApplyIncoming(ctx context.Context, lines []domain.SaleLine) (Plan, error) {
	plan, err := s.PlanIncoming(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ReconcileOnCreate dá baixa no estoque das linhas de uma nova venda.
// O plano aplicado é devolvido para que o chamador possa revertê-lo.
func (s *Service) ReconcileOnCreate(ctx context.Context, lines []domain.SaleLine) (Plan, error) {
	return s.ApplyOutgoing(ctx, lines)
}

// ReconcileOnUpdate troca o efeito das linhas antigas pelo das novas em um
// único plano (+antigas −novas por produto), validado antes de qualquer escrita.
func (s *Service) ReconcileOnUpdate(ctx context.Context, saleID int64, newLines []domain.SaleLine) (Plan, error) {
	old, err := s.currentLines(ctx, saleID)
	if err != nil {
		return nil, err
	}

	d := newDeltas()
	for _, l := range old {
		d.add(l.ProductID, l.Quantity)
	}
	for _, l := range newLines {
		d.add(l.ProductID, -l.Quantity)
	}

	plan, err := s.plan(ctx, d, true)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ReconcileOnDelete remove a venda e devolve o estoque das suas linhas.
// A devolução é planejada antes da remoção; se a escrita falhar depois que
// a venda já foi removida, o erro é retornado e a divergência registrada.
func (s *Service) ReconcileOnDelete(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	rows, err := s.currentLines(ctx, saleID)
	if err != nil {
		return nil, err
	}

	plan, err := s.PlanIncoming(ctx, domain.Lines(rows))
	if err != nil {
		return nil, err
	}

	deleted, err := s.sales.DeleteByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := s.Apply(ctx, plan); err != nil {
		s.logger.Error(fmt.Sprintf("Estoque divergente: venda %d removida sem devolução de estoque.", saleID), err)
		return nil, err
	}
	return deleted, nil
}

// currentLines lê as linhas atuais da venda; nenhuma linha significa venda inexistente.
func (s *Service) currentLines(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	rows, err := s.sales.GetByID(ctx, saleID)
	if errors.Is(err, apperror.ErrMissingArgument) || (err == nil && len(rows) == 0) {
		return nil, apperror.NewNotFoundError(validation.MsgSaleNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}
