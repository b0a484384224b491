package saleservice

import (
	"context"
	"errors"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/events"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/service/stockservice"
	"storemanager/internal/validation"
)

// StockReconciler é o que o serviço de vendas usa do serviço de estoque.
type StockReconciler interface {
	ReconcileOnCreate(ctx context.Context, lines []domain.SaleLine) (stockservice.Plan, error)
	ReconcileOnUpdate(ctx context.Context, saleID int64, lines []domain.SaleLine) (stockservice.Plan, error)
	ReconcileOnDelete(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error)
	Revert(ctx context.Context, plan stockservice.Plan) error
}

// Service orquestra validação, estoque e persistência das vendas.
type Service struct {
	repo      domain.SaleRepository
	stock     StockReconciler
	publisher events.Publisher
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Vendas.
// publisher nil equivale a events.NoopPublisher.
func NewService(repo domain.SaleRepository, stock StockReconciler, publisher events.Publisher, logger logger.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{repo: repo, stock: stock, publisher: publisher, logger: logger}
}

// Create valida as linhas, dá baixa no estoque e registra a venda.
// Se o registro falhar, a baixa é desfeita.
func (s *Service) Create(ctx context.Context, raw []domain.SaleLineInput) (domain.SaleCreated, error) {
	lines, err := validation.SaleLines(raw)
	if err != nil {
		return domain.SaleCreated{}, err
	}

	plan, err := s.stock.ReconcileOnCreate(ctx, lines)
	if err != nil {
		return domain.SaleCreated{}, err
	}

	saleID, err := s.repo.Create(ctx, lines)
	if err != nil {
		s.revert(ctx, plan)
		return domain.SaleCreated{}, persistError(err)
	}

	s.logger.Info("Venda registrada.", map[string]interface{}{"sale_id": saleID, "lines": len(lines)})
	s.publish(ctx, events.NewSaleEvent(events.SaleCreated, saleID, lines))
	return domain.SaleCreated{ID: saleID, ItemsSold: raw}, nil
}

// GetAll lista todas as linhas de todas as vendas.
func (s *Service) GetAll(ctx context.Context) ([]domain.SaleRow, error) {
	return s.repo.GetAll(ctx)
}

// GetByID retorna as linhas da venda; nenhuma linha resulta em 404.
func (s *Service) GetByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	rows, err := s.repo.GetByID(ctx, saleID)
	if errors.Is(err, apperror.ErrMissingArgument) || (err == nil && len(rows) == 0) {
		return nil, apperror.NewNotFoundError(validation.MsgSaleNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update troca as linhas da venda, reconciliando o estoque pela diferença.
func (s *Service) Update(ctx context.Context, saleID int64, raw []domain.SaleLineInput) (domain.SaleUpdated, error) {
	lines, err := validation.SaleLines(raw)
	if err != nil {
		return domain.SaleUpdated{}, err
	}

	plan, err := s.stock.ReconcileOnUpdate(ctx, saleID, lines)
	if err != nil {
		return domain.SaleUpdated{}, err
	}

	// Linhas recusadas pelo repositório (conjunto vazio) contam como venda não atualizada.
	ok, err := s.repo.Update(ctx, saleID, lines)
	if errors.Is(err, apperror.ErrMissingArgument) || (err == nil && !ok) {
		s.revert(ctx, plan)
		return domain.SaleUpdated{}, apperror.NewNotFoundError(validation.MsgSaleNotFound)
	}
	if err != nil {
		s.revert(ctx, plan)
		return domain.SaleUpdated{}, persistError(err)
	}

	s.logger.Info("Venda atualizada.", map[string]interface{}{"sale_id": saleID, "lines": len(lines)})
	s.publish(ctx, events.NewSaleEvent(events.SaleUpdated, saleID, lines))
	return domain.SaleUpdated{SaleID: saleID, ItemUpdated: raw}, nil
}

// DeleteByID remove a venda, devolve o estoque e retorna as linhas removidas.
func (s *Service) DeleteByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error) {
	rows, err := s.stock.ReconcileOnDelete(ctx, saleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Venda removida.", map[string]interface{}{"sale_id": saleID})
	s.publish(ctx, events.NewSaleEvent(events.SaleDeleted, saleID, domain.Lines(rows)))
	return rows, nil
}

// persistError traduz a falha de gravação da venda. Produto desconhecido ou
// argumento ausente viram 404; o resto é falha interna.
func persistError(err error) error {
	if errors.Is(err, apperror.ErrMissingArgument) || errors.Is(err, apperror.ErrUnknownProduct) {
		return apperror.NewNotFoundError(validation.MsgUnknownProductSale)
	}
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewInternalError("Falha ao gravar venda.", err)
}

func (s *Service) revert(ctx context.Context, plan stockservice.Plan) {
	if err := s.stock.Revert(ctx, plan); err != nil {
		s.logger.Error("Estoque divergente: não foi possível desfazer o ajuste da venda.", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.SaleEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Falha ao publicar evento de venda.", map[string]interface{}{
			"type":    event.Type,
			"sale_id": event.SaleID,
			"error":   err.Error(),
		})
	}
}
