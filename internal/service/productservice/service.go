package productservice

import (
	"context"
	"errors"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/validation"
)

// Service orquestra validação e persistência de produtos.
type Service struct {
	repo   domain.ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo domain.ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create valida nome (com busca de unicidade) e quantidade e insere o produto.
func (s *Service) Create(ctx context.Context, name string, rawQuantity any) (domain.Product, error) {
	var existing []domain.Product
	if name != "" {
		found, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return domain.Product{}, err
		}
		existing = found
	}

	if err := validation.ProductName(name, existing); err != nil {
		return domain.Product{}, err
	}
	quantity, err := validation.ProductQuantity(rawQuantity)
	if err != nil {
		return domain.Product{}, err
	}

	id, err := s.repo.Create(ctx, name, quantity)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": id, "name": name})
	return domain.Product{ID: id, Name: name, Quantity: quantity}, nil
}

// GetAll lista todos os produtos.
func (s *Service) GetAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetByID busca um produto; id inválido ou inexistente resulta em 404.
func (s *Service) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil && !isNotFound(err) {
		return domain.Product{}, err
	}

	var found []domain.Product
	if err == nil {
		found = []domain.Product{product}
	}
	return validation.ProductFound(found)
}

// Update valida nome e quantidade (sem checar unicidade) e substitui o produto.
func (s *Service) Update(ctx context.Context, id int64, name string, rawQuantity any) (domain.Product, error) {
	if err := validation.ProductName(name, nil); err != nil {
		return domain.Product{}, err
	}
	quantity, err := validation.ProductQuantity(rawQuantity)
	if err != nil {
		return domain.Product{}, err
	}

	ok, err := s.repo.Update(ctx, id, name, quantity)
	if errors.Is(err, apperror.ErrMissingArgument) || (err == nil && !ok) {
		return domain.Product{}, apperror.NewNotFoundError(validation.MsgProductNotFound)
	}
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{ID: id, Name: name, Quantity: quantity}, nil
}

// DeleteByID remove o produto e devolve o estado anterior à remoção.
func (s *Service) DeleteByID(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	ok, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError(validation.MsgProductNotFound)
	}

	s.logger.Info("Produto removido.", map[string]interface{}{"product_id": id})
	return product, nil
}

func isNotFound(err error) bool {
	var notFound *apperror.NotFoundError
	return errors.As(err, &notFound) || errors.Is(err, apperror.ErrMissingArgument)
}
