package product

import (
	"context"
	"net/http"
	"strconv"

	"storemanager/internal/api/response"
	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/validation"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	Create(ctx context.Context, name string, rawQuantity any) (domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	Update(ctx context.Context, id int64, name string, rawQuantity any) (domain.Product, error)
	DeleteByID(ctx context.Context, id int64) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// productID lê {id} da rota. Um id não numérico é tratado como produto inexistente.
func productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewNotFoundError(validation.MsgProductNotFound)
	}
	return id, nil
}

// CreateProductHandler lida com a requisição POST /products.
// @Summary      Cria um produto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body      domain.ProductRequest  true  "Nome e quantidade"
// @Success      201      {object}  domain.Product
// @Failure      400      {object}  domain.ErrorResponse
// @Failure      409      {object}  domain.ErrorResponse
// @Failure      422      {object}  domain.ErrorResponse
// @Router       /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.Create(r.Context(), req.Name, req.Quantity)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, product)
}

// ListProductsHandler lida com a requisição GET /products.
// @Summary      Lista os produtos
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Failure      500  {object}  domain.ErrorResponse
// @Router       /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.GetAll(r.Context())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, products)
}

// GetProductByIDHandler lida com a requisição GET /products/{id}.
// @Summary      Busca um produto
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "ID do produto"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  domain.ErrorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, product)
}

// UpdateProductHandler lida com a requisição PUT /products/{id}.
// @Summary      Atualiza um produto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "ID do produto"
// @Param        product  body      domain.ProductRequest  true  "Nome e quantidade"
// @Success      200      {object}  domain.Product
// @Failure      400      {object}  domain.ErrorResponse
// @Failure      404      {object}  domain.ErrorResponse
// @Failure      422      {object}  domain.ErrorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req domain.ProductRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.Update(r.Context(), id, req.Name, req.Quantity)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, product)
}

// DeleteProductHandler lida com a requisição DELETE /products/{id}.
// @Summary      Remove um produto
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "ID do produto"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  domain.ErrorResponse
// @Failure      409  {object}  domain.ErrorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.DeleteByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, product)
}
