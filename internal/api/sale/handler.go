package sale

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

// SaleService define o contrato que o Handler espera da camada de Serviço.
type SaleService interface {
	Create(ctx context.Context, raw []domain.SaleLineInput) (domain.SaleCreated, error)
	GetAll(ctx context.Context) ([]domain.SaleRow, error)
	GetByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error)
	Update(ctx context.Context, saleID int64, raw []domain.SaleLineInput) (domain.SaleUpdated, error)
	DeleteByID(ctx context.Context, saleID int64) ([]domain.SaleLineRow, error)
}

// Handler agrupa os handlers de venda.
type Handler struct {
	Service SaleService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SaleService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func saleID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewNotFoundError(validation.MsgSaleNotFound)
	}
	return id, nil
}

// CreateSaleHandler lida com a requisição POST /sales.
// @Summary      Registra uma venda
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        lines  body      []domain.SaleLineInput  true  "Itens vendidos"
// @Success      201    {object}  domain.SaleCreated
// @Failure      400    {object}  domain.ErrorResponse
// @Failure      404    {object}  domain.ErrorResponse
// @Failure      422    {object}  domain.ErrorResponse
// @Router       /sales [post]
func (h *Handler) CreateSaleHandler(w http.ResponseWriter, r *http.Request) {
	var raw []domain.SaleLineInput
	if err := response.Decode(r, &raw); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Create(r.Context(), raw)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, created)
}

// ListSalesHandler lida com a requisição GET /sales.
// @Summary      Lista as vendas
// @Tags         sales
// @Produce      json
// @Success      200  {array}   domain.SaleRow
// @Failure      500  {object}  domain.ErrorResponse
// @Router       /sales [get]
func (h *Handler) ListSalesHandler(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Service.GetAll(r.Context())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, sales)
}

// GetSaleByIDHandler lida com a requisição GET /sales/{id}.
// @Summary      Busca as linhas de uma venda
// @Tags         sales
// @Produce      json
// @Param        id   path      int  true  "ID da venda"
// @Success      200  {array}   domain.SaleLineRow
// @Failure      404  {object}  domain.ErrorResponse
// @Router       /sales/{id} [get]
func (h *Handler) GetSaleByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	lines, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, lines)
}

// UpdateSaleHandler lida com a requisição PUT /sales/{id}.
// @Summary      Substitui os itens de uma venda
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id     path      int                     true  "ID da venda"
// @Param        lines  body      []domain.SaleLineInput  true  "Novos itens"
// @Success      200    {object}  domain.SaleUpdated
// @Failure      400    {object}  domain.ErrorResponse
// @Failure      404    {object}  domain.ErrorResponse
// @Failure      422    {object}  domain.ErrorResponse
// @Router       /sales/{id} [put]
func (h *Handler) UpdateSaleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var raw []domain.SaleLineInput
	if err := response.Decode(r, &raw); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, raw)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, updated)
}

// DeleteSaleHandler lida com a requisição DELETE /sales/{id}.
// @Summary      Remove uma venda e devolve o estoque
// @Tags         sales
// @Produce      json
// @Param        id   path      int  true  "ID da venda"
// @Success      200  {array}   domain.SaleLineRow
// @Failure      404  {object}  domain.ErrorResponse
// @Router       /sales/{id} [delete]
func (h *Handler) DeleteSaleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	lines, err := h.Service.DeleteByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, lines)
}
