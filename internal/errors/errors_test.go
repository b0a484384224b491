package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "storemanager/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	cause := stderrors.New("pq: connection refused")

	tests := []struct {
		name     string
		err      error
		status   int
		category string
		message  string
	}{
		{"validação", apperror.NewValidationError(`"name" is required`), http.StatusBadRequest, "VALIDATION_ERROR", `"name" is required`},
		{"validação 422", apperror.NewUnprocessableError(`"quantity" must be a number larger than or equal to 1`), http.StatusUnprocessableEntity, "VALIDATION_ERROR", `"quantity" must be a number larger than or equal to 1`},
		{"não encontrado", apperror.NewNotFoundError("Sale not found"), http.StatusNotFound, "NOT_FOUND", "Sale not found"},
		{"conflito", apperror.NewConflictError("Product already exists"), http.StatusConflict, "CONFLICT", "Product already exists"},
		{"regra de negócio", apperror.NewBusinessRuleError("Such amount is not permitted to sell"), http.StatusUnprocessableEntity, "BUSINESS_RULE", "Such amount is not permitted to sell"},
		{"banco não vaza detalhe", apperror.NewDBError("Falha ao buscar", cause), http.StatusInternalServerError, "INTERNAL_ERROR", apperror.InternalServerErrorMessage},
		{"encapsulado", fmt.Errorf("contexto: %w", apperror.NewNotFoundError("Product not found")), http.StatusNotFound, "NOT_FOUND", "Product not found"},
		{"não tipado", cause, http.StatusInternalServerError, "UNKNOWN_ERROR", apperror.InternalServerErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, category, message := apperror.MapToHTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestInternalError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("deadlock")
	err := apperror.NewDBError("Falha ao alterar produto", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "deadlock")
}
