package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// InternalServerErrorMessage é a única mensagem exposta ao cliente para falhas 500.
const InternalServerErrorMessage = "Internal server error"

// AppError é a interface central para todos os erros customizados do StoreManager.
// O Handler usa HTTPStatus e Message para montar a resposta {"message": ...}.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Message() string  // Mensagem visível ao cliente
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// Erros sentinela das camadas de persistência. Os serviços os traduzem
// para as respostas da API.
var (
	// ErrMissingArgument indica que um argumento obrigatório não foi informado.
	// O repositório retorna este erro sem executar nenhuma query.
	ErrMissingArgument = stderrors.New("argumento obrigatório ausente")

	// ErrUnknownProduct indica que uma linha de venda referencia um produto inexistente.
	ErrUnknownProduct = stderrors.New("linha de venda referencia produto inexistente")
)

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
// Status carrega o código exato (400, 409 ou 422).
type ValidationError struct {
	Status int
	Msg    string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Message() string  { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) Unwrap() error    { return nil }
func (e *ValidationError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// NewValidationError cria um erro de validação 400.
func NewValidationError(msg string) AppError {
	return &ValidationError{Status: http.StatusBadRequest, Msg: msg}
}

// NewUnprocessableError cria um erro de validação 422 (valor presente, mas fora da regra).
func NewUnprocessableError(msg string) AppError {
	return &ValidationError{Status: http.StatusUnprocessableEntity, Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Message() string  { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito de estado (e.g., recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Message() string  { return e.Msg }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// BusinessRuleError representa uma regra de negócio violada (e.g., estoque insuficiente).
type BusinessRuleError struct {
	Msg string
}

func (e *BusinessRuleError) Error() string    { return fmt.Sprintf("Regra de negócio: %s", e.Msg) }
func (e *BusinessRuleError) Message() string  { return e.Msg }
func (e *BusinessRuleError) Category() string { return "BUSINESS_RULE" }
func (e *BusinessRuleError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *BusinessRuleError) Unwrap() error    { return nil }

// NewBusinessRuleError cria um erro de regra de negócio.
func NewBusinessRuleError(msg string) AppError {
	return &BusinessRuleError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Erro Interno: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("Erro Interno: %s", e.Msg)
}

// Message nunca expõe o detalhe interno ao cliente.
func (e *InternalError) Message() string  { return InternalServerErrorMessage }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB)", msg), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, a categoria e a mensagem pública.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Message()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", InternalServerErrorMessage
}
