// Package response padroniza as respostas JSON dos handlers.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/pkg/logger"
)

// MsgInvalidJSON é devolvida quando o corpo da requisição não é JSON válido.
const MsgInvalidJSON = "Invalid JSON payload"

// JSON escreve data codificado com o status informado.
func JSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Error mapeia err para o status HTTP e escreve {"message": ...}.
// Erros 5xx são registrados com a causa; a mensagem ao cliente é sempre genérica.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}

	JSON(w, log, status, domain.ErrorResponse{Message: message})
}

// Decode lê o corpo JSON em dst. Números ficam como json.Number para que a
// validação distinga inteiros de decimais e o eco devolva o valor original.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError(MsgInvalidJSON)
	}
	return nil
}
