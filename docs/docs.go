// Package docs registra a especificação OpenAPI servida em /swagger/.
// Gerado a partir das anotações dos handlers; regenere com `swag init -g cmd/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Lista os produtos",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Cria um produto",
                "parameters": [
                    {"description": "Nome e quantidade", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Busca um produto",
                "parameters": [
                    {"type": "integer", "description": "ID do produto", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Atualiza um produto",
                "parameters": [
                    {"type": "integer", "description": "ID do produto", "name": "id", "in": "path", "required": true},
                    {"description": "Nome e quantidade", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Remove um produto",
                "parameters": [
                    {"type": "integer", "description": "ID do produto", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/sales": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Lista as vendas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleRow"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Registra uma venda",
                "parameters": [
                    {"description": "Itens vendidos", "name": "lines", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineInput"}}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.SaleCreated"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/sales/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Busca as linhas de uma venda",
                "parameters": [
                    {"type": "integer", "description": "ID da venda", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineRow"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Substitui os itens de uma venda",
                "parameters": [
                    {"type": "integer", "description": "ID da venda", "name": "id", "in": "path", "required": true},
                    {"description": "Novos itens", "name": "lines", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineInput"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SaleUpdated"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Remove uma venda e devolve o estoque",
                "parameters": [
                    {"type": "integer", "description": "ID da venda", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineRow"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ErrorResponse": {
            "description": "Estrutura padronizada para respostas de erro na API.",
            "type": "object",
            "properties": {"message": {"type": "string", "example": "Product not found"}}
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Lemonade"},
                "quantity": {"type": "integer", "example": 10}
            }
        },
        "domain.ProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Lemonade"},
                "quantity": {"type": "integer", "example": 10}
            }
        },
        "domain.SaleLineInput": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer"},
                "productId": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "domain.SaleCreated": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "itemsSold": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineInput"}}
            }
        },
        "domain.SaleUpdated": {
            "type": "object",
            "properties": {
                "saleId": {"type": "integer"},
                "itemUpdated": {"type": "array", "items": {"$ref": "#/definitions/domain.SaleLineInput"}}
            }
        },
        "domain.SaleRow": {
            "type": "object",
            "properties": {
                "saleId": {"type": "integer"},
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "date": {"type": "string"}
            }
        },
        "domain.SaleLineRow": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "date": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo guarda as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Store Manager API",
	Description:      "Cadastro de produtos e vendas com reconciliação de estoque.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
