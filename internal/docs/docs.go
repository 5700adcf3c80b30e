// Package docs registers the OpenAPI spec served at /swagger. The JSON is
// regenerated with `swag init` after handler annotation changes.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and JWT token."
        }
    },
    "paths": {
        "/cards": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cards"], "summary": "List cards", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["cards"], "summary": "Create a card", "responses": {"201": {"description": "Created"}}}
        },
        "/cards/{id}/invoices": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["invoices"], "summary": "List invoices for a card with forecasts", "responses": {"200": {"description": "OK"}}}
        },
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Monthly ledger", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Create a transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/transactions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get a transaction", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete a transaction", "responses": {"204": {"description": "No Content"}}}
        },
        "/transactions/{id}/installments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List installments", "responses": {"200": {"description": "OK"}}}
        },
        "/recurring": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "List recurring templates", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Create a recurring template", "responses": {"201": {"description": "Created"}}}
        },
        "/recurring/{id}/deactivate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Deactivate a recurring template", "responses": {"200": {"description": "OK"}}}
        },
        "/recurring/generate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Generate occurrences for a month", "responses": {"200": {"description": "OK"}}}
        },
        "/invoices/{id}/payments": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invoices"], "summary": "Pay an invoice", "responses": {"200": {"description": "OK"}}}
        },
        "/shared": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["settlement"], "summary": "Create a shared transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/splits/{id}/payments": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["settlement"], "summary": "Pay a split", "responses": {"200": {"description": "OK"}}}
        },
        "/balances": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["settlement"], "summary": "List balances", "responses": {"200": {"description": "OK"}}}
        },
        "/balances/{id}/settle": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["settlement"], "summary": "Settle a balance", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Centavo API",
	Description:      "Centavo tracks recurring and installment transactions, credit-card invoice lifecycles, and shared-expense settlement.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
