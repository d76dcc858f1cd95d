// Package docs provides the Swagger specification served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login and get JWT token",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List items across all users",
                "parameters": [
                    {"type": "integer", "default": 0, "name": "skip", "in": "query"},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Create a new item",
                "parameters": [
                    {
                        "description": "Item creation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreateItemRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Item"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/items/my": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List the authenticated user's items",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "distributor", "in": "query"},
                    {"type": "integer", "name": "min_stock", "in": "query"},
                    {"type": "integer", "name": "max_stock", "in": "query"},
                    {"type": "number", "name": "min_price", "in": "query"},
                    {"type": "number", "name": "max_price", "in": "query"},
                    {"type": "string", "name": "sort_by", "in": "query"},
                    {"type": "string", "default": "asc", "name": "order", "in": "query"},
                    {"type": "integer", "default": 0, "name": "skip", "in": "query"},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}}
                }
            }
        },
        "/items/my/count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Count the authenticated user's items",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CountResponse"}}
                }
            }
        },
        "/items/my/low-stock": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List items at or below their low-stock threshold",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Item"}}}
                }
            }
        },
        "/items/my/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List the distinct categories of the user's items",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            }
        },
        "/items/my/distributors": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List the distinct distributors of the user's items",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            }
        },
        "/items/barcode/{barcode}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Look up one of the user's items by barcode",
                "parameters": [
                    {"type": "string", "name": "barcode", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Item"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/items/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Get one item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Item"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Update an item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdateItemRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Item"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Delete an item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Record a stock transaction",
                "parameters": [
                    {
                        "description": "Transaction request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreateTransactionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.StockTransaction"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/transactions/my": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List the user's stock transactions",
                "parameters": [
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "item_id", "in": "query"},
                    {"type": "integer", "default": 0, "name": "skip", "in": "query"},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}}
                }
            }
        },
        "/transactions/my/count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Count the user's stock transactions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CountResponse"}}
                }
            }
        },
        "/transactions/my/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Aggregate the user's transactions by type",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TransactionStats"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get one stock transaction",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StockTransaction"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update a stock transaction's descriptive fields",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdateTransactionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StockTransaction"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.StandardError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.StandardError"}}
                }
            }
        },
        "/activity/my": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "List the user's recent activity",
                "parameters": [
                    {"type": "integer", "default": 0, "name": "skip", "in": "query"},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}}
                }
            }
        },
        "/export/items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Download the user's items as a spreadsheet",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/export/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Download the user's stock transactions as a spreadsheet",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "example": "admin"},
                "password": {"type": "string", "example": "admin123"}
            }
        },
        "auth.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "type": {"type": "string", "example": "Bearer"},
                "expires_in": {"type": "integer", "example": 600},
                "expires_at": {"type": "string"}
            }
        },
        "errors.StandardError": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "NotFound"},
                "message": {"type": "string", "example": "item not found"},
                "details": {"type": "string", "example": "ID: 550e8400-e29b-41d4-a716-446655440000"}
            }
        },
        "handlers.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "item deleted successfully"}
            }
        },
        "handlers.CountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 42}
            }
        },
        "handlers.ListResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "skip": {"type": "integer", "example": 0},
                "limit": {"type": "integer", "example": 50}
            }
        },
        "handlers.CreateItemRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "example": "Arabica Coffee Beans 1kg"},
                "description": {"type": "string"},
                "category": {"type": "string", "example": "beverages"},
                "distributor": {"type": "string"},
                "unit": {"type": "string", "example": "bag"},
                "stock": {"type": "integer", "minimum": 0, "example": 100},
                "low_stock_threshold": {"type": "integer", "example": 5},
                "purchase_price": {"type": "number", "example": 8.5},
                "sell_price": {"type": "number", "example": 12.99},
                "barcode": {"type": "string", "example": "7891234567895"}
            }
        },
        "handlers.UpdateItemRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "distributor": {"type": "string"},
                "unit": {"type": "string"},
                "stock": {"type": "integer"},
                "low_stock_threshold": {"type": "integer"},
                "purchase_price": {"type": "number"},
                "sell_price": {"type": "number"}
            }
        },
        "handlers.CreateTransactionRequest": {
            "type": "object",
            "required": ["item_id", "transaction_type", "quantity", "reason"],
            "properties": {
                "item_id": {"type": "string"},
                "transaction_type": {"type": "string", "enum": ["loss", "damage", "return"], "example": "loss"},
                "quantity": {"type": "integer", "minimum": 1, "example": 3},
                "reason": {"type": "string", "example": "expired"},
                "notes": {"type": "string"},
                "cost_impact": {"type": "number", "example": 25.5},
                "reference_number": {"type": "string", "example": "AUD-2024-017"}
            }
        },
        "handlers.UpdateTransactionRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"},
                "notes": {"type": "string"},
                "cost_impact": {"type": "number"},
                "reference_number": {"type": "string"}
            }
        },
        "models.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "distributor": {"type": "string"},
                "unit": {"type": "string"},
                "stock": {"type": "integer"},
                "low_stock_threshold": {"type": "integer"},
                "purchase_price": {"type": "number"},
                "sell_price": {"type": "number"},
                "barcode": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.StockTransaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "item_id": {"type": "string"},
                "user_id": {"type": "string"},
                "transaction_type": {"type": "string"},
                "quantity": {"type": "integer"},
                "reason": {"type": "string"},
                "notes": {"type": "string"},
                "cost_impact": {"type": "number"},
                "reference_number": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.TypeStats": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"},
                "cost": {"type": "number"},
                "count": {"type": "integer"}
            }
        },
        "models.TransactionStats": {
            "type": "object",
            "properties": {
                "loss": {"$ref": "#/definitions/models.TypeStats"},
                "damage": {"$ref": "#/definitions/models.TypeStats"},
                "return": {"$ref": "#/definitions/models.TypeStats"},
                "total": {"$ref": "#/definitions/models.TypeStats"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Inventory Service API",
	Description:      "Multi-tenant inventory management API: per-user items with stock tracking, typed stock transactions (loss/damage/return), low-stock evaluation, activity trail and spreadsheet export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
