// Package docs registers the OpenAPI document served by gin-swagger.
// Regenerate with: swag init -g internal/http/router.go -o docs
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
        "/": {
            "get": {
                "description": "Renders the static landing page.",
                "produces": ["text/html"],
                "tags": ["Pages"],
                "summary": "Home page",
                "operationId": "home",
                "responses": {
                    "200": {"description": "HTML page", "schema": {"type": "string"}}
                }
            }
        },
        "/random": {
            "get": {
                "description": "Returns one cafe chosen uniformly at random.",
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "Random cafe",
                "operationId": "randomCafe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CafeJSON"}},
                    "404": {"description": "Catalog is empty", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/all": {
            "get": {
                "description": "Returns every cafe in store order.",
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "List all cafes",
                "operationId": "allCafes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CafeList"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/search": {
            "get": {
                "description": "Title-cases loc and returns every cafe whose location equals it exactly.",
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "Search cafes by location",
                "operationId": "searchCafes",
                "parameters": [
                    {"type": "string", "example": "peckham", "description": "Location", "name": "loc", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.CafeJSON"}}},
                    "400": {"description": "Missing loc", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/add": {
            "post": {
                "description": "Creates a cafe from form (or query) values. Boolean fields are true when present and non-empty.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "Add a cafe",
                "operationId": "addCafe",
                "parameters": [
                    {"type": "string", "description": "Shared API key", "name": "api-key", "in": "header", "required": true},
                    {"type": "string", "description": "Replay key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Map URL", "name": "map_url", "in": "formData", "required": true},
                    {"type": "string", "description": "Image URL", "name": "img_url", "in": "formData", "required": true},
                    {"type": "string", "description": "Location", "name": "location", "in": "formData", "required": true},
                    {"type": "string", "example": "20-30", "description": "Seats", "name": "seats", "in": "formData", "required": true},
                    {"type": "string", "example": "£2.40", "description": "Coffee price", "name": "coffee_price", "in": "formData"},
                    {"type": "string", "description": "Any non-empty value means true", "name": "has_toilet", "in": "formData"},
                    {"type": "string", "description": "Any non-empty value means true", "name": "has_wifi", "in": "formData"},
                    {"type": "string", "description": "Any non-empty value means true", "name": "has_sockets", "in": "formData"},
                    {"type": "string", "description": "Any non-empty value means true", "name": "can_take_calls", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "400": {"description": "Missing field", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Bad api key", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Duplicate name", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/update-price/{cafe_id}": {
            "patch": {
                "description": "Overwrites the coffee price of a cafe.",
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "Update coffee price",
                "operationId": "updatePrice",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Cafe ID", "name": "cafe_id", "in": "path", "required": true},
                    {"type": "string", "example": "£3.10", "description": "New price", "name": "new_price", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "400": {"description": "Missing new_price", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Cafe not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/report-closed/{cafe_id}": {
            "delete": {
                "description": "Removes a cafe from the catalog.",
                "produces": ["application/json"],
                "tags": ["Cafes"],
                "summary": "Delete a closed cafe",
                "operationId": "reportClosed",
                "parameters": [
                    {"type": "string", "description": "Shared API key", "name": "api-key", "in": "header", "required": true},
                    {"type": "integer", "example": 1, "description": "Cafe ID", "name": "cafe_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "403": {"description": "Bad api key", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Cafe not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.CafeJSON": {
            "type": "object",
            "properties": {
                "can_take_calls": {"type": "boolean", "example": true},
                "coffee_price": {"type": "string", "example": "£2.40"},
                "has_sockets": {"type": "boolean", "example": true},
                "has_toilet": {"type": "boolean", "example": true},
                "has_wifi": {"type": "boolean", "example": false},
                "id": {"type": "integer", "example": 1},
                "img_url": {"type": "string", "example": "https://example.com/photo.jpg"},
                "location": {"type": "string", "example": "Peckham"},
                "map_url": {"type": "string", "example": "https://g.page/example"},
                "name": {"type": "string", "example": "Science Gallery London"},
                "seats": {"type": "string", "example": "20-30"}
            }
        },
        "domain.CafeList": {
            "type": "object",
            "properties": {
                "cafe": {"type": "array", "items": {"$ref": "#/definitions/domain.CafeJSON"}}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.SuccessBody": {
            "type": "object",
            "properties": {
                "success": {"type": "string", "example": "Successfully added Bean."}
            }
        },
        "handlers.SuccessResponse": {
            "type": "object",
            "properties": {
                "response": {"$ref": "#/definitions/handlers.SuccessBody"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cafe & Wifi API",
	Description:      "Catalog of laptop-friendly cafes: random pick, listing, location search, and api-key gated mutations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
