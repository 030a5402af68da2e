// Package docs registers the OpenAPI description served under /swagger.
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
        "/habits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "List habits with their streaks",
                "parameters": [
                    {"type": "string", "description": "IANA timezone, defaults to UTC", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.HabitWithStreaks"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "Create a habit",
                "parameters": [
                    {"description": "Habit", "name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createHabitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Habit"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/habits/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["habits"],
                "summary": "Delete a habit and its completions",
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/habits/{id}/completions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["completions"],
                "summary": "Completion dates of a habit",
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.datesResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["completions"],
                "summary": "Mark a habit done on a day",
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "id", "in": "path", "required": true},
                    {"description": "Day as YYYY-MM-DD or RFC 3339", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.completeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Completion"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/habits/{id}/completions/{date}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["completions"],
                "summary": "Remove the completions of a day",
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/habits/{id}/streaks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["streaks"],
                "summary": "Current and best streak of a habit",
                "parameters": [
                    {"type": "string", "description": "Habit ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "IANA timezone, defaults to UTC", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/streak.Result"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/streaks/compute": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["streaks"],
                "summary": "Compute streaks for arbitrary dates",
                "parameters": [
                    {"description": "Dates and reference", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.computeRequest"}},
                    {"type": "string", "description": "IANA timezone applied to the reference", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/streak.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Habit": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "habit_view": {"type": "boolean"},
                "daily_goal": {"type": "integer"},
                "color": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.HabitWithStreaks": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "habit_view": {"type": "boolean"},
                "daily_goal": {"type": "integer"},
                "color": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "streaks": {"$ref": "#/definitions/streak.Result"},
                "completed_today": {"type": "integer"}
            }
        },
        "domain.Completion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "habit_id": {"type": "string"},
                "user_id": {"type": "string"},
                "completion_date": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "streak.Result": {
            "type": "object",
            "properties": {
                "current": {"type": "integer"},
                "best": {"type": "integer"}
            }
        },
        "http.createHabitRequest": {
            "type": "object",
            "required": ["title", "description"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "habit_view": {"type": "boolean"},
                "daily_goal": {"type": "integer"},
                "color": {"type": "string"}
            }
        },
        "http.completeRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string"}
            }
        },
        "http.computeRequest": {
            "type": "object",
            "required": ["dates"],
            "properties": {
                "dates": {"type": "array", "items": {"type": "string"}},
                "reference": {"type": "string"}
            }
        },
        "http.datesResponse": {
            "type": "object",
            "properties": {
                "dates": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Streaks API",
	Description:      "Habits, completions and their current and best streaks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
