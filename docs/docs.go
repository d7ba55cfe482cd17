// Package docs registers the OpenAPI description of the account console with swag.
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
        "/login": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login entry point",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/views/home": {
            "get": {
                "tags": ["views"],
                "summary": "Role home",
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/views/{view}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Role dashboard",
                "parameters": [
                    {"type": "string", "description": "admin, manager, worker or customer", "name": "view", "in": "path", "required": true},
                    {"type": "string", "description": "all, workers, managers, admins, customers", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "303": {"description": "See Other"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/roster/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["roster"],
                "summary": "Refresh roster",
                "parameters": [
                    {"type": "string", "description": "all, workers, managers, admins, customers", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/roster/workers": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["roster"],
                "summary": "Add worker",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.workerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/roster/workers/draft": {
            "delete": {
                "tags": ["roster"],
                "summary": "Discard worker draft",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/roster/{id}": {
            "delete": {
                "tags": ["roster"],
                "summary": "Delete user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Profile editors",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Delete own account",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/profile/description": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Clear description",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/profile/{field}/{action}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Drive a field editor (begin, draft, submit, cancel)",
                "parameters": [
                    {"type": "string", "description": "name or description", "name": "field", "in": "path", "required": true},
                    {"type": "string", "description": "begin, draft, submit or cancel", "name": "action", "in": "path", "required": true},
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/handler.draftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.signupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.workerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.draftRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
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
	Title:            "Account Console API",
	Description:      "Local console for the role-based account backend: session, dashboards, roster and self editors.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
