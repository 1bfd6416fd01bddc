// Package docs holds the OpenAPI description of the portal, registered with
// swag and served by echo-swagger.
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
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionView"}}
                }
            }
        },
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.loginFailureResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.loginFailureResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "423": {"description": "Locked", "schema": {"$ref": "#/definitions/handler.loginFailureResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.loginFailureResponse"}}
                }
            }
        },
        "/session/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Register",
                "parameters": [
                    {"description": "Registration form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.actionResponse"}}
                }
            }
        },
        "/session/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Request a password reset",
                "parameters": [
                    {"description": "Account email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.forgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/reset-password/{uid}/{token}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Confirm a password reset",
                "parameters": [
                    {"type": "string", "description": "Encoded user id", "name": "uid", "in": "path", "required": true},
                    {"type": "string", "description": "Reset token", "name": "token", "in": "path", "required": true},
                    {"description": "New password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.actionResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Full profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Update profile",
                "parameters": [
                    {"description": "Profile fields", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/team-status/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Refresh team status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.teamStatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "is_profile_completed": {"type": "boolean"}
            }
        },
        "handler.sessionView": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "token_expires_at": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"},
                "full_profile": {"type": "object"},
                "has_team": {"type": "boolean"},
                "has_pending_join_request": {"type": "boolean"},
                "is_logging_in": {"type": "boolean"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "confirm_password", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "confirm_password": {"type": "string"},
                "role": {"type": "string", "enum": ["Student", "Supervisor"]}
            }
        },
        "handler.forgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "handler.resetPasswordRequest": {
            "type": "object",
            "required": ["new_password", "confirm_password"],
            "properties": {
                "new_password": {"type": "string", "minLength": 8},
                "confirm_password": {"type": "string"}
            }
        },
        "handler.actionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "navigate_to": {"type": "string"},
                "session": {"$ref": "#/definitions/handler.sessionView"}
            }
        },
        "handler.loginFailureResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "blocked": {"type": "boolean"},
                "blocked_until": {"type": "string"}
            }
        },
        "handler.profileResponse": {
            "type": "object",
            "properties": {
                "profile": {"type": "object"},
                "navigate_to": {"type": "string"}
            }
        },
        "handler.teamStatusResponse": {
            "type": "object",
            "properties": {
                "has_team": {"type": "boolean"},
                "has_pending_join_request": {"type": "boolean"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
	Title:            "DiploMatch Portal API",
	Description:      "Session actions and guarded views of the DiploMatch portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
