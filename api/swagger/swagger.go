package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Security Threat Detection API",
        "description": "Admin dashboard API for browser based security monitoring",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication and session profile"},
        {"name": "Users", "description": "User administration"},
        {"name": "Notifications", "description": "Per-user notifications"},
        {"name": "Alerts", "description": "Security alert lifecycle"},
        {"name": "Response Rules", "description": "Automated alert responses"},
        {"name": "Activity", "description": "Audit trail"},
        {"name": "Analytics", "description": "Aggregated statistics"},
        {"name": "Dashboard", "description": "Landing page summary"},
        {"name": "Navigation", "description": "Role filtered menu"},
        {"name": "Detection", "description": "Fight detection on video clips"},
        {"name": "Reports", "description": "CSV and PDF exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens and profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate tokens",
                "responses": {
                    "200": {"description": "Fresh token pair"},
                    "401": {"description": "Expired or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign out",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Refresh token revoked"}
                }
            }
        },
        "/auth/profile": {
            "get": {
                "tags": ["Auth"],
                "summary": "Resolve the caller's profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Inactive account"},
                    "500": {"description": "Incomplete profile record"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Users", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "User created"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "User"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "User updated"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "User deactivated"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "read", "in": "query", "type": "boolean"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Notifications", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Notifications"],
                "summary": "Create notification",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Notification created"}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unread count",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Count"}
                }
            }
        },
        "/notifications/read-all": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark all read",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated count"}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark read",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Marked read"}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete notification",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/alerts": {
            "get": {
                "tags": ["Alerts"],
                "summary": "List alerts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "severity", "in": "query", "type": "string"},
                    {"name": "camera", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Alerts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Alerts"],
                "summary": "Create alert",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Alert created"}
                }
            }
        },
        "/alerts/{id}": {
            "get": {
                "tags": ["Alerts"],
                "summary": "Get alert with response actions",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Alert"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/alerts/{id}/status": {
            "patch": {
                "tags": ["Alerts"],
                "summary": "Transition alert status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Alert updated"},
                    "409": {"description": "Transition not allowed"}
                }
            }
        },
        "/alerts/{id}/assign": {
            "patch": {
                "tags": ["Alerts"],
                "summary": "Assign alert",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Alert assigned"}
                }
            }
        },
        "/response-rules": {
            "get": {
                "tags": ["Response Rules"],
                "summary": "List rules",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Rules"}
                }
            },
            "post": {
                "tags": ["Response Rules"],
                "summary": "Create rule",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Rule created inactive"}
                }
            }
        },
        "/response-rules/{id}": {
            "get": {
                "tags": ["Response Rules"],
                "summary": "Get rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Rule"}
                }
            },
            "put": {
                "tags": ["Response Rules"],
                "summary": "Update rule definition",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Rule updated"}
                }
            },
            "delete": {
                "tags": ["Response Rules"],
                "summary": "Delete rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Rule deleted"}
                }
            }
        },
        "/response-rules/{id}/activate": {
            "post": {
                "tags": ["Response Rules"],
                "summary": "Activate rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Rule active"}
                }
            }
        },
        "/response-rules/{id}/deactivate": {
            "post": {
                "tags": ["Response Rules"],
                "summary": "Deactivate rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Rule inactive"}
                }
            }
        },
        "/activity": {
            "get": {
                "tags": ["Activity"],
                "summary": "List audit entries",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Audit entries"}
                }
            }
        },
        "/activity/history": {
            "get": {
                "tags": ["Activity"],
                "summary": "Alert history audit entries",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Audit entries"}
                }
            }
        },
        "/activity/me": {
            "get": {
                "tags": ["Activity"],
                "summary": "Caller's own audit entries",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Audit entries"}
                }
            }
        },
        "/analytics/alerts": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Alert analytics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Aggregates"}
                }
            }
        },
        "/analytics/notifications": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Notification analytics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Aggregates"}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "System metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Snapshot"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Landing page summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Summary"}
                }
            }
        },
        "/navigation": {
            "get": {
                "tags": ["Navigation"],
                "summary": "Navigation entries for the caller's role",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Entries"}
                }
            }
        },
        "/detect": {
            "post": {
                "tags": ["Detection"],
                "summary": "Run fight detection on a clip",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "camera", "in": "formData", "required": true, "type": "string"},
                    {"name": "location", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Detection result"},
                    "502": {"description": "Inference service unavailable"}
                }
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List the caller's reports",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Reports"}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Report queued"}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Report"}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a completed report",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Unknown or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "firstName", "lastName"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
