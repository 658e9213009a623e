package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rota API",
        "description": "Weekly shift coverage resolution and assignment ledger",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Catalog", "description": "Slot definitions and per-day overrides"},
        {"name": "Roster", "description": "Personnel roster management"},
        {"name": "Preferences", "description": "Weekly preference submissions"},
        {"name": "Coverage", "description": "Coverage resolution and the assignment ledger"},
        {"name": "Export", "description": "Week grid exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/slots": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List slot definitions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a slot definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate slot key"}
                }
            }
        },
        "/catalog/slots/{key}": {
            "put": {
                "tags": ["Catalog"],
                "summary": "Update a slot definition",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown slot key"}
                }
            }
        },
        "/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "List roster entries",
                "parameters": [
                    {"name": "mission", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Roster"],
                "summary": "Create a roster entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePersonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/{id}": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get a roster entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Roster"],
                "summary": "Update a roster entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePersonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/slots": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List per-day slot overrides for a week",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string", "description": "Sunday, YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/slots/{key}/cancel": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Toggle cancellation for a day's slot",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "List a week's preference submissions",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Preferences"],
                "summary": "Submit weekly preferences",
                "description": "Re-submission overwrites the previous submission for the week.",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitPreferenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown slot key or day"}
                }
            }
        },
        "/weeks/{week}/preferences/mine": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Get one person's submission for a week",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "person_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No submission"}
                }
            }
        },
        "/weeks/{week}/auto-assign": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Run coverage resolution for a week",
                "description": "Returns a draft assignment set, conflicts, the unassigned pool and per-cell coverage. Nothing is persisted until publish.",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/assignments": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Get the published ledger for a week",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/publish": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Publish the assignment set for a week",
                "description": "Replaces the week's ledger wholesale. Republishing the same set is idempotent.",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishWeekRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{week}/assignments/toggle": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Toggle one assignment cell",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleCellRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Mission mismatch, cancelled slot or unconfirmed overload"}
                }
            }
        },
        "/weeks/{week}/long-shift": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Toggle extended hours on an assignment",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleLongShiftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No assignment for the cell"}
                }
            }
        },
        "/weeks/{week}/export": {
            "post": {
                "tags": ["Export"],
                "summary": "Render a week export",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a rendered export",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/assignments/{id}/confirm": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Confirm an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Confirmed"},
                    "409": {"description": "Not in assigned state"}
                }
            }
        },
        "/assignments/{id}/swap-request": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Request a swap on an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SwapRequestPayload"}}
                ],
                "responses": {
                    "204": {"description": "Requested"},
                    "409": {"description": "Not in a swappable state"}
                }
            }
        },
        "/assignments/{id}/swap-resolve": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Resolve a pending swap request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SwapResolvePayload"}}
                ],
                "responses": {
                    "204": {"description": "Resolved"},
                    "409": {"description": "No pending swap request"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateSlotRequest": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "mission": {"type": "string"},
                "name": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "required_count": {"type": "integer"},
                "is_long": {"type": "boolean"}
            },
            "required": ["key", "mission", "name", "start_time", "end_time"]
        },
        "UpdateSlotRequest": {
            "type": "object",
            "properties": {
                "mission": {"type": "string"},
                "name": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "required_count": {"type": "integer"},
                "is_long": {"type": "boolean"}
            },
            "required": ["mission", "name", "start_time", "end_time"]
        },
        "CreatePersonRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "mission": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["full_name", "mission"]
        },
        "UpdatePersonRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "mission": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "SubmitPreferenceRequest": {
            "type": "object",
            "properties": {
                "person_id": {"type": "string"},
                "days": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                },
                "long_shift_days": {
                    "type": "object",
                    "additionalProperties": {"type": "boolean"}
                },
                "notes": {"type": "string"}
            },
            "required": ["person_id"]
        },
        "PublishWeekRequest": {
            "type": "object",
            "properties": {
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}}
            },
            "required": ["assignments"]
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "person_id": {"type": "string"},
                "week_start": {"type": "string"},
                "day": {"type": "string"},
                "slot_key": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "status": {"type": "string"},
                "is_long_shift": {"type": "boolean"},
                "swap_reason": {"type": "string"}
            }
        },
        "ToggleCellRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "slot_key": {"type": "string"},
                "person_id": {"type": "string"},
                "confirm_overload": {"type": "boolean"}
            },
            "required": ["day", "slot_key", "person_id"]
        },
        "ToggleLongShiftRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "slot_key": {"type": "string"},
                "person_id": {"type": "string"},
                "enabled": {"type": "boolean"}
            },
            "required": ["day", "slot_key", "person_id"]
        },
        "CancelSlotRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"}
            },
            "required": ["day"]
        },
        "SwapRequestPayload": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "SwapResolvePayload": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"}
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
