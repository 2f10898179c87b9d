package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TA Proctoring API",
        "description": "Proctoring assignment and swap engine for teaching assistants",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Proctoring duty assignment"},
        {"name": "Swaps", "description": "Duty swap workflow"},
        {"name": "Workload", "description": "Workload credit accounting"},
        {"name": "Availability", "description": "TA availability diagnostics"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/exams/{examId}/assignments/auto": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Auto-assign proctors by ascending workload credit",
                "parameters": [
                    {"name": "examId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/AutoAssignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Insufficient candidates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exams/{examId}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List exam roster",
                "parameters": [
                    {"name": "examId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Manually assign proctors",
                "parameters": [
                    {"name": "examId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualAssignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exams/{examId}/assignments/export": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Export exam roster as CSV or PDF",
                "parameters": [
                    {"name": "examId", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/assignments/{id}/swaps": {
            "get": {
                "tags": ["Swaps"],
                "summary": "List the swap history of an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assignments/{id}/confirm": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Confirm an assigned duty",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assignments/{id}/decline": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Decline an assigned duty",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/swaps": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Create a swap request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSwapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Cutoff, depth limit, or duplicate pending swap", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/swaps/{id}/accept": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Accept a pending swap",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved or stale", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/swaps/{id}/reject": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Reject a pending swap with a reason",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectSwapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/swaps/{id}/cancel": {
            "post": {
                "tags": ["Swaps"],
                "summary": "Cancel a pending swap (requester only)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tas/{taId}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List duties for a TA",
                "parameters": [
                    {"name": "taId", "in": "path", "type": "string", "required": true},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tas/{taId}/swaps/incoming": {
            "get": {
                "tags": ["Swaps"],
                "summary": "List pending swaps addressed to a TA",
                "parameters": [
                    {"name": "taId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tas/{taId}/workload": {
            "get": {
                "tags": ["Workload"],
                "summary": "Workload credit for a TA",
                "parameters": [
                    {"name": "taId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/workload/report": {
            "get": {
                "tags": ["Workload"],
                "summary": "Workload report for all active TAs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/workload/report/export": {
            "get": {
                "tags": ["Workload"],
                "summary": "Export the workload report as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/tas": {
            "get": {
                "tags": ["Availability"],
                "summary": "List active TAs",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tas/{taId}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get one TA",
                "parameters": [
                    {"name": "taId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tas/{taId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Availability of a TA for an exam, with conflict reasons",
                "parameters": [
                    {"name": "taId", "in": "path", "type": "string", "required": true},
                    {"name": "examId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AutoAssignRequest": {
            "type": "object",
            "properties": {
                "pool": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ManualAssignRequest": {
            "type": "object",
            "required": ["ta_ids", "actor_id"],
            "properties": {
                "ta_ids": {"type": "array", "items": {"type": "string"}},
                "force": {"type": "boolean"},
                "actor_id": {"type": "string"}
            }
        },
        "ActorRequest": {
            "type": "object",
            "required": ["ta_id"],
            "properties": {
                "ta_id": {"type": "string"}
            }
        },
        "DeclineRequest": {
            "type": "object",
            "required": ["ta_id"],
            "properties": {
                "ta_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "CreateSwapRequest": {
            "type": "object",
            "required": ["assignment_id", "ta_id", "reason"],
            "properties": {
                "assignment_id": {"type": "string"},
                "ta_id": {"type": "string"},
                "reason": {"type": "string"},
                "target_ta_id": {"type": "string"}
            }
        },
        "RejectSwapRequest": {
            "type": "object",
            "required": ["ta_id", "reason"],
            "properties": {
                "ta_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
