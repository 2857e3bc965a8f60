package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Weekly timetables per promotion with conflict-checked session synchronization",
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
        {"name": "Timetables", "description": "Timetable lookup and session synchronization"},
        {"name": "Teachers", "description": "Personal teacher calendar"}
    ],
    "paths": {
        "/timetables/check-or-create": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Open the timetable of a promotion for a week",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckOrCreateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Existing timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown promotion or week", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid identifiers", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable with its promotion and week",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/sessions": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List the sessions of a timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/sessions/sync": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Replace the sessions of a timetable",
                "description": "Sessions absent from the list are deleted, the others are updated or inserted. A conflicting teacher or room aborts the whole batch.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncSessionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored sessions", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed JSON", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher or room double-booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid session fields or references", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher-schedule": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Calendar of the authenticated teacher",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not a teacher", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CheckOrCreateTimetableRequest": {
            "type": "object",
            "required": ["promotion_id", "week_id"],
            "properties": {
                "promotion_id": {"type": "integer"},
                "week_id": {"type": "integer"}
            }
        },
        "SessionInput": {
            "type": "object",
            "required": ["course_id", "teacher_id", "room_id", "time_slot_id", "duration_minutes", "session_type"],
            "properties": {
                "id": {"type": "integer", "description": "Existing session to update; omit to create"},
                "course_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "room_id": {"type": "integer"},
                "time_slot_id": {"type": "integer"},
                "duration_minutes": {"type": "integer", "minimum": 1},
                "session_type": {"type": "string", "enum": ["Cours Magistral", "Travaux Dirigés", "Travaux Pratiques", "Examen"]},
                "notes": {"type": "string", "maxLength": 500}
            }
        },
        "SyncSessionsRequest": {
            "type": "object",
            "required": ["sessions"],
            "properties": {
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/SessionInput"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
