package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Worktime API",
        "description": "Attendance time tracking: clock actions, the shared attendance ledger and monthly overviews.",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendance", "description": "Employee clock actions"},
        {"name": "Admin Attendance", "description": "Ledger oversight, corrections and timesheets"},
        {"name": "Accounts", "description": "Account activation status"},
        {"name": "System", "description": "Probes"}
    ],
    "paths": {
        "/attendance/today": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Today's attendance for the calling employee",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/history": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Calling employee's ledger entries and totals for a month",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/Month"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/clock-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Clock in for today",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/DeviceHints"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/break-start": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Start the day's break",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/DeviceHints"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/break-end": {
            "post": {
                "tags": ["Attendance"],
                "summary": "End the open break",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/DeviceHints"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/clock-out": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Clock out, closing any open break",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/DeviceHints"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/device": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Re-tag today's open record with the current device",
                "parameters": [
                    {"$ref": "#/parameters/EmployeeHeader"},
                    {"$ref": "#/parameters/DeviceHints"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance": {
            "get": {
                "tags": ["Admin Attendance"],
                "summary": "Ledger entries for one employee and month",
                "parameters": [
                    {"name": "employeeId", "in": "query", "required": true, "type": "string"},
                    {"$ref": "#/parameters/Month"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance/date/{date}": {
            "get": {
                "tags": ["Admin Attendance"],
                "summary": "Every employee's ledger entry for a date",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance/stream": {
            "get": {
                "tags": ["Admin Attendance"],
                "summary": "Server-sent ledger change notifications",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/admin/attendance/{employeeId}/{date}": {
            "patch": {
                "tags": ["Admin Attendance"],
                "summary": "Correct a day's punches",
                "description": "Absent fields are kept, null clears a field. Ordering is not validated.",
                "parameters": [
                    {"name": "employeeId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CorrectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid correction", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance/{employeeId}/overview": {
            "get": {
                "tags": ["Admin Attendance"],
                "summary": "Monthly totals for an employee",
                "parameters": [
                    {"name": "employeeId", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/Month"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance/{employeeId}/export": {
            "get": {
                "tags": ["Admin Attendance"],
                "summary": "Download a monthly timesheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "employeeId", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/Month"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Timesheet file", "schema": {"type": "file"}},
                    "404": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/accounts/{role}/{id}": {
            "get": {
                "tags": ["Accounts"],
                "summary": "Account activation status",
                "parameters": [
                    {"$ref": "#/parameters/Role"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Accounts"],
                "summary": "Set account activation status",
                "parameters": [
                    {"$ref": "#/parameters/Role"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AccountStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/accounts/{role}/{id}/toggle": {
            "post": {
                "tags": ["Accounts"],
                "summary": "Flip account activation status",
                "parameters": [
                    {"$ref": "#/parameters/Role"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "EmployeeHeader": {"name": "X-Employee-ID", "in": "header", "required": true, "type": "string"},
        "Month": {"name": "month", "in": "query", "type": "string", "description": "YYYY-MM, defaults to the current month"},
        "Role": {"name": "role", "in": "path", "required": true, "type": "string", "enum": ["user", "admin"]},
        "DeviceHints": {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/DeviceHintsRequest"}}
    },
    "definitions": {
        "DeviceHintsRequest": {
            "type": "object",
            "properties": {
                "viewportWidth": {"type": "integer"},
                "hasTouch": {"type": "boolean"},
                "userAgent": {"type": "string"}
            }
        },
        "CorrectionRequest": {
            "type": "object",
            "properties": {
                "timeIn": {"type": "string", "x-nullable": true},
                "lunchOut": {"type": "string", "x-nullable": true},
                "lunchIn": {"type": "string", "x-nullable": true},
                "timeOut": {"type": "string", "x-nullable": true},
                "source": {"type": "string"}
            }
        },
        "AccountStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Active", "Inactive"]}
            },
            "required": ["status"]
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
