package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Schedule Optimizer API",
        "description": "Genetic timetable optimization engine with structural violation analysis",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Optimization", "description": "Run lifecycle, results, profiles"},
        {"name": "Violations", "description": "Structural analysis and corrective actions"}
    ],
    "paths": {
        "/optimizations": {
            "post": {
                "tags": ["Optimization"],
                "summary": "Start an optimization run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartOptimizationRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another run is active"},
                    "412": {"description": "Critical violations block the run"}
                }
            }
        },
        "/optimizations/{runId}": {
            "get": {
                "tags": ["Optimization"],
                "summary": "Get the outcome of a finished run",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run still in progress"}
                }
            },
            "delete": {
                "tags": ["Optimization"],
                "summary": "Request cooperative cancellation",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Cancellation requested"}
                }
            }
        },
        "/optimizations/{runId}/progress": {
            "get": {
                "tags": ["Optimization"],
                "summary": "Latest progress snapshot of a run",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/optimizations/{runId}/timetable": {
            "get": {
                "tags": ["Optimization"],
                "summary": "Stored timetable of a finished run",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/optimizations/{runId}/export": {
            "get": {
                "tags": ["Optimization"],
                "summary": "Export timetable as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/optimizations/health": {
            "get": {
                "tags": ["Optimization"],
                "summary": "Engine health summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/optimizations/results": {
            "get": {
                "tags": ["Optimization"],
                "summary": "List recent run outcomes",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/optimizations/results/{runId}": {
            "delete": {
                "tags": ["Optimization"],
                "summary": "Delete a stored run outcome",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/optimizations/configs": {
            "get": {
                "tags": ["Optimization"],
                "summary": "List stored optimization profiles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Optimization"],
                "summary": "Create an optimization profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveOptimizationConfigRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/optimizations/configs/{id}": {
            "put": {
                "tags": ["Optimization"],
                "summary": "Update an optimization profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveOptimizationConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Optimization"],
                "summary": "Delete a non-default optimization profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Default profile is protected"}
                }
            }
        },
        "/violations": {
            "get": {
                "tags": ["Violations"],
                "summary": "Analyze domain data for structural violations",
                "parameters": [
                    {"name": "refresh", "in": "query", "type": "boolean"},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["INFO", "WARNING", "CRITICAL"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/violations/actions": {
            "post": {
                "tags": ["Violations"],
                "summary": "Apply a suggested corrective action",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StartOptimizationRequest": {
            "type": "object",
            "properties": {
                "configId": {"type": "string"},
                "force": {"type": "boolean"},
                "overrides": {"$ref": "#/definitions/ConfigOverrides"}
            }
        },
        "ConfigOverrides": {
            "type": "object",
            "properties": {
                "populationSize": {"type": "integer"},
                "maxGenerations": {"type": "integer"},
                "mutationRate": {"type": "number"},
                "crossoverRate": {"type": "number"},
                "eliteSize": {"type": "integer"},
                "tournamentSize": {"type": "integer"},
                "maxRuntimeSeconds": {"type": "integer"},
                "stagnationLimit": {"type": "integer"},
                "threadCount": {"type": "integer"},
                "targetFitness": {"type": "number"},
                "constraintWeights": {"type": "object"}
            }
        },
        "SaveOptimizationConfigRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "populationSize": {"type": "integer"},
                "maxGenerations": {"type": "integer"},
                "mutationRate": {"type": "number"},
                "crossoverRate": {"type": "number"},
                "eliteSize": {"type": "integer"},
                "tournamentSize": {"type": "integer"},
                "maxRuntimeSeconds": {"type": "integer"},
                "stagnationLimit": {"type": "integer"},
                "threadCount": {"type": "integer"},
                "logFrequency": {"type": "integer"},
                "targetFitness": {"type": "number"},
                "constraintWeights": {"type": "object"},
                "isDefault": {"type": "boolean"}
            },
            "required": ["name", "populationSize", "maxGenerations"]
        },
        "ApplyActionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["ASSIGN_TEACHER", "ENABLE_SHARING", "ASSIGN_ROOM", "REASSIGN_COURSE"]},
                "parameters": {"type": "object"}
            },
            "required": ["type", "parameters"]
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
