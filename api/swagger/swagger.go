package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Learner Hub API",
        "description": "Learner management backend: IQA sample plans, question bank, session types, acknowledgements and exports",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Sample Plans", "description": "IQA sample plans and sampled learners"},
        {"name": "Sample Actions", "description": "Follow-up actions on a plan detail"},
        {"name": "Sample Documents", "description": "Evidence documents attached to a plan detail"},
        {"name": "IQA Questions", "description": "IQA question bank"},
        {"name": "Session Types", "description": "Ordered session type catalogue"},
        {"name": "Acknowledgements", "description": "Acknowledgement messages with optional attachment"},
        {"name": "Exports", "description": "Timelog, form submission and feedback exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "security": [],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "security": [],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/api/v1/sample-plan/list": {
            "get": {
                "tags": ["Sample Plans"],
                "summary": "List sample plans",
                "parameters": [
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "iqa_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/sample-plan/{id}/learners": {
            "get": {
                "tags": ["Sample Plans"],
                "summary": "List learners of a plan with their units",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Plan not found"}
                }
            }
        },
        "/api/v1/sample-plan/add-sampled-learners": {
            "post": {
                "tags": ["Sample Plans"],
                "summary": "Apply sampled learners to a plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplySampledLearnersRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Learner already sampled"}
                }
            }
        },
        "/api/v1/sample-plan/deatil/{id}": {
            "patch": {
                "tags": ["Sample Plans"],
                "summary": "Patch a plan detail; /sample-plan/detail/{id} is an alias",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePlanDetailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Detail not found"}
                }
            }
        },
        "/api/v1/sample-plan/remove-sampled-learner/{id}": {
            "delete": {
                "tags": ["Sample Plans"],
                "summary": "Remove a sampled learner",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}, "404": {"description": "Detail not found"}}
            }
        },
        "/api/v1/sample-plan/deatil/{id}/actions": {
            "get": {
                "tags": ["Sample Actions"],
                "summary": "List actions of a plan detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Sample Actions"],
                "summary": "Create an action",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SampleActionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/sample-plan/deatil/{id}/documents": {
            "post": {
                "tags": ["Sample Documents"],
                "summary": "Upload a document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "description", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Unsupported media type"}
                }
            }
        },
        "/api/v1/sample-plan/documents/download/{token}": {
            "get": {
                "tags": ["Sample Documents"],
                "summary": "Download a document through its signed token",
                "security": [],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Invalid or expired token"}}
            }
        },
        "/api/v1/iqa-questions/admin/questions": {
            "get": {
                "tags": ["IQA Questions"],
                "summary": "List every question",
                "parameters": [{"name": "type", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["IQA Questions"],
                "summary": "Create a question",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateIQAQuestionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/iqa-questions/questions": {
            "get": {
                "tags": ["IQA Questions"],
                "summary": "List active questions",
                "parameters": [{"name": "type", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/sessionType/list": {
            "get": {
                "tags": ["Session Types"],
                "summary": "List session types in order",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/sessionType/reorder": {
            "patch": {
                "tags": ["Session Types"],
                "summary": "Move a session type one rank",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReorderSessionTypeRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/acknowledgement/list": {
            "get": {
                "tags": ["Acknowledgements"],
                "summary": "List acknowledgements, newest first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/acknowledgement/create": {
            "post": {
                "tags": ["Acknowledgements"],
                "summary": "Create an acknowledgement",
                "consumes": ["multipart/form-data", "application/json"],
                "parameters": [
                    {"name": "message", "in": "formData", "required": true, "type": "string"},
                    {"name": "severity", "in": "formData", "type": "string", "enum": ["Info", "Warning", "Critical"]},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/exports/timelogs": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export timelogs as an Excel workbook",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "learner_id", "in": "query", "type": "string"},
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "off_the_job_only", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Workbook"},
                    "400": {"description": "Invalid date range"},
                    "422": {"description": "No data to export"}
                }
            }
        },
        "/api/v1/exports/form-submissions/{id}/pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Render a form submission as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["text", "snapshot"]}
                ],
                "responses": {"200": {"description": "PDF"}, "404": {"description": "Submission not found"}}
            }
        },
        "/api/v1/exports/feedback": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export feedback as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "CSV or PDF"}, "400": {"description": "Unknown format"}, "422": {"description": "No data to export"}}
            }
        }
    },
    "definitions": {
        "SampledUnitRequest": {
            "type": "object",
            "properties": {
                "unit_code": {"type": "string"},
                "is_selected": {"type": "boolean"}
            },
            "required": ["unit_code"]
        },
        "SampledLearnerRequest": {
            "type": "object",
            "properties": {
                "learner_id": {"type": "string"},
                "plan_date": {"type": "string", "format": "date"},
                "units": {"type": "array", "items": {"$ref": "#/definitions/SampledUnitRequest"}}
            },
            "required": ["learner_id"]
        },
        "ApplySampledLearnersRequest": {
            "type": "object",
            "properties": {
                "plan_id": {"type": "string"},
                "sample_type": {"type": "string"},
                "assessment_methods": {"type": "array", "items": {"type": "string"}},
                "learners": {"type": "array", "items": {"$ref": "#/definitions/SampledLearnerRequest"}}
            },
            "required": ["plan_id", "sample_type", "learners"]
        },
        "UpdatePlanDetailRequest": {
            "type": "object",
            "properties": {
                "sample_type": {"type": "string"},
                "planned_date": {"type": "string", "format": "date"},
                "completed_date": {"type": "string", "format": "date"},
                "assessment_methods": {"type": "array", "items": {"type": "string"}},
                "assessment_processes": {"type": "string"},
                "feedback": {"type": "string"},
                "iqa_conclusion": {"type": "array", "items": {"type": "string"}},
                "assessor_decision_correct": {"type": "string"}
            }
        },
        "SampleActionRequest": {
            "type": "object",
            "properties": {
                "action_required": {"type": "string"},
                "target_date": {"type": "string", "format": "date"},
                "status": {"type": "string"},
                "action_with": {"type": "string"},
                "assessor_feedback": {"type": "string"}
            },
            "required": ["action_required"]
        },
        "CreateIQAQuestionRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "question_type": {"type": "string"},
                "is_active": {"type": "boolean"}
            },
            "required": ["question", "question_type"]
        },
        "ReorderSessionTypeRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "direction": {"type": "string", "enum": ["UP", "DOWN"]}
            },
            "required": ["id", "direction"]
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
                "message": {"type": "string"},
                "status": {"type": "integer"},
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
