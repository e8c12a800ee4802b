// Package docs registers the OpenAPI document for the checkprioritizer relay.
// Regenerate with: swag init -g cmd/checkprioritizer/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Custodia Labs",
            "url": "https://github.com/custodia-labs/checkprioritizer/issues"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/search": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Similarity or MMR search over the indexed claims",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Retrieval"],
                "summary": "Search claims",
                "parameters": [
                    {
                        "description": "Search query",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.SearchRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SearchResult"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Index unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/ask": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Retrieves count claims and drafts a cited answer with the configured language model",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Retrieval"],
                "summary": "Answer a question",
                "parameters": [
                    {
                        "description": "Question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.AskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AskResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Index or language model unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports wired AI capabilities and pings the vector index and Redis",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Liveness probe used by the chat front end",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Relay status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the current API version",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Get API version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VersionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.QueryResult": {
            "type": "object",
            "properties": {
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "rank": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "domain.SearchResult": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["similarity", "mmr"]},
                "query": {"type": "string"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/domain.QueryResult"}},
                "took": {"type": "integer", "example": 1500000}
            }
        },
        "domain.Source": {
            "type": "object",
            "properties": {
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "text": {"type": "string"}
            }
        },
        "http.AskRequest": {
            "description": "Question to answer from indexed claims",
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 3},
                "query": {"type": "string", "example": "Is there any news about COVID-19 vaccines in Barbados?"}
            }
        },
        "http.AskResponse": {
            "description": "Synthesized answer and the evidence it cites",
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.Source"}}
            }
        },
        "http.ErrorResponse": {
            "description": "API error response",
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"}
            }
        },
        "http.HealthResponse": {
            "description": "Health and capability report",
            "type": "object",
            "properties": {
                "capabilities": {"$ref": "#/definitions/runtime.Capabilities"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "http.SearchRequest": {
            "description": "Retrieval request",
            "type": "object",
            "properties": {
                "fetch_k": {"type": "integer", "example": 20},
                "k": {"type": "integer", "example": 4},
                "lambda": {"type": "number", "example": 0.5},
                "query": {"type": "string", "example": "vaccine trials"},
                "use_diversity": {"type": "boolean", "example": true}
            }
        },
        "http.StatusResponse": {
            "description": "Simple status response",
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "online"}
            }
        },
        "http.VersionResponse": {
            "description": "API version response",
            "type": "object",
            "properties": {
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "runtime.Capabilities": {
            "type": "object",
            "properties": {
                "answer_model": {"type": "string"},
                "can_answer": {"type": "boolean"},
                "can_search": {"type": "boolean"},
                "embedding_dimensions": {"type": "integer"},
                "embedding_model": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "checkprioritizer API",
	Description:      "Retrieval relay for fact-checking: ranked claim evidence and cited answers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
