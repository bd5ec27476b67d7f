// Package docs holds the OpenAPI document served at /swagger, in the layout swag init emits.
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
        "/properties": {
            "get": {
                "summary": "List properties",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Property"}}}}
            }
        },
        "/properties/{propertyID}/documents": {
            "get": {
                "summary": "List a property's documents",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "propertyID", "in": "path", "required": true},
                    {"type": "string", "description": "Document type folder", "name": "folder", "in": "query"},
                    {"type": "string", "description": "Search name or description", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DocumentListResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "summary": "Upload a new document to a property",
                "parameters": [
                    {"type": "string", "description": "Property ID", "name": "propertyID", "in": "path", "required": true},
                    {"type": "file", "description": "Document file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Display name, defaults to the file name", "name": "name", "in": "formData"},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Document type", "name": "document_type", "in": "formData"},
                    {"type": "string", "description": "Expiry date (YYYY-MM-DD)", "name": "expiry_date", "in": "formData"},
                    {"type": "integer", "description": "Days of notice before expiry", "name": "notification_period", "in": "formData"},
                    {"type": "string", "description": "Comma separated tag IDs", "name": "tags", "in": "formData"},
                    {"type": "string", "description": "Document notes", "name": "notes", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Document"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/recent": {
            "get": {
                "summary": "Most recently uploaded documents",
                "parameters": [{"type": "integer", "description": "Maximum number of documents", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DocumentListResult"}}}
            }
        },
        "/documents/expiring": {
            "get": {
                "summary": "Documents whose expiry notification window is open",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DocumentListResult"}}}
            }
        },
        "/documents/{id}": {
            "get": {
                "summary": "Get document metadata",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}}}
            },
            "patch": {
                "consumes": ["application/json"],
                "summary": "Update favorite flag or notes",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}}}
            },
            "delete": {
                "summary": "Delete a document and its stored files",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "produces": ["application/octet-stream"],
                "summary": "Download a document's content",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Prior version number", "name": "version", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/documents/{id}/url": {
            "get": {
                "summary": "Get a time-limited download URL",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/documents/{id}/versions": {
            "post": {
                "consumes": ["multipart/form-data"],
                "summary": "Upload a new version of a document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Document file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Notes on the superseded version", "name": "version_notes", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Document"}}}
            }
        },
        "/tags": {
            "get": {
                "summary": "List tags",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Tag"}}}}
            },
            "post": {
                "consumes": ["application/json"],
                "summary": "Create a tag",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Tag"}}}
            }
        }
    },
    "definitions": {
        "handler.DocumentListResult": {
            "type": "object",
            "properties": {
                "property": {"$ref": "#/definitions/model.Property"},
                "folder": {"type": "string"},
                "query": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Document"}},
                "total": {"type": "integer"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}
            }
        },
        "model.Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "property_id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "storage_path": {"type": "string"},
                "content_type": {"type": "string"},
                "size": {"type": "integer"},
                "document_type": {"type": "string"},
                "uploaded_at": {"type": "string"},
                "expiry_date": {"type": "string"},
                "notification_period": {"type": "integer"},
                "favorite": {"type": "boolean"},
                "version": {"type": "integer"},
                "versions": {"type": "array", "items": {"$ref": "#/definitions/model.DocumentVersion"}},
                "tags": {"type": "array", "items": {"$ref": "#/definitions/model.Tag"}},
                "last_accessed_at": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "model.DocumentVersion": {
            "type": "object",
            "properties": {
                "version": {"type": "integer"},
                "uploaded_at": {"type": "string"},
                "storage_path": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "model.Property": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "address": {"type": "string"}}
        },
        "model.Tag": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "color": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Property Documents API",
	Description:      "Upload, version, download and organise property documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
