// Package docs holds the OpenAPI description served under /docs/. Keep it
// in step with the @-annotations on the handlers.
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
        "/doc/delete": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Documents"],
                "summary": "Delete a document",
                "parameters": [
                    {
                        "description": "Document identifier",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.documentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Success.", "schema": {"type": "string"}},
                    "400": {"description": "Missing identifier or no such document", "schema": {"type": "string"}},
                    "401": {"description": "Document belongs to someone else", "schema": {"type": "string"}},
                    "403": {"description": "Not signed in", "schema": {"type": "string"}}
                }
            }
        },
        "/doc/export": {
            "post": {
                "description": "Returns a short-lived presigned URL for the archived content of a readable document.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Generate a download link for a document",
                "parameters": [
                    {
                        "description": "Document identifier",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.documentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "403": {"description": "Not signed in and the document is not public", "schema": {"type": "string"}},
                    "404": {"description": "No readable document with that identifier", "schema": {"type": "string"}},
                    "501": {"description": "Archive not configured", "schema": {"type": "string"}}
                }
            }
        },
        "/doc/get": {
            "post": {
                "description": "Returns the stored content of one document. Public documents are readable without signing in.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Fetch a document",
                "parameters": [
                    {
                        "description": "Document identifier",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.documentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Missing identifier", "schema": {"type": "string"}},
                    "403": {"description": "Not signed in and the document is not public", "schema": {"type": "string"}},
                    "404": {"description": "No readable document with that identifier", "schema": {"type": "string"}}
                }
            }
        },
        "/doc/list": {
            "post": {
                "description": "Returns the content of every document the caller owns plus all public documents, optionally filtered by category.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "List readable documents",
                "parameters": [
                    {
                        "description": "Optional uid override and category",
                        "name": "body",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/handlers.documentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "400": {"description": "Malformed body", "schema": {"type": "string"}}
                }
            }
        },
        "/doc/save": {
            "post": {
                "description": "Stores the whole request body as the content of the caller's document with the given identifier.",
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Documents"],
                "summary": "Create or update a document",
                "parameters": [
                    {
                        "description": "Document payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/services.SaveRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Success.", "schema": {"type": "string"}},
                    "400": {"description": "Missing identifier or malformed body", "schema": {"type": "string"}},
                    "403": {"description": "Not signed in, or public requested by a non-admin", "schema": {"type": "string"}}
                }
            }
        },
        "/user/auth/google": {
            "get": {
                "description": "Without a code, redirects to Google. As the OAuth callback, exchanges the code, starts a session and redirects to redirectUrl.",
                "tags": ["Users"],
                "summary": "Sign in with Google",
                "parameters": [
                    {"type": "string", "description": "Relative path to land on after signing in", "name": "redirectUrl", "in": "query"},
                    {"type": "string", "description": "Authorization code (callback)", "name": "code", "in": "query"},
                    {"type": "string", "description": "OAuth state (callback)", "name": "state", "in": "query"}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "400": {"description": "State mismatch", "schema": {"type": "string"}},
                    "404": {"description": "Google returned no profile id", "schema": {"type": "string"}}
                }
            }
        },
        "/user/generate_key": {
            "post": {
                "produces": ["text/plain"],
                "tags": ["Users"],
                "summary": "Rotate the caller's API key",
                "responses": {
                    "200": {"description": "Success.", "schema": {"type": "string"}},
                    "404": {"description": "Not signed in", "schema": {"type": "string"}}
                }
            }
        },
        "/user/logout": {
            "get": {
                "tags": ["Users"],
                "summary": "Sign out",
                "responses": {
                    "302": {"description": "Found"}
                }
            }
        },
        "/user/update": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Users"],
                "summary": "Update the caller's profile",
                "parameters": [
                    {
                        "description": "New name and subscription flag",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.updateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Success.", "schema": {"type": "string"}},
                    "400": {"description": "Invalid name or malformed body", "schema": {"type": "string"}},
                    "404": {"description": "Not signed in", "schema": {"type": "string"}}
                }
            }
        },
        "/user/whoami": {
            "post": {
                "description": "Returns the signed-in user, or an empty object.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Describe the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.whoamiResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.documentRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "identifier": {"type": "string"},
                "uid": {"type": "string"}
            }
        },
        "handlers.updateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "subscribed": {"type": "boolean"}
            }
        },
        "handlers.whoamiResponse": {
            "type": "object",
            "properties": {
                "authKey": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "subscribed": {"type": "boolean"},
                "uid": {"type": "string"}
            }
        },
        "services.SaveRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "identifier": {"type": "string"},
                "public": {"type": "boolean"},
                "title": {"type": "string"}
            }
        },
        "utils.Payload": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
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
	Title:            "Folio API",
	Description:      "Owned JSON document storage with Google sign-in and API keys.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
