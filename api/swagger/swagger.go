package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Research Repository",
        "description": "Research paper repository for students, research advisers and administrators. Mutating endpoints redirect with a flash message, or answer {success, message} to AJAX callers.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Session login, logout and student password reset"},
        {"name": "Admin", "description": "Dashboard, activity log and catalogue export"},
        {"name": "Departments", "description": "Academic departments"},
        {"name": "Strands", "description": "Senior High School strands"},
        {"name": "SubAdmins", "description": "Research adviser accounts"},
        {"name": "Research", "description": "Upload, search and read research papers"},
        {"name": "Bookmarks", "description": "Student bookmarks"},
        {"name": "Profile", "description": "Own account settings"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Database readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unavailable"}}}
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in",
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged in", "schema": {"$ref": "#/definitions/Result"}},
                    "303": {"description": "Redirect to the caller's home page"},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Result"}},
                    "429": {"description": "Too many attempts"}
                }
            }
        },
        "/auth/logout": {
            "post": {"tags": ["Authentication"], "summary": "Log out", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Result"}}}}
        },
        "/auth/password/forgot": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request a password reset link",
                "parameters": [
                    {"name": "email", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Same reply whether or not the email exists", "schema": {"$ref": "#/definitions/Result"}}}
            }
        },
        "/auth/password/reset": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Reset a student password",
                "parameters": [
                    {"name": "token", "in": "formData", "required": true, "type": "string"},
                    {"name": "password", "in": "formData", "required": true, "type": "string"},
                    {"name": "confirm_password", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Password reset", "schema": {"$ref": "#/definitions/Result"}},
                    "400": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/Result"}}
                }
            }
        },
        "/admin/dashboard": {
            "get": {"tags": ["Admin"], "summary": "Headline counts and runtime metrics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/admin/activity": {
            "get": {
                "tags": ["Admin"],
                "summary": "Activity log",
                "parameters": [
                    {"name": "actor_type", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/research/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the research catalogue",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Attachment"}, "400": {"description": "Unknown format"}}
            }
        },
        "/admin/departments": {
            "get": {"tags": ["Departments"], "summary": "List departments", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Departments"],
                "summary": "Add a department",
                "parameters": [
                    {"name": "name", "in": "formData", "required": true, "type": "string"},
                    {"name": "code", "in": "formData", "type": "string", "maxLength": 20}
                ],
                "responses": {
                    "200": {"description": "Added", "schema": {"$ref": "#/definitions/Result"}},
                    "409": {"description": "Duplicate name", "schema": {"$ref": "#/definitions/Result"}}
                }
            }
        },
        "/admin/departments/{id}/delete": {
            "post": {
                "tags": ["Departments"],
                "summary": "Delete a department",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Result"}}, "404": {"description": "Unknown department"}}
            }
        },
        "/admin/departments/backfill": {
            "post": {
                "tags": ["Departments"],
                "summary": "Link department labels to department ids",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Per-table update counts"}, "403": {"description": "Forbidden"}}
            }
        },
        "/admin/strands": {
            "get": {"tags": ["Strands"], "summary": "List strands", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/admin/strands/{id}": {
            "post": {
                "tags": ["Strands"],
                "summary": "Rename a strand",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "name", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Updated", "schema": {"$ref": "#/definitions/Result"}}}
            }
        },
        "/admin/subadmins": {
            "get": {
                "tags": ["SubAdmins"],
                "summary": "List active research advisers",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["SubAdmins"],
                "summary": "Create a research adviser",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubAdminRequest"}}
                ],
                "responses": {"200": {"description": "Created", "schema": {"$ref": "#/definitions/Result"}}, "409": {"description": "Email in use"}}
            }
        },
        "/admin/subadmins/archived": {
            "get": {
                "tags": ["SubAdmins"],
                "summary": "List archived research advisers, or restore one with ?restore=<id>",
                "parameters": [
                    {"name": "restore", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "303": {"description": "Restore attempted, flash set"}}
            }
        },
        "/admin/subadmins/{id}/archive": {
            "post": {
                "tags": ["SubAdmins"],
                "summary": "Archive a research adviser",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Archived", "schema": {"$ref": "#/definitions/Result"}}}
            }
        },
        "/admin/subadmins/{id}/restore": {
            "post": {
                "tags": ["SubAdmins"],
                "summary": "Restore an archived research adviser",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Restored", "schema": {"$ref": "#/definitions/Result"}}, "404": {"description": "No archived adviser with that id"}}
            }
        },
        "/research": {
            "get": {
                "tags": ["Research"],
                "summary": "Search approved research",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "strand", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Research"],
                "summary": "Upload a research paper",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "required": true, "type": "string"},
                    {"name": "abstract", "in": "formData", "required": true, "type": "string"},
                    {"name": "keywords", "in": "formData", "type": "string"},
                    {"name": "author", "in": "formData", "required": true, "type": "string"},
                    {"name": "department", "in": "formData", "required": true, "type": "string"},
                    {"name": "strand", "in": "formData", "type": "string"},
                    {"name": "document", "in": "formData", "required": true, "type": "file"},
                    {"name": "image", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Uploaded", "schema": {"$ref": "#/definitions/Result"}},
                    "400": {"description": "Validation or upload error"},
                    "409": {"description": "Duplicate title"}
                }
            }
        },
        "/research/{id}": {
            "get": {
                "tags": ["Research"],
                "summary": "Open a paper and get a signed document link",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found"}}
            }
        },
        "/research/{id}/document": {
            "get": {
                "tags": ["Research"],
                "summary": "Download the PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "PDF attachment"}, "403": {"description": "Invalid or expired link"}}
            }
        },
        "/research/{id}/bookmark": {
            "post": {
                "tags": ["Bookmarks"],
                "summary": "Toggle a bookmark",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Toggled", "schema": {"$ref": "#/definitions/Result"}}}
            }
        },
        "/bookmarks": {
            "get": {"tags": ["Bookmarks"], "summary": "List bookmarks", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/profile": {
            "get": {"tags": ["Profile"], "summary": "Current profile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Profile"],
                "summary": "Update profile and optionally the password",
                "consumes": ["multipart/form-data", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "first_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "last_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "email", "in": "formData", "required": true, "type": "string"},
                    {"name": "department", "in": "formData", "type": "string"},
                    {"name": "current_password", "in": "formData", "type": "string"},
                    {"name": "new_password", "in": "formData", "type": "string"},
                    {"name": "confirm_password", "in": "formData", "type": "string"},
                    {"name": "profile_picture", "in": "formData", "type": "file"}
                ],
                "responses": {"200": {"description": "Updated", "schema": {"$ref": "#/definitions/Result"}}, "400": {"description": "Validation error, nothing saved"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "user_type": {"type": "string", "enum": ["admin", "subadmin", "student"]},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["user_type", "email", "password"]
        },
        "CreateSubAdminRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "department": {"type": "string"},
                "permissions": {"type": "array", "items": {"type": "string", "enum": ["manage_departments", "upload_research", "manage_strands"]}}
            },
            "required": ["first_name", "last_name", "email", "password", "department"]
        },
        "Result": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"}
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
