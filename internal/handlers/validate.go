package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

const maxBodyBytes = 1 << 20

// payload schemas; "\\S" rejects blank strings
var (
	registerSchema = mustSchema(`{
		"type": "object",
		"required": ["name", "email", "password"],
		"properties": {
			"name": {"type": "string", "pattern": "\\S"},
			"email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
			"password": {"type": "string", "minLength": 6},
			"invite_code": {"type": "string"}
		}
	}`)

	signInSchema = mustSchema(`{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "pattern": "\\S"},
			"password": {"type": "string", "minLength": 1}
		}
	}`)

	profileSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "pattern": "\\S"},
			"avatar_url": {"type": "string"}
		}
	}`)

	completeProfileSchema = mustSchema(`{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "pattern": "\\S"},
			"avatar_url": {"type": "string"}
		}
	}`)

	pushTokenSchema = mustSchema(`{
		"type": "object",
		"required": ["token"],
		"properties": {
			"token": {"type": "string"}
		}
	}`)

	createRequestSchema = mustSchema(`{
		"type": "object",
		"required": ["item_name", "description", "category"],
		"properties": {
			"item_name": {"type": "string", "pattern": "\\S"},
			"description": {"type": "string", "pattern": "\\S"},
			"category": {"type": "string", "pattern": "\\S"},
			"urgency": {"type": "string", "enum": ["normal", "urgent"]},
			"photo_url": {"type": "string"}
		}
	}`)

	statusSchema = mustSchema(`{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string", "enum": ["completed", "cancelled"]}
		}
	}`)

	reviewSchema = mustSchema(`{
		"type": "object",
		"required": ["rating", "request_id"],
		"properties": {
			"rating": {"type": "integer", "minimum": 1, "maximum": 5},
			"comment": {"type": "string"},
			"reviewed_user_id": {"type": "string"},
			"request_id": {"type": "string", "pattern": "\\S"}
		}
	}`)

	messageSchema = mustSchema(`{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string", "pattern": "\\S"}
		}
	}`)

	createEventSchema = mustSchema(`{
		"type": "object",
		"required": ["title", "description", "category", "event_date", "location"],
		"properties": {
			"title": {"type": "string", "pattern": "\\S"},
			"description": {"type": "string", "pattern": "\\S"},
			"category": {"type": "string", "pattern": "\\S"},
			"event_date": {"type": "string", "pattern": "\\S"},
			"location": {"type": "string", "pattern": "\\S"},
			"photo_url": {"type": "string"}
		}
	}`)

	uploadSchema = mustSchema(`{
		"type": "object",
		"required": ["kind", "filename"],
		"properties": {
			"kind": {"type": "string", "enum": ["request", "event", "avatar"]},
			"filename": {"type": "string", "pattern": "\\S"},
			"content_type": {"type": "string"}
		}
	}`)
)

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("invalid payload schema: %v", err))
	}
	return rs
}

// validatePayload checks body against the schema and returns a readable reason on failure
func validatePayload(ctx context.Context, schema *jsonschema.Schema, body []byte) (string, error) {
	verrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return "", fmt.Errorf("schema validate error: %w", err)
	}
	if len(verrs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i, v := range verrs {
		if i > 0 {
			sb.WriteString("; ")
		}
		if v.PropertyPath != "" && v.PropertyPath != "/" {
			sb.WriteString(strings.TrimPrefix(v.PropertyPath, "/"))
			sb.WriteString(": ")
		}
		sb.WriteString(v.Message)
	}
	return sb.String(), nil
}

// decodeAndValidate reads the body, validates it against the schema and decodes it into dst.
// It writes the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if !json.Valid(body) {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	reason, err := validatePayload(r.Context(), schema, body)
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if reason != "" {
		respondError(w, reason, http.StatusBadRequest)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
