package http

import (
	"encoding/json"
	"mime"
	"net/http"
)

// maxBodyBytes bounds how much of a submission body is read. Review payloads
// are small; anything bigger is abuse.
const maxBodyBytes = 1 << 20

// decodeBody normalizes a request body into a flat field map. JSON bodies are
// decoded with json.Number so large product ids keep full precision. Form
// bodies flatten to last-value-wins strings. Unknown content types get a
// best-effort JSON parse. Parse failures never propagate: a garbled body
// yields an empty map, so the caller sees missing-field validation errors
// instead of a parse error.
func decodeBody(r *http.Request) map[string]any {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	if contentType == "application/x-www-form-urlencoded" {
		return decodeForm(r)
	}

	// JSON, or best-effort JSON for anything unrecognized.
	return decodeJSON(r)
}

func decodeJSON(r *http.Request) map[string]any {
	fields := make(map[string]any)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return map[string]any{}
	}
	return fields
}

func decodeForm(r *http.Request) map[string]any {
	if err := r.ParseForm(); err != nil {
		return map[string]any{}
	}
	fields := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		// Last value wins for repeated keys.
		fields[key] = values[len(values)-1]
	}
	return fields
}
