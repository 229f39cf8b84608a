package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodySize caps JSON request bodies. Attachment payloads arrive base64
// encoded inside JSON, so the cap is generous.
const maxBodySize = 25 << 20

// ParseJSON decodes the request body into dest, capping the body size so a
// runaway request cannot exhaust memory.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
