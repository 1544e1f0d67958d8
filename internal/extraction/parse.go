package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/content-extraction/internal/domain"
)

var errNotJSONObject = errors.New("model reply is not a JSON object")

// ParseResponse decodes a model reply into a record. Surrounding whitespace
// and a Markdown code fence are ignored. Missing fields are left zero.
func ParseResponse(reply string) (domain.ExtractedRecord, error) {
	body := []byte(stripCodeFence(strings.TrimSpace(reply)))
	if len(body) == 0 || body[0] != '{' {
		return domain.ExtractedRecord{}, errNotJSONObject
	}

	var rec domain.ExtractedRecord
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&rec); err != nil {
		return domain.ExtractedRecord{}, fmt.Errorf("decode model reply: %w", err)
	}
	if dec.More() {
		return domain.ExtractedRecord{}, errors.New("decode model reply: trailing data after JSON object")
	}
	return rec, nil
}

// stripCodeFence removes a ```lang ... ``` wrapper when s is fenced.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
