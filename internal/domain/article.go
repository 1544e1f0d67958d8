// Package domain defines the records that flow through an extraction batch.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotObject is returned when an article element is not a JSON object.
var ErrNotObject = errors.New("article is not a JSON object")

// RawArticle is one caller-supplied article. Content, Text and Body are
// interchangeable carriers of the article text.
type RawArticle struct {
	ID         string `json:"id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	URL        string `json:"url,omitempty"`
	Source     string `json:"source,omitempty"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	Text       string `json:"text,omitempty"`
	Body       string `json:"body,omitempty"`

	// Malformed marks an element that could not be read as an article.
	Malformed bool `json:"-"`
}

// UnmarshalJSON accepts ids as strings or numbers and ignores text fields
// that are not strings, so a wrongly typed field reads as absent.
func (a *RawArticle) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return ErrNotObject
	}

	*a = RawArticle{
		ID:         scalarText(fields["id"]),
		ExternalID: scalarText(fields["external_id"]),
		URL:        stringField(fields["url"]),
		Source:     stringField(fields["source"]),
		Title:      stringField(fields["title"]),
		Content:    stringField(fields["content"]),
		Text:       stringField(fields["text"]),
		Body:       stringField(fields["body"]),
	}
	return nil
}

// ParseArticles decodes each element independently. Elements that are not
// objects come back with Malformed set so they can be reported per item.
func ParseArticles(elements []json.RawMessage) []RawArticle {
	out := make([]RawArticle, len(elements))
	for i, raw := range elements {
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			out[i] = RawArticle{Malformed: true}
		}
	}
	return out
}

// ContentText returns the first non-empty of Content, Text and Body.
func (a RawArticle) ContentText() (string, bool) {
	for _, s := range []string{a.Content, a.Text, a.Body} {
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// scalarText renders a string or number as text. Blank strings, zero and
// other JSON kinds read as empty so the caller falls back to a placeholder.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		s := stringField(raw)
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if json.Unmarshal(raw, &n) != nil {
			return ""
		}
		if f, err := n.Float64(); err == nil && f == 0 {
			return ""
		}
		return n.String()
	}
	return ""
}
