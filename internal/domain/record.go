package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Sentiment is the overall tone of an article.
type Sentiment string

// Sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment maps s onto a Sentiment, case-insensitively.
// Unknown or empty values are neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ExtractedRecord is the structured view of one article.
type ExtractedRecord struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	KeyPoints StringList `json:"key_points"`
	Entities  StringList `json:"entities"`
	Sentiment Sentiment  `json:"sentiment"`
	Category  string     `json:"category"`
	Tags      StringList `json:"tags"`
}

// Complete reports whether every field carries a value. Slices may be
// empty but not nil.
func (r ExtractedRecord) Complete() bool {
	return r.Title != "" &&
		r.Summary != "" &&
		r.Category != "" &&
		r.KeyPoints != nil &&
		r.Entities != nil &&
		r.Tags != nil &&
		ParseSentiment(string(r.Sentiment)) == r.Sentiment
}

// FillFrom copies every missing field of r from defaults and canonicalises
// the sentiment.
func (r *ExtractedRecord) FillFrom(defaults ExtractedRecord) {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = defaults.Title
	}
	if strings.TrimSpace(r.Summary) == "" {
		r.Summary = defaults.Summary
	}
	if strings.TrimSpace(r.Category) == "" {
		r.Category = defaults.Category
	}
	if r.KeyPoints == nil {
		r.KeyPoints = nonNil(defaults.KeyPoints)
	}
	if r.Entities == nil {
		r.Entities = nonNil(defaults.Entities)
	}
	if r.Tags == nil {
		r.Tags = nonNil(defaults.Tags)
	}
	if strings.TrimSpace(string(r.Sentiment)) == "" {
		r.Sentiment = defaults.Sentiment
	}
	r.Sentiment = ParseSentiment(string(r.Sentiment))
}

func nonNil(s StringList) StringList {
	if s == nil {
		return StringList{}
	}
	return s
}

// StringList is a list of short strings as returned by a model. Besides a
// JSON array of strings it accepts a single string, and array items that
// are objects with a "name", "text" or "value" member.
type StringList []string

// UnmarshalJSON implements the lenient decoding described on StringList.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var single string
	if json.Unmarshal(data, &single) == nil {
		if single = strings.TrimSpace(single); single == "" {
			*l = StringList{}
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	out := make(StringList, 0, len(items))
	for _, item := range items {
		if s := itemText(item); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

func itemText(item json.RawMessage) string {
	var s string
	if json.Unmarshal(item, &s) == nil {
		return strings.TrimSpace(s)
	}

	var obj map[string]any
	if json.Unmarshal(item, &obj) == nil {
		for _, key := range []string{"name", "text", "value"} {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}

	var n json.Number
	if json.Unmarshal(item, &n) == nil {
		return n.String()
	}
	return ""
}
