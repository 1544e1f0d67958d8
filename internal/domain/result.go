package domain

import "strconv"

// Per-article failure messages produced before any external call.
const (
	ErrMsgMissingContent = "Article missing content field"
	ErrMsgInvalidArticle = "Invalid article format"
)

// ItemError records why one article of a batch failed.
type ItemError struct {
	ArticleID string `json:"articleId"`
	Error     string `json:"error"`
}

// BatchResult is the outcome of one batch. Processed always equals
// Successful + Failed, and Errors holds one entry per failure in input order.
type BatchResult struct {
	Processed  int         `json:"processed"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
}

// NewBatchResult returns an empty result with a non-nil error list.
func NewBatchResult() BatchResult {
	return BatchResult{Errors: []ItemError{}}
}

// Succeed counts one successful article.
func (r *BatchResult) Succeed() {
	r.Successful++
}

// Fail counts one failed article and records its error.
func (r *BatchResult) Fail(articleID, message string) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{ArticleID: articleID, Error: message})
}

// ArticleRef returns the article's id, or "article_<position>" for the
// 1-based position when the article has none.
func ArticleRef(a RawArticle, position int) string {
	if a.ID != "" {
		return a.ID
	}
	return "article_" + strconv.Itoa(position)
}
