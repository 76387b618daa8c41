// Package atcoder holds the wire shapes and endpoint builders for the
// kenkoooo AtCoder API, the external judge and catalog this service
// reconciles orders against. It deliberately does not perform HTTP itself:
// every outbound call must go through the fetch-log throttle gate.
package atcoder

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ResultAccepted is the judge's verdict string for an accepted submission.
const ResultAccepted = "AC"

// ProblemDatum is one record of the merged-problems catalog. Point is the
// scored difficulty and is null for unrated problems. The feed carries many
// more fields; only the ones the sync maps are decoded.
type ProblemDatum struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Point *float64 `json:"point"`
}

// Submission is one record of the user submissions feed.
type Submission struct {
	ID          int64   `json:"id"`
	EpochSecond int64   `json:"epoch_second"`
	ProblemID   string  `json:"problem_id"`
	ContestID   string  `json:"contest_id"`
	UserID      string  `json:"user_id"`
	Language    string  `json:"language"`
	Point       float64 `json:"point"`
	Result      string  `json:"result"`
}

// ProblemsURL is the catalog endpoint under the given API root.
func ProblemsURL(base string) string {
	return base + "/resources/merged-problems.json"
}

// SubmissionsURL is the submission feed for one user, starting at
// fromSecond (unix seconds, inclusive).
func SubmissionsURL(base, user string, fromSecond int64) string {
	return fmt.Sprintf("%s/atcoder-api/v3/user/submissions?user=%s&from_second=%d",
		base, url.QueryEscape(user), fromSecond)
}

// DecodeJSON decodes a response body into v. Outbound requests set
// Accept-Encoding explicitly, which turns off the transport's transparent
// decompression, so gzip bodies are unwrapped here.
func DecodeJSON(resp *http.Response, v interface{}) error {
	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		body = gz
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return nil
}
