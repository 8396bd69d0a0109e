package domain

import (
	"strings"
	"time"
)

// Processing status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Image artifact formats.
const (
	ImageFormatPNG   = "png"
	ImageFormatError = "error"
)

// Formatting styles.
const (
	StyleConcise  = "concise"
	StyleDetailed = "detailed"
)

// FormattedContent holds the two reformattings of an agent reply.
type FormattedContent struct {
	Concise  string `json:"concise"`
	Detailed string `json:"detailed"`
}

// ImageArtifact is one generated image, or the record of a failed attempt.
// On success Format is "png" and Base64Data carries the encoded payload;
// on failure Format is "error", the payload is empty, and Error explains why.
type ImageArtifact struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Base64Data string `json:"base64Data"`
	Format     string `json:"format"`
	SizeBytes  int    `json:"sizeBytes"`
	Prompt     string `json:"prompt"`
	ModelUsed  string `json:"modelUsed,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether the artifact records a failure instead of an image.
func (a ImageArtifact) Failed() bool {
	return a.Format == ImageFormatError
}

// ProcessingResult is the full output of one pipeline run.
// Proof preserves first-occurrence order and contains no duplicate URL.
type ProcessingResult struct {
	OriginalQuery    string           `json:"originalQuery"`
	SessionID        string           `json:"sessionId"`
	FormattedContent FormattedContent `json:"formattedContent"`
	Images           []ImageArtifact  `json:"images"`
	Proof            []string         `json:"proof"`
	Status           string           `json:"status"`
	Error            string           `json:"error,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}

// queryPreviewLen is how much of the original response is kept in results.
const queryPreviewLen = 100

// QueryPreview truncates an agent response for inclusion in result records.
func QueryPreview(response string) string {
	if len(response) <= queryPreviewLen {
		return response
	}
	return strings.TrimSpace(response[:queryPreviewLen]) + "..."
}
