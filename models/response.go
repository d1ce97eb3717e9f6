package models

// ArticleRecord is the structured metadata extracted from one article page.
// Every field except URL is best-effort and independently absent; absent
// fields are omitted from the JSON rather than carried as empty strings.
type ArticleRecord struct {
	// Title of the article.
	Title string `json:"title,omitempty"`

	// Image is the absolute URL of the lead image.
	Image string `json:"image,omitempty"`

	// PublishDate is RFC 3339 when derived from structured data,
	// otherwise the raw source string.
	PublishDate string `json:"publishDate,omitempty"`

	// Content is the article body text (or markdown, when requested).
	Content string `json:"content,omitempty"`

	// URL is the final settled URL the record was extracted from.
	URL string `json:"url"`
}

// SessionResult is the uniform envelope produced for every processed URL,
// success or failure. It is created once at the end of a session and never
// mutated afterwards.
type SessionResult struct {
	Success bool `json:"success"`

	// OriginalURL always echoes the input URL so batch callers can
	// correlate results under out-of-order completion.
	OriginalURL string `json:"originalUrl"`

	// FinalURL is the settled URL after redirect resolution, when known.
	FinalURL string `json:"finalUrl,omitempty"`

	// Data is populated exactly when Success is true.
	Data *ArticleRecord `json:"data,omitempty"`

	// Error and Code are populated exactly when Success is false.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`

	// Details carries the underlying error text for diagnostics.
	Details string `json:"details,omitempty"`

	DurationSeconds float64 `json:"durationSeconds"`
}

// Failure builds a failed SessionResult from a normalized error.
func Failure(originalURL, finalURL string, err error) *SessionResult {
	se := AsSessionError(err)
	return &SessionResult{
		Success:     false,
		OriginalURL: originalURL,
		FinalURL:    finalURL,
		Error:       se.Message,
		Code:        se.Code,
		Details:     se.Details(),
	}
}

// ResolveResult is the response shape of the resolve endpoints.
type ResolveResult struct {
	Success         bool    `json:"success"`
	OriginalURL     string  `json:"originalUrl"`
	FinalURL        string  `json:"finalUrl,omitempty"`
	Error           string  `json:"error,omitempty"`
	Code            string  `json:"code,omitempty"`
	Details         string  `json:"details,omitempty"`
	DurationSeconds float64 `json:"duration"`
}

// ResolveView projects a SessionResult onto the resolve response shape.
func (r *SessionResult) ResolveView() *ResolveResult {
	return &ResolveResult{
		Success:         r.Success,
		OriginalURL:     r.OriginalURL,
		FinalURL:        r.FinalURL,
		Error:           r.Error,
		Code:            r.Code,
		Details:         r.Details,
		DurationSeconds: r.DurationSeconds,
	}
}

// SessionStats is a snapshot of browser session accounting.
type SessionStats struct {
	MaxConcurrency int `json:"maxConcurrency"`
	ActiveSessions int `json:"activeSessions"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status  string       `json:"status"`
	Uptime  string       `json:"uptime"`
	Stats   SessionStats `json:"stats"`
	Version string       `json:"version"`
}

// ErrorResponse is the body of non-200 single-URL responses.
type ErrorResponse struct {
	Message     string `json:"message"`
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	OriginalURL string `json:"originalUrl"`
	FinalURL    string `json:"finalUrl,omitempty"`
	Details     string `json:"details,omitempty"`
}
