// linkpeel-mcp exposes a running linkpeel instance as MCP tools over stdio,
// so agent clients can resolve redirect links and extract articles without
// speaking the HTTP API directly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// articleRecord mirrors the linkpeel API's article shape.
type articleRecord struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	PublishDate string `json:"publishDate"`
	Content     string `json:"content"`
	URL         string `json:"url"`
}

// apiError mirrors the linkpeel API's error body.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// resolveResult mirrors the linkpeel resolve response.
type resolveResult struct {
	Success     bool    `json:"success"`
	OriginalURL string  `json:"originalUrl"`
	FinalURL    string  `json:"finalUrl"`
	Error       string  `json:"error"`
	Duration    float64 `json:"duration"`
}

func main() {
	apiURL := os.Getenv("LINKPEEL_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("LINKPEEL_API_KEY")

	s := server.NewMCPServer(
		"linkpeel",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_article",
		mcp.WithDescription("Resolve a URL (including news-aggregator redirect links) in a headless browser and extract the article's title, lead image, publish date, and body text."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The article or redirect URL to process"),
		),
		mcp.WithString("format",
			mcp.Description("Body format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL, apiKey))

	resolveTool := mcp.NewTool("resolve_url",
		mcp.WithDescription("Resolve a redirect-wrapped URL to its final destination without extracting content."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to resolve"),
		),
	)
	s.AddTool(resolveTool, handleResolve(apiURL, apiKey))

	batchTool := mcp.NewTool("extract_articles",
		mcp.WithDescription("Extract articles from multiple URLs concurrently. Returns one result per URL, in input order, with per-URL success or failure."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to process"),
		),
		mcp.WithString("format",
			mcp.Description("Body format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(batchTool, handleBatch(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet performs an authenticated GET and returns status plus body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func handleExtract(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		format := request.GetString("format", "")

		q := neturl.Values{"url": {url}}
		if format != "" {
			q.Set("format", format)
		}

		status, body, err := apiGet(ctx, client, apiURL, apiKey, "/api/scrape?"+q.Encode())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(failureText(body)), nil
		}

		var record articleRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var out bytes.Buffer
		fmt.Fprintf(&out, "# %s\n\n", record.Title)
		if record.PublishDate != "" {
			fmt.Fprintf(&out, "Published: %s\n", record.PublishDate)
		}
		if record.Image != "" {
			fmt.Fprintf(&out, "Image: %s\n", record.Image)
		}
		fmt.Fprintf(&out, "URL: %s\n\n%s", record.URL, record.Content)

		return mcp.NewToolResultText(out.String()), nil
	}
}

func handleResolve(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		q := neturl.Values{"url": {url}}
		status, body, err := apiGet(ctx, client, apiURL, apiKey, "/api/resolve?"+q.Encode())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(failureText(body)), nil
		}

		var result resolveResult
		if err := json.Unmarshal(body, &result); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(result.FinalURL), nil
	}
}

func handleBatch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required"), nil
		}
		format := request.GetString("format", "")

		payload := map[string]any{"urls": urls}
		if format != "" {
			payload["options"] = map[string]any{"outputFormat": format}
		}

		reqBody, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			apiURL+"/api/scrape-batch", bytes.NewReader(reqBody))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(failureText(body)), nil
		}

		return mcp.NewToolResultText(string(body)), nil
	}
}

// failureText extracts a human-readable message from an API error body.
func failureText(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		if e.Details != "" {
			return fmt.Sprintf("%s: %s (%s)", e.Message, e.Error, e.Details)
		}
		return fmt.Sprintf("%s: %s", e.Message, e.Error)
	}
	return string(body)
}
