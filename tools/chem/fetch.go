package chem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/chemeval/chemeval/tools"
)

// FetchPageTool fetches a compound reference page and converts it to plain
// text or markdown, giving the agent a way to look up compound background
// information.
type FetchPageTool struct {
	*tools.BaseTool
	client      *http.Client
	maxBodySize int64
}

type fetchPageArgs struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type fetchPageResponse struct {
	Success   bool   `json:"success"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Size      int64  `json:"size"`
	Truncated bool   `json:"truncated"`
	Error     string `json:"error,omitempty"`
}

// NewFetchPageTool creates the fetch_compound_page tool.
func NewFetchPageTool(maxBodySize int64) *FetchPageTool {
	if maxBodySize <= 0 {
		maxBodySize = 2 * 1024 * 1024 // Default: 2MB.
	}

	toolSchema := tools.CreateToolSchema(
		"Fetch a compound reference web page and convert it to text or markdown",
		map[string]interface{}{
			"url":    tools.StringProperty("The URL to fetch"),
			"format": tools.EnumProperty("Output format", []string{"text", "markdown"}),
		},
		[]string{"url", "format"},
	)

	return &FetchPageTool{
		BaseTool: tools.NewBaseTool(ToolFetchPage, "Fetch a compound reference page", toolSchema),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxBodySize: maxBodySize,
	}
}

// Execute performs the fetch. Failures are reported in the response payload
// rather than as errors so the agent can recover.
func (t *FetchPageTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args fetchPageArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return t.errorResponse("failed to parse fetch parameters: " + err.Error())
	}

	if args.URL == "" {
		return t.errorResponse("url parameter is required")
	}
	if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
		return t.errorResponse("url must start with http:// or https://")
	}

	format := strings.ToLower(args.Format)
	if format != "text" && format != "markdown" {
		return t.errorResponse("format must be one of: text, markdown")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return t.errorResponse(fmt.Sprintf("failed to create request: %v", err))
	}
	httpReq.Header.Set("User-Agent", "ChemEval-Fetch/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return t.errorResponse(fmt.Sprintf("failed to fetch url: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return t.errorResponse(fmt.Sprintf("request failed with status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize))
	if err != nil {
		return t.errorResponse(fmt.Sprintf("failed to read response body: %v", err))
	}

	content := string(body)
	if !utf8.ValidString(content) {
		return t.errorResponse("response content is not valid UTF-8")
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		switch format {
		case "text":
			content, err = extractTextFromHTML(content)
		case "markdown":
			content, err = convertHTMLToMarkdown(content)
		}
		if err != nil {
			return t.errorResponse(fmt.Sprintf("failed to convert HTML: %v", err))
		}
	}

	contentSize := int64(len(content))
	truncated := false
	if contentSize > t.maxBodySize {
		content = content[:t.maxBodySize]
		truncated = true
	}

	return json.Marshal(fetchPageResponse{
		Success:   true,
		Content:   content,
		URL:       args.URL,
		Format:    format,
		Size:      contentSize,
		Truncated: truncated,
	})
}

func (t *FetchPageTool) errorResponse(errorMsg string) (json.RawMessage, error) {
	return json.Marshal(fetchPageResponse{
		Success: false,
		Error:   errorMsg,
	})
}

func extractTextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	text := doc.Find("body").Text()
	text = strings.Join(strings.Fields(text), " ")

	return text, nil
}

func convertHTMLToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", err
	}
	return markdown, nil
}
