package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

const defaultScraperMaxLength = 5000

var scraperWhitespace = regexp.MustCompile(`\s+`)

// WebScraper builds the WEB_SCRAPER tool: web_scraper {url}, returning the
// page's visible text with tags stripped and whitespace collapsed,
// truncated to maxLength. Grounded on go/pkg/executor/builtin/html_clean.go's
// goquery-based strip-and-clean idiom (minus go-readability's article
// extraction, which this tool has no need of — see DESIGN.md).
func WebScraper(client *http.Client, maxLength int) executor.AgentTool {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxLength <= 0 {
		maxLength = defaultScraperMaxLength
	}
	return executor.AgentTool{
		Def: executor.ToolDef{
			Name:        "web_scraper",
			Description: "Fetches a web page and returns its visible text content.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"url": map[string]any{"type": "string"}},
				"required":   []string{"url"},
			},
		},
		Execute: func(ctx context.Context, argumentsJSON string) (string, error) {
			var args struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
				return "Error: invalid tool arguments", nil
			}
			if args.URL == "" {
				return "Error: url is required", nil
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Sprintf("Error: fetching %s failed: %v", args.URL, err), nil
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return fmt.Sprintf("Error: %s returned status %d", args.URL, resp.StatusCode), nil
			}

			doc, err := goquery.NewDocumentFromReader(resp.Body)
			if err != nil {
				return fmt.Sprintf("Error: parsing HTML failed: %v", err), nil
			}
			doc.Find("script, style, noscript").Remove()

			text := strings.TrimSpace(scraperWhitespace.ReplaceAllString(doc.Text(), " "))
			return truncate(text, maxLength), nil
		},
	}
}
