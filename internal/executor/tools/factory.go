package tools

import (
	"net/http"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/executor"
)

// Deps bundles every external collaborator a tool sub-node might need. Not
// every field is used by every kind; the Agent Executor builds one Deps per
// run and passes it down to Build for each discovered tool sub-node.
type Deps struct {
	HTTPClient *http.Client
	Products   ProductRepository
	Orders     OrderRepository
	OrgID      string
	SMTP       SMTPConfig
}

// Build dispatches a tool sub-node, by kind and stored data, to its
// executor.AgentTool(s). Unrecognised kinds fall back to Passthrough rather
// than failing the agent node outright (spec §4.5: "any other kind ...
// exposed as a tool whose execute simply echoes its input").
func Build(kind domain.NodeKind, data map[string]any, deps Deps) []executor.AgentTool {
	switch kind {
	case domain.KindHTTPRequest:
		return []executor.AgentTool{HTTPRequest(deps.HTTPClient)}
	case domain.KindSendEmail:
		cfg := deps.SMTP
		if host, ok := data["smtpHost"].(string); ok && host != "" {
			cfg.Host = host
		}
		if from, ok := data["fromAddress"].(string); ok && from != "" {
			cfg.FromAddress = from
		}
		return []executor.AgentTool{SendEmail(cfg)}
	case domain.KindWebScraper:
		maxLen := defaultScraperMaxLength
		if v, ok := data["maxLength"].(float64); ok && v > 0 {
			maxLen = int(v)
		}
		return []executor.AgentTool{WebScraper(deps.HTTPClient, maxLen)}
	case domain.KindCalculator:
		return []executor.AgentTool{Calculator()}
	case domain.KindInventoryLookup:
		if deps.Products == nil {
			return nil
		}
		return InventoryLookup(deps.Products, deps.OrgID)
	case domain.KindOrderManager:
		if deps.Orders == nil {
			return nil
		}
		return OrderManager(deps.Orders, deps.OrgID)
	default:
		return []executor.AgentTool{Passthrough(string(kind), "")}
	}
}
