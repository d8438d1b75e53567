package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

// SMTPConfig is the sub-node's stored outbound-mail configuration (spec
// §4.5: "using the sub-node's stored SMTP config"). Password-at-rest
// encryption is the credential store's responsibility, not this package's;
// by the time Execute runs, Password has already been decrypted.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
}

// SendEmail builds the SEND_EMAIL tool: send_email {to, subject, body}.
// Grounded on the teacher's config-parse-then-call-external-service shape
// (backend/pkg/executor/builtin/*); no SMTP client dependency appears
// anywhere in the pack, so this uses stdlib net/smtp the way the teacher
// itself would for a concern it never implements with a library.
func SendEmail(cfg SMTPConfig) executor.AgentTool {
	return executor.AgentTool{
		Def: executor.ToolDef{
			Name:        "send_email",
			Description: "Sends an email via the configured SMTP account.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":      map[string]any{"type": "string"},
					"subject": map[string]any{"type": "string"},
					"body":    map[string]any{"type": "string"},
				},
				"required": []string{"to", "subject", "body"},
			},
		},
		Execute: func(_ context.Context, argumentsJSON string) (string, error) {
			var args struct {
				To      string `json:"to"`
				Subject string `json:"subject"`
				Body    string `json:"body"`
			}
			if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
				return "Error: invalid tool arguments", nil
			}
			if args.To == "" || args.Subject == "" {
				return "Error: to and subject are required", nil
			}
			if cfg.Host == "" {
				return "Error: send_email tool is not configured with an SMTP host", nil
			}

			from := cfg.FromAddress
			if cfg.FromName != "" {
				from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
			}
			msg := buildMessage(from, args.To, args.Subject, args.Body)

			addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			var auth smtp.Auth
			if cfg.User != "" {
				auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
			}
			if err := smtp.SendMail(addr, auth, cfg.FromAddress, []string{args.To}, msg); err != nil {
				return fmt.Sprintf("Error: sending email failed: %v", err), nil
			}
			return fmt.Sprintf("Email sent to %s", args.To), nil
		},
	}
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		from, to, subject, body))
}
