package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail_RequiresToAndSubject(t *testing.T) {
	tool := SendEmail(SMTPConfig{Host: "smtp.example.com", Port: 587, FromAddress: "a@example.com"})
	result, err := tool.Execute(context.Background(), `{"body":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: to and subject are required", result)
}

func TestSendEmail_RejectsUnconfiguredHost(t *testing.T) {
	tool := SendEmail(SMTPConfig{})
	result, err := tool.Execute(context.Background(), `{"to":"x@example.com","subject":"hi","body":"hi"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "not configured")
}

func TestBuildMessage_IncludesHeadersAndBody(t *testing.T) {
	msg := buildMessage("Bot <bot@example.com>", "user@example.com", "Hello", "body text")
	text := string(msg)
	assert.Contains(t, text, "From: Bot <bot@example.com>\r\n")
	assert.Contains(t, text, "To: user@example.com\r\n")
	assert.Contains(t, text, "Subject: Hello\r\n")
	assert.Contains(t, text, "body text")
}
