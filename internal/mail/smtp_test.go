package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@devdesk.test", FromName: "DevDesk"})

	msg := m.message("dev@example.com", "You were assigned", "plain body", "<p>html body</p>")

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "To: dev@example.com")
	assert.Contains(t, out, "Subject: You were assigned")
	assert.Contains(t, out, `From: "DevDesk" <noreply@devdesk.test>`)
	assert.Contains(t, out, "text/plain")
	assert.Contains(t, out, "text/html")
	assert.Equal(t, []string{"dev@example.com"}, msg.GetHeader("To"))
}

func TestMessage_PlainOnly(t *testing.T) {
	m := NewMailer(SMTPConfig{From: "noreply@devdesk.test"})

	var buf bytes.Buffer
	_, err := m.message("a@b.co", "s", "only text", "").WriteTo(&buf)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "text/html")
}
