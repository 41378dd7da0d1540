package emailsvc

import (
	htmltmpl "html/template"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
)

var testConf = &core.Config{
	AppName:          "Darasa",
	DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@darasa.test"},
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testConf, logsvc.NewDiscardLogger())

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "jane@example.com"}}, Subject: "Hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "jane@example.com"}}, Subject: "no content"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hello", sent[0].TextContent)

	svc.Reset()
	assert.Empty(t, svc.Sent())
}

func TestConsoleService_Format(t *testing.T) {
	svc := consoleService{defaultFromEmail: testConf.DefaultFromEmail, subjPrefix: "[Darasa] "}
	msg := core.EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: "jane@example.com"}},
		Subject:      "Welcome",
		BodyStr:      "plain body",
		HTMLTemplate: htmltmpl.Must(htmltmpl.New("w").Parse("<p>{{.}}</p>")),
		TemplateData: "Jane",
	}
	require.NoError(t, msg.Render())

	out, err := svc.format(msg)
	require.NoError(t, err)
	assert.Contains(t, out, "Subject: [Darasa] Welcome")
	assert.Contains(t, out, `To: "Jane" <jane@example.com>`)
	assert.Contains(t, out, "plain body")
	assert.Contains(t, out, "<p>Jane</p>")
	assert.NotContains(t, out, "CC:")
}

func TestSendgridService_Prepare(t *testing.T) {
	svc := NewSendgridService(testConf, logsvc.NewDiscardLogger()).(*sendgridService)
	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Jane", Address: "jane@example.com"}},
		Cc:          []mail.Address{{Address: "cc@example.com"}},
		Subject:     "Welcome",
		TextContent: "hello",
		Category:    "welcome",
		Tags:        map[string]string{"user_id": "7"},
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Darasa] Welcome", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "jane@example.com", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, map[string]string{"user_id": "7"}, p.CustomArgs)
	assert.Equal(t, []string{"welcome"}, m.Categories)
	assert.Equal(t, "noreply@darasa.test", m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
