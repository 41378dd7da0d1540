package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain content

		// optional html content, rendered from HTMLTemplate & TemplateData
		HTMLTemplate *htmltmpl.Template
		TemplateData interface{}

		TextContent string
		HTMLContent string

		// Category and Tags label the message for the delivery provider, e.g. "welcome" and {"user_id": "7"}
		Category string
		Tags     map[string]string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) Render() error {
	m.TextContent = m.BodyStr
	if m.HTMLTemplate == nil {
		return nil
	}
	var buff bytes.Buffer
	if err := m.HTMLTemplate.Execute(&buff, m.TemplateData); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
