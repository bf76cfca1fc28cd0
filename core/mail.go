package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

const mailTemplatesDir = "templates/email"

//go:embed all:templates/email
var mailTemplatesFS embed.FS

var (
	mailTemplates     map[string]*mailTemplate
	mailTemplatesOnce sync.Once
	mailTemplatesErr  error
)

type (
	// mailTemplate is the text and html rendition of one template, each optional.
	mailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	EmailMessage struct {
		To           []mail.Address
		Subject      string
		TemplateName string // file name without extension
		TemplateData interface{}

		// filled by Render
		TextContent string
		HTMLContent string
	}

	// MailContext is what the templates are executed with.
	MailContext struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render fills TextContent and HTMLContent from the message template. An unknown template renders nothing.
func (m *EmailMessage) Render(conf *Config) error {
	mailTemplatesOnce.Do(loadMailTemplates)
	if mailTemplatesErr != nil {
		return mailTemplatesErr
	}
	tmpl, ok := mailTemplates[m.TemplateName]
	if !ok {
		return nil
	}

	data := MailContext{AppName: conf.AppName, FrontendBaseURL: conf.FrontendBaseURL, Data: m.TemplateData}
	var buf bytes.Buffer
	if tmpl.text != nil {
		if err := tmpl.text.ExecuteTemplate(&buf, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buf.String()
		buf.Reset()
	}
	if tmpl.html != nil {
		if err := tmpl.html.ExecuteTemplate(&buf, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// loadMailTemplates parses every non-underscore file of the templates dir on top of its _base layout.
func loadMailTemplates() {
	entries, err := fs.ReadDir(mailTemplatesFS, mailTemplatesDir)
	if err != nil {
		mailTemplatesErr = errors.Wrap(err, "reading mail templates")
		return
	}

	loaded := make(map[string]*mailTemplate)
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || strings.HasPrefix(fname, "_") {
			continue
		}
		ext := path.Ext(fname)
		name := strings.TrimSuffix(fname, ext)
		tmpl := loaded[name]
		if tmpl == nil {
			tmpl = new(mailTemplate)
		}

		files := []string{path.Join(mailTemplatesDir, "_base"+ext), path.Join(mailTemplatesDir, fname)}
		switch ext {
		case ".txt":
			tmpl.text, err = texttmpl.ParseFS(mailTemplatesFS, files...)
			if err == nil {
				tmpl.text.Option("missingkey=error")
			}
		case ".gohtml":
			tmpl.html, err = htmltmpl.ParseFS(mailTemplatesFS, files...)
			if err == nil {
				tmpl.html.Option("missingkey=error")
			}
		default:
			continue
		}
		if err != nil {
			mailTemplatesErr = errors.Wrapf(err, "parsing mail template %s", fname)
			return
		}
		loaded[name] = tmpl
	}
	mailTemplates = loaded
}
