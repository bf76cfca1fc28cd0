package emailsvc

import (
	"log"
	"net/mail"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	logsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/logger"
)

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	svc := NewSendgridService(conf, logger)

	msg := core.EmailMessage{
		To:           []mail.Address{{Name: "Ada", Address: "ada@test.com"}, {Address: "bob@test.com"}},
		Subject:      "New notification",
		TemplateName: "notification",
		TemplateData: map[string]interface{}{"Name": "Ada", "Message": "Algebra quiz tomorrow"},
	}
	require.NoError(t, msg.Render(conf))

	m := svc.prepare(msg)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "["+conf.AppName+"] New notification", p.Subject)
	require.Len(t, p.To, 2)
	assert.Equal(t, "ada@test.com", p.To[0].Address)
	assert.Equal(t, "bob@test.com", p.To[1].Address)
	assert.Equal(t, conf.DefaultFromEmail().Address, m.From.Address)

	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Contains(t, m.Content[0].Value, "Algebra quiz tomorrow")
	assert.Equal(t, "text/html", m.Content[1].Type)
}
