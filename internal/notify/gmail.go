package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"text/template"

	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

var confirmationBody = template.Must(template.New("confirmation").Parse(`Hola {{if .GuardianName}}{{.GuardianName}}{{else}}{{.RegistrantName}}{{end}},

Recibimos la inscripción {{if .GuardianName}}de {{.RegistrantName}} {{end}}al {{.TournamentName}}.

Número de inscripción: {{.RegistrationID}}
DNI: {{.DNI}}
Academia: {{.Academy}}
Graduación: {{.BeltRank}}
Categoría: {{.Category}}

La inscripción queda pendiente hasta que verifiquemos el comprobante de pago.
Te avisaremos cuando esté confirmada.
`))

// GmailSender sends confirmations through the Gmail API using a service
// account with domain-wide delegation, impersonating Sender.
type GmailSender struct {
	svc    *gmailv1.Service
	sender string
}

func NewGmailSender(ctx context.Context, credentialsFile, sender string) (*GmailSender, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("gmail credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(raw, gmailv1.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmail credentials: %w", err)
	}
	cfg.Subject = sender

	svc, err := gmailv1.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gmail client: %w", err)
	}
	return &GmailSender{svc: svc, sender: sender}, nil
}

func (g *GmailSender) SendConfirmation(ctx context.Context, c Confirmation) error {
	raw, err := buildMessage(g.sender, c)
	if err != nil {
		return err
	}
	msg := &gmailv1.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	if _, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

// buildMessage renders an RFC 5322 plain text message.
func buildMessage(from string, c Confirmation) ([]byte, error) {
	var body bytes.Buffer
	if err := confirmationBody.Execute(&body, c); err != nil {
		return nil, err
	}
	subject := mime.QEncoding.Encode("utf-8", fmt.Sprintf("Inscripción recibida - %s", c.RegistrationID))

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", c.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
