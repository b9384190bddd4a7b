// Package resend avisa por email a la clínica cuando llega una solicitud nueva.
package resend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/clients"
	"vet-clinic/internal/platform/logger"

	"github.com/resend/resend-go/v2"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var ErrNotConfigured = errors.New("resend notifier not configured")

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Sin WithUnsafe: el HTML crudo que venga del formulario queda escapado.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Notifier struct {
	emails emailSender
	from   string
	to     []string
	loc    *time.Location
	log    logger.Logger
}

type Config struct {
	APIKey   string
	From     string
	To       []string
	Location *time.Location
}

func New(cfg Config, log logger.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.From) == "" || len(cfg.To) == 0 {
		return nil, ErrNotConfigured
	}
	return newNotifier(resend.NewClient(cfg.APIKey).Emails, cfg, log), nil
}

func newNotifier(s emailSender, cfg Config, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Notifier{emails: s, from: cfg.From, to: cfg.To, loc: loc, log: log}
}

func (n *Notifier) NotifyNewClient(ctx context.Context, c clients.Client) error {
	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(n.markdown(c)), &body); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	sent, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: "Новая заявка: " + c.FirstName + " " + c.LastName,
		Html:    body.String(),
		ReplyTo: deref(c.Email),
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	n.log.Info("new client notification sent", logger.Fields{
		"client_id":  c.ID,
		"message_id": sent.Id,
	})
	return nil
}

func (n *Notifier) markdown(c clients.Client) string {
	var b strings.Builder
	b.WriteString("## Новая заявка с сайта\n\n")
	fmt.Fprintf(&b, "- **Клиент:** %s %s\n", escapeMD(c.FirstName), escapeMD(c.LastName))
	line := func(label string, v *string) {
		if v != nil && *v != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", label, escapeMD(*v))
		}
	}
	line("Телефон", c.Phone)
	line("Email", c.Email)
	line("Питомец", c.PetName)
	line("Тип", c.PetType)
	fmt.Fprintf(&b, "- **Дата:** %s\n", c.CreatedAt.In(n.loc).Format("02.01.2006 15:04"))
	if c.Message != nil && *c.Message != "" {
		b.WriteString("\n")
		for _, l := range strings.Split(*c.Message, "\n") {
			b.WriteString("> " + escapeMD(l) + "\n")
		}
	}
	return b.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`",
	"[", `\[`, "]", `\]`, "#", `\#`, ">", `\>`,
)

func escapeMD(s string) string { return mdEscaper.Replace(s) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
