package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/reporter"
)

// KeyringService is the OS keyring service holding the SMTP password.
const KeyringService = "go-linkedin-harvester"

const implicitTLSPort = 465

type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// Mailer sends the exported file as an attachment over SMTP.
type Mailer struct {
	cfg    config.EmailConfig
	log    *zap.Logger
	now    func() time.Time
	send   sendFunc
	secret func(service, user string) (string, error)
}

func New(cfg config.EmailConfig, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Mailer{
		cfg:    cfg,
		log:    log.With(zap.String("component", "mailer")),
		now:    time.Now,
		secret: keyring.Get,
	}
	if cfg.SMTPPort == implicitTLSPort {
		m.send = smtp.SendMailTLS
	} else {
		m.send = smtp.SendMail
	}
	return m
}

func (m *Mailer) Name() string {
	return "mail"
}

// Notify mails r.Path. It is a no-op without a file.
func (m *Mailer) Notify(ctx context.Context, r reporter.Report) error {
	if r.Path == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to, err := mail.ParseAddressList(m.cfg.To)
	if err != nil {
		return fmt.Errorf("parse recipients: %w", err)
	}
	from, err := mail.ParseAddress(m.cfg.From)
	if err != nil {
		return fmt.Errorf("parse sender: %w", err)
	}

	var buf bytes.Buffer
	if err := m.compose(&buf, from, to, r); err != nil {
		return fmt.Errorf("compose mail: %w", err)
	}

	rcpts := make([]string, len(to))
	for i, a := range to {
		rcpts[i] = a.Address
	}
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	if err := m.send(addr, m.auth(), from.Address, rcpts, &buf); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	m.log.Info("📧 results mailed", zap.Strings("to", rcpts), zap.String("file", filepath.Base(r.Path)))
	return nil
}

// auth is PLAIN when both user and password are known. The password comes
// from SMTP_PASS or, failing that, the OS keyring.
func (m *Mailer) auth() sasl.Client {
	if m.cfg.SMTPUser == "" {
		return nil
	}
	pass := m.cfg.SMTPPass
	if pass == "" {
		account := m.cfg.KeyringAccount
		if account == "" {
			account = m.cfg.SMTPUser
		}
		secret, err := m.secret(KeyringService, account)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) {
				m.log.Warn("⚠️ keyring lookup failed", zap.Error(err))
			}
			return nil
		}
		pass = secret
	}
	return sasl.NewPlainClient("", m.cfg.SMTPUser, pass)
}

func (m *Mailer) compose(w io.Writer, from *mail.Address, to []*mail.Address, r reporter.Report) error {
	now := m.now()

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(Subject(now))

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return err
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := iw.CreatePart(th)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, Body(r)); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return err
	}
	if err := iw.Close(); err != nil {
		return err
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	var ah mail.AttachmentHeader
	ah.SetContentType(contentType(r.Path), nil)
	ah.SetFilename(filepath.Base(r.Path))
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return err
	}
	if _, err := aw.Write(data); err != nil {
		return err
	}
	if err := aw.Close(); err != nil {
		return err
	}
	return mw.Close()
}

func Subject(now time.Time) string {
	return "LinkedIn scrape - " + now.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Body lists whichever of keywords, location and count are set.
func Body(r reporter.Report) string {
	lines := []string{"LinkedIn session completed."}
	if r.Keywords != "" {
		lines = append(lines, "Keywords: "+r.Keywords)
	}
	if r.Location != "" {
		lines = append(lines, "Location: "+r.Location)
	}
	lines = append(lines, "Jobs: "+strconv.Itoa(r.Count))
	return strings.Join(lines, "\n")
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
