package email

import (
	"errors"
	"fmt"
	"os"

	mail "github.com/go-mail/mail"

	"conferencereg/internal/domain"
)

// buildMessage composes the MIME message shared by every provider: From, a single To,
// optional Cc, subject, a text/plain part with the HTML alternative, and attachments.
func buildMessage(from domain.Address, msg *domain.Message) (*mail.Message, error) {
	if msg == nil {
		return nil, errors.New("message is nil")
	}
	if msg.To.Email == "" {
		return nil, errors.New("message has no recipient")
	}

	m := mail.NewMessage(mail.SetCharset("UTF-8"), mail.SetEncoding(mail.Base64))
	m.SetAddressHeader("From", from.Email, from.Name)
	m.SetAddressHeader("To", msg.To.Email, msg.To.Name)
	if cc := ccHeader(m, msg.Cc); len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}
	m.SetHeader("Subject", msg.Subject)

	text := msg.TextBody
	if text == "" && msg.HTMLBody != "" {
		text = PlainText(msg.HTMLBody)
	}
	switch {
	case text != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", text)
	}

	for _, a := range msg.Attachments {
		if _, err := os.Stat(a.Path); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
		if a.Filename != "" {
			m.Attach(a.Path, mail.Rename(a.Filename))
		} else {
			m.Attach(a.Path)
		}
	}
	return m, nil
}

func ccHeader(m *mail.Message, cc []domain.Address) []string {
	out := make([]string, 0, len(cc))
	for _, c := range cc {
		if c.Email == "" {
			continue
		}
		out = append(out, m.FormatAddress(c.Email, c.Name))
	}
	return out
}

// recipients returns the envelope recipients of msg.
func recipients(msg *domain.Message) []string {
	out := []string{msg.To.Email}
	for _, c := range msg.Cc {
		if c.Email != "" {
			out = append(out, c.Email)
		}
	}
	return out
}
