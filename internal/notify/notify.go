// Package notify mails the couple when a guest answers the RSVP or a gift
// payment is confirmed.
package notify

import (
	"fmt"
	"strings"

	"weddingsite/internal/domain"

	"gopkg.in/gomail.v2"
)

type Notifier interface {
	RSVPReceived(r domain.RSVP) error
	SaleConfirmed(s domain.Sale) error
}

// Noop is used when SMTP is not configured.
type Noop struct{}

func (Noop) RSVPReceived(domain.RSVP) error  { return nil }
func (Noop) SaleConfirmed(domain.Sale) error { return nil }

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	sender Sender
	from   string
	to     []string
	site   string
}

func NewMailer(host string, port int, user, pass, from, to, site string) *Mailer {
	return NewMailerWithSender(gomail.NewDialer(host, port, user, pass), from, to, site)
}

func NewMailerWithSender(s Sender, from, to, site string) *Mailer {
	var rcpts []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			rcpts = append(rcpts, addr)
		}
	}
	return &Mailer{sender: s, from: from, to: rcpts, site: site}
}

func (m *Mailer) send(subject, body string) error {
	if len(m.to) == 0 {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.sender.DialAndSend(msg)
}

func (m *Mailer) RSVPReceived(r domain.RSVP) error {
	attending := "will attend"
	if !r.Confirmed {
		attending = "will not attend"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", r.Name, attending)
	if r.Companions > 0 {
		fmt.Fprintf(&b, " with %d companion(s)", r.Companions)
	}
	b.WriteString(".\n")
	if r.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", r.Email)
	}
	if r.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Message)
	}
	return m.send(fmt.Sprintf("[%s] New RSVP: %s", m.site, r.Name), b.String())
}

func (m *Mailer) SaleConfirmed(s domain.Sale) error {
	body := fmt.Sprintf("%s gave you %q (%s via %s).\nPayment: %s\nOrder: %s\n",
		s.CustomerName, s.GiftName, s.Amount, s.PaymentMethod, s.PaymentID, s.OrderID)
	return m.send(fmt.Sprintf("[%s] Gift received: %s", m.site, s.GiftName), body)
}
