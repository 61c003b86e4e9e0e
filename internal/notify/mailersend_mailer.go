package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/restom/restom-backend/pkg/logger"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendPaymentReceipt(ctx context.Context, toEmail, orderID string, amount float64, currency string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Payment received for order %s", orderID)
	html := fmt.Sprintf(`
		<h2>Thanks for your payment!</h2>
		<p>We received <strong>%s %.2f</strong> for order <strong>%s</strong>.</p>
		<p>Your order is confirmed and on its way.</p>
	`, currency, amount, orderID)

	text := fmt.Sprintf("We received %s %.2f for order %s. Your order is confirmed.", currency, amount, orderID)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(sendCtx, msg)
	return err
}

// DevMailer logs receipts instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendPaymentReceipt(ctx context.Context, toEmail, orderID string, amount float64, currency string) error {
	logger.InfoContext(ctx, "[DEV MAIL] payment receipt",
		"to", toEmail,
		"order_id", orderID,
		"amount", amount,
		"currency", currency,
	)
	return nil
}
