package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendInvoiceReceipt(toEmail, planName string, amountCents int64, currency string, periodStart, periodEnd time.Time) error
	SendOrderReady(toEmail, assetTitle, downloadURL string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendInvoiceReceipt(toEmail, planName string, amountCents int64, currency string, periodStart, periodEnd time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your StockPoints receipt")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thanks for your subscription!</h2>
			<p>We applied your <strong>%s</strong> renewal.</p>
			<p>Amount: <strong>%.2f %s</strong></p>
			<p>Billing period: %s &ndash; %s</p>
			<p>Your points have been credited to your account.</p>
		</div>
	`, planName, float64(amountCents)/100, currency,
		periodStart.Format("Jan 2, 2006"), periodEnd.Format("Jan 2, 2006"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send receipt to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendOrderReady(toEmail, assetTitle, downloadURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your download is ready")

	if assetTitle == "" {
		assetTitle = "Your file"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s is ready</h2>
			<p><a href="%s">Download it here</a>. The link is valid for a limited time;
			you can always regenerate it from your order history.</p>
		</div>
	`, assetTitle, downloadURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send order-ready mail to %s: %w", toEmail, err)
	}
	return nil
}
