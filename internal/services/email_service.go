package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/example/greenchain/internal/logs"
)

// EmailSender delivers account emails. Implementations must return an error
// on transport failure so the triggering request fails rather than silently
// dropping the message.
type EmailSender interface {
	SendVerificationCode(toEmail, code, displayName string) error
	SendPasswordResetLink(toEmail, link, displayName string) error
}

// SMTPEmailService sends HTML email over SMTP.
type SMTPEmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPEmailService creates an SMTPEmailService.
func NewSMTPEmailService(host, port, username, password, from string) *SMTPEmailService {
	return &SMTPEmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendVerificationCode emails a one-time verification code.
func (s *SMTPEmailService) SendVerificationCode(toEmail, code, displayName string) error {
	subject := "GreenChain - Email Verification Required"
	body := verificationEmailBody(code, displayName)

	if err := s.send(toEmail, subject, body); err != nil {
		logs.Logger.WithError(err).WithField("to", toEmail).Error("failed to send verification email")
		return fmt.Errorf("send verification email: %w", err)
	}

	logs.Logger.WithField("to", toEmail).Info("verification email sent")
	return nil
}

// SendPasswordResetLink emails a password-reset URL.
func (s *SMTPEmailService) SendPasswordResetLink(toEmail, link, displayName string) error {
	subject := "GreenChain - Password Reset Request"
	body := resetEmailBody(link, displayName)

	if err := s.send(toEmail, subject, body); err != nil {
		logs.Logger.WithError(err).WithField("to", toEmail).Error("failed to send password reset email")
		return fmt.Errorf("send password reset email: %w", err)
	}

	logs.Logger.WithField("to", toEmail).Info("password reset email sent")
	return nil
}

func (s *SMTPEmailService) send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String()))
}

func verificationEmailBody(code, displayName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #4CAF50;">GreenChain</h1>
    <h2>Welcome, %s!</h2>
    <p>To complete your registration, enter the verification code below.</p>
    <div style="border: 2px solid #4CAF50; border-radius: 8px; padding: 20px; text-align: center;">
      <span style="font-size: 32px; font-weight: bold; letter-spacing: 5px;">%s</span>
      <p><small>This code expires in 10 minutes.</small></p>
    </div>
    <p>If you did not request this code, please ignore this email.</p>
  </div>
</body>
</html>`, displayName, code)
}

func resetEmailBody(link, displayName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #4CAF50;">GreenChain</h1>
    <h2>Hello %s!</h2>
    <p>We received a request to reset the password for your GreenChain account.</p>
    <p style="text-align: center;">
      <a href="%s" style="background: #ff6b6b; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px;">Reset Password</a>
    </p>
    <p><small>This link expires in 1 hour and can only be used once. If you did not
    request a reset, ignore this email and your password will stay unchanged.</small></p>
    <p style="word-break: break-all; font-family: monospace;">%s</p>
  </div>
</body>
</html>`, displayName, link, link)
}
