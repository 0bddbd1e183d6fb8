package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Mailer SMTP 发信，Host 为空时只记录日志
type Mailer struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	SiteName string
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != ""
}

// SendPasswordReset 发送密码重置邮件
func (m *Mailer) SendPasswordReset(to, username, resetURL string) error {
	if !m.Enabled() {
		log.Printf("[Mailer] 未配置 SMTP，跳过发送重置邮件: %s", to)
		return nil
	}

	subject := fmt.Sprintf("%s password reset", m.SiteName)

	textBody := fmt.Sprintf(`Hello %s,

We received a request to reset the password of your %s account.

Reset link (valid for 1 hour): %s

If you did not request a password reset, you can ignore this email.
`, username, m.SiteName, resetURL)

	htmlBody := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>We received a request to reset the password of your <strong>%s</strong> account.</p>
<p><a href="%s" style="display:inline-block;padding:10px 24px;background:#e11d48;color:#fff;text-decoration:none;border-radius:4px;">Reset Password</a></p>
<p style="color:#666;font-size:12px;">The link is valid for 1 hour. If you did not request a password reset, you can ignore this email.</p>
</body></html>`, username, m.SiteName, resetURL)

	return m.sendMultipart(to, subject, textBody, htmlBody)
}

func (m *Mailer) sendMultipart(to, subject, textBody, htmlBody string) error {
	boundary := "----=_Part_hanime_boundary"

	headers := []string{
		fmt.Sprintf("From: %s", m.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, boundary),
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n") + "\r\n\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody + "\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return errors.Wrap(err, "smtp dial")
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "smtp client")
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			log.Printf("[Mailer] STARTTLS 失败，继续使用明文: %v", err)
		}
	}

	if m.User != "" {
		if err := client.Auth(smtp.PlainAuth("", m.User, m.Pass, m.Host)); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err := client.Mail(m.From); err != nil {
		return errors.Wrap(err, "smtp mail from")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp rcpt to")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data")
	}
	if _, err := w.Write([]byte(b.String())); err != nil {
		return errors.Wrap(err, "smtp write")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "smtp close data")
	}
	return client.Quit()
}
