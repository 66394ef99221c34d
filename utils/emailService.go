package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"examly/config"
)

// SendEmail delivers an HTML mail through the configured SMTP relay.
// A missing sender configuration disables mail silently.
func SendEmail(to []string, subject string, htmlBody string) error {
	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password
	if from == "" || password == "" {
		return nil
	}

	smtpHost := config.AppConfig.SMTPHost
	smtpPort := config.AppConfig.SMTPPort

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Examly <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email: %v", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #5C88B5; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>EXAMLY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				This is an automated message from your exam platform.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendResultEmail notifies a student about a finalized attempt.
func SendResultEmail(email, name, examTitle string, numCorrect, numQuestions int, scorePercent float64) {
	if email == "" {
		return
	}
	subject := "Exam Result: " + examTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your attempt for <strong>%s</strong> has been graded.</p>
		<div class="info-box">
			<strong>Score:</strong> %d / %d (%.2f%%)
		</div>
		<p>You can review each question and its explanation on your result page.</p>
	`, name, examTitle, numCorrect, numQuestions, scorePercent)

	go SendEmail([]string{email}, subject, getEmailTemplate("Your Exam Result", body))
}
