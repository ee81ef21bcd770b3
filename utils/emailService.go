package utils

import (
	"fmt"
	"lms/config"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends one HTML email through SendGrid
func SendEmail(toName, toEmail, subject, htmlBody string) error {
	if config.AppConfig.SendgridApiKey == "" {
		log.Printf("[EMAIL] SendGrid not configured, skipping email to %s", toEmail)
		return nil
	}

	from := mail.NewEmail("Course Platform", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Error sending email to %s: %v", toEmail, err)
		return err
	}
	if response.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid rejected email to %s: %d %s", toEmail, response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	return nil
}

// SendCertificateEmail notifies a learner that their certificate is ready
func SendCertificateEmail(toName, toEmail, courseTitle, certificateURL string) error {
	body := fmt.Sprintf(`
	<h2>Congratulations, %s!</h2>
	<p>You have completed the course <strong>%s</strong> and earned your certificate.</p>`, toName, courseTitle)
	if certificateURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">Download your certificate</a></p>`, certificateURL)
	}

	return SendEmail(toName, toEmail, "Your course certificate is ready!", body)
}
