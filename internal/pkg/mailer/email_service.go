package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReviewRequested(toEmail, noteTitle, reviewId string) error
	SendReviewMerged(toEmail, noteTitle string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendReviewRequested(toEmail, noteTitle, reviewId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Review Requested: "+noteTitle)

	// Construct the clickable link pointing to the FRONTEND
	reviewLink := fmt.Sprintf("%s/reviews/%s", s.frontendURL, reviewId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>You have been asked to review a note</h2>
			<p>A change to <strong>%s</strong> is waiting for your review.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Review</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, noteTitle, reviewLink, reviewLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send review request to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Review request sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendReviewMerged(toEmail, noteTitle string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Merged: "+noteTitle)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your change was merged</h2>
			<p>The review for <strong>%s</strong> has been approved and merged into the knowledge base.</p>
		</div>
	`, noteTitle)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send merge notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Merge notice sent to %s\n", toEmail)
	return nil
}
