package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const displayTimeFormat = "Monday, January 2, 2006 at 3:04 PM MST"

// SMTPSender implements the Sender interface over a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Compile-time check that SMTPSender implements Sender.
var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendSeminarConfirmation delivers the registration confirmation, with
// the check-in QR code attached when available.
func (s *SMTPSender) SendSeminarConfirmation(ctx context.Context, toEmail string, data SeminarConfirmation) error {
	content, err := renderEmailTemplate("seminar_confirmation.html", seminarConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Seminar registration confirmed",
			Heading: "You're registered!",
		},
		AttendeeName:    data.AttendeeName,
		SeminarTitle:    data.SeminarTitle,
		SeminarDate:     data.SeminarDate.Format(displayTimeFormat),
		LocationType:    data.LocationType,
		LocationDetails: data.LocationDetails,
		HasQR:           len(data.CheckInQR) > 0,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf(subjectSeminarConfirmationFmt, data.SeminarTitle)
	if len(data.CheckInQR) > 0 {
		return s.send(ctx, toEmail, subject, content, Attachment{
			FileName: "check-in.png",
			Content:  data.CheckInQR,
		})
	}
	return s.send(ctx, toEmail, subject, content)
}

// SendSeminarReminder delivers the day-before seminar reminder.
func (s *SMTPSender) SendSeminarReminder(ctx context.Context, toEmail string, data SeminarReminder) error {
	content, err := renderEmailTemplate("seminar_reminder.html", seminarReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Seminar reminder",
			Heading: "See you tomorrow!",
		},
		AttendeeName:    data.AttendeeName,
		SeminarTitle:    data.SeminarTitle,
		SeminarDate:     data.SeminarDate.Format(displayTimeFormat),
		LocationType:    data.LocationType,
		LocationDetails: data.LocationDetails,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectSeminarReminderFmt, data.SeminarTitle), content)
}

// SendAppointmentConfirmation delivers the booking confirmation.
func (s *SMTPSender) SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentConfirmation) error {
	content, err := renderEmailTemplate("appointment_confirmation.html", appointmentConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Consultation confirmed",
			Heading:  "Your consultation is confirmed",
			CTALabel: "Manage booking",
			CTAURL:   data.BookingURL,
		},
		Name:      data.Name,
		StartTime: data.StartTime.Format(displayTimeFormat),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentConfirmation, content)
}

// SendLeadAlert delivers the internal new-lead notification.
func (s *SMTPSender) SendLeadAlert(ctx context.Context, toEmail string, data LeadAlert) error {
	content, err := renderEmailTemplate("lead_alert.html", leadAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "New qualified lead",
			Heading: "New qualified lead",
		},
		LeadName:  data.LeadName,
		LeadEmail: data.LeadEmail,
		LeadScore: data.LeadScore,
		Tier:      data.Tier,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadAlertFmt, data.LeadName, data.LeadScore), content)
}
