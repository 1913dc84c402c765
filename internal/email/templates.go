package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type seminarConfirmationEmailData struct {
	baseEmailData
	AttendeeName    string
	SeminarTitle    string
	SeminarDate     string
	LocationType    string
	LocationDetails string
	HasQR           bool
}

type seminarReminderEmailData struct {
	baseEmailData
	AttendeeName    string
	SeminarTitle    string
	SeminarDate     string
	LocationType    string
	LocationDetails string
}

type appointmentConfirmationEmailData struct {
	baseEmailData
	Name      string
	StartTime string
}

type leadAlertEmailData struct {
	baseEmailData
	LeadName  string
	LeadEmail string
	LeadScore int
	Tier      string
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
