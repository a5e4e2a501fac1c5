// Package notifications renders renewal reminders and delivers them over
// email and WhatsApp.
package notifications

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/models"

	"github.com/google/uuid"
)

// Message is a rendered reminder ready for a channel.
type Message struct {
	ReminderID uuid.UUID           `json:"reminder_id"`
	Type       models.ReminderType `json:"type"`
	To         string              `json:"to"`
	Name       string              `json:"name"`
	Subject    string              `json:"subject"`
	Body       string              `json:"body"`
}

// TemplateData is what reminder templates can reference.
type TemplateData struct {
	CustomerName  string
	ProductName   string
	Price         string
	BillingCycle  string
	EndDate       string
	DaysLeft      int
	CustomMessage string
}

const (
	DefaultSubjectTemplate = `Your {{.ProductName}} subscription renews on {{.EndDate}}`
	DefaultBodyTemplate    = `Hello {{.CustomerName}},

Your {{.ProductName}} subscription ({{.BillingCycle}}, {{.Price}}) ends on {{.EndDate}}{{if ge .DaysLeft 0}}, in {{.DaysLeft}} day(s){{end}}.
{{if .CustomMessage}}
{{.CustomMessage}}
{{end}}
Thank you for being a customer.`
)

// Renderer turns reminder details into messages.
type Renderer struct {
	subject *template.Template
	body    *template.Template
	now     func() time.Time
}

// NewRenderer parses the templates; empty strings select the defaults.
func NewRenderer(subjectTmpl, bodyTmpl string) (*Renderer, error) {
	if subjectTmpl == "" {
		subjectTmpl = DefaultSubjectTemplate
	}
	if bodyTmpl == "" {
		bodyTmpl = DefaultBodyTemplate
	}
	subject, err := template.New("subject").Option("missingkey=error").Parse(subjectTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	body, err := template.New("body").Option("missingkey=error").Parse(bodyTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return &Renderer{subject: subject, body: body, now: time.Now}, nil
}

// Render builds the message for one reminder. The recipient depends on the
// reminder type: the customer email, or the WhatsApp number with the phone as
// fallback.
func (r *Renderer) Render(d *models.ReminderDetail, customMessage string) (Message, error) {
	customer, product := d.Subscription.Customer, d.Subscription.Product
	data := TemplateData{
		CustomerName:  customer.Name,
		ProductName:   product.Name,
		Price:         product.Price.StringFixed(2),
		BillingCycle:  string(product.BillingCycle),
		EndDate:       d.Subscription.EndDate.Format("2006-01-02"),
		DaysLeft:      billing.DaysBetween(r.now(), d.Subscription.EndDate),
		CustomMessage: customMessage,
	}

	var subject, body bytes.Buffer
	if err := r.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := r.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render body: %w", err)
	}

	msg := Message{
		ReminderID: d.ID,
		Type:       d.Type,
		Name:       customer.Name,
		Subject:    subject.String(),
		Body:       body.String(),
	}
	switch d.Type {
	case models.ReminderTypeEmail:
		msg.To = customer.Email
	case models.ReminderTypeWhatsApp:
		msg.To = customer.WhatsAppNumber()
	}
	if msg.To == "" {
		return Message{}, fmt.Errorf("customer %s has no %s address", customer.ID, d.Type)
	}
	return msg, nil
}
