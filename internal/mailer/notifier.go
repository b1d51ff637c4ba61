package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"strings"
	"time"

	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"lines": func(s string) template.HTML {
		parts := strings.Split(s, "\n")
		for i, p := range parts {
			parts[i] = template.HTMLEscapeString(p)
		}
		return template.HTML(strings.Join(parts, "<br>"))
	},
}).ParseFS(templateFS, "templates/*.html"))

// ServiceNamer resolves a service type to its display name.
type ServiceNamer interface {
	Name(st model.ServiceType) string
}

type Addresses struct {
	From    string
	Admin   string
	Contact string
}

// Notifier turns booking and contact events into email.
type Notifier struct {
	sender Sender
	addr   Addresses
	names  ServiceNamer
	org    string
}

func NewNotifier(s Sender, addr Addresses, names ServiceNamer, org string) *Notifier {
	if addr.Admin == "" {
		addr.Admin = addr.From
	}
	if addr.Contact == "" {
		addr.Contact = addr.Admin
	}
	return &Notifier{sender: s, addr: addr, names: names, org: org}
}

type bookingData struct {
	Org         string
	Appointment *model.Appointment
	Client      *model.User
	Counselor   *model.User
	ServiceName string
	SessionType string
	Date        string
}

// AppointmentBooked mails the client a receipt and the admin a notice. Both
// are attempted even if the first fails.
func (n *Notifier) AppointmentBooked(ctx context.Context, a *model.Appointment, client, counselor *model.User) error {
	data := bookingData{
		Org:         n.org,
		Appointment: a,
		Client:      client,
		Counselor:   counselor,
		ServiceName: string(a.ServiceType),
		SessionType: strings.ReplaceAll(string(a.SessionType), "-", " "),
		Date:        a.Date.Format("Monday, January 2, 2006"),
	}
	if n.names != nil {
		data.ServiceName = n.names.Name(a.ServiceType)
	}

	var errs []error
	if err := n.send(ctx, client.Email, n.org+" - Appointment Request Received", "booking_client.html", data); err != nil {
		errs = append(errs, err)
	}
	if err := n.send(ctx, n.addr.Admin, n.org+" - New Appointment Request", "booking_admin.html", data); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ContactReceived forwards a submission to the contact inbox and sends the
// sender an auto-reply.
func (n *Notifier) ContactReceived(ctx context.Context, s contact.Submission) error {
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = time.Now().UTC()
	}
	var errs []error
	if err := n.send(ctx, n.addr.Contact, n.org+" Contact Form: "+s.Subject.Label(), "contact_notice.html", s); err != nil {
		errs = append(errs, err)
	}
	if err := n.send(ctx, s.Email, "Thank you for contacting "+n.org+" - We'll be in touch soon", "contact_reply.html", s); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, to, subject, tmpl string, data any) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{From: n.addr.From, To: to, Subject: subject, HTML: body})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
