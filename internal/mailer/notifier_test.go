package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counseling-booking-api/internal/catalog"
	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/model"
)

type captureSender struct {
	sent   []Message
	failTo string
}

func (c *captureSender) Send(_ context.Context, m Message) error {
	if m.To == c.failTo {
		return errors.New("rejected")
	}
	c.sent = append(c.sent, m)
	return nil
}

func newNotifier(s Sender) *Notifier {
	return NewNotifier(s, Addresses{From: "noreply@shrm.org", Admin: "admin@shrm.org", Contact: "info@shrm.org"},
		catalog.Default(), "SHRM")
}

func booked() (*model.Appointment, *model.User, *model.User) {
	a := &model.Appointment{
		ID:          "appt-1",
		ServiceType: model.ServiceCouples,
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:00",
		SessionType: model.SessionVideo,
		Notes:       model.Notes{Client: "<b>please</b> call first"},
	}
	client := &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	counselor := &model.User{FirstName: "Grace", LastName: "Hopper"}
	return a, client, counselor
}

func TestAppointmentBooked(t *testing.T) {
	s := &captureSender{}
	a, client, counselor := booked()

	require.NoError(t, newNotifier(s).AppointmentBooked(context.Background(), a, client, counselor))
	require.Len(t, s.sent, 2)

	toClient, toAdmin := s.sent[0], s.sent[1]
	assert.Equal(t, "ada@example.com", toClient.To)
	assert.Equal(t, "noreply@shrm.org", toClient.From)
	assert.Contains(t, toClient.HTML, "Dear Ada Lovelace")
	assert.Contains(t, toClient.HTML, "Couples Counseling")
	assert.Contains(t, toClient.HTML, "video call")
	assert.Contains(t, toClient.HTML, "Grace Hopper")

	assert.Equal(t, "admin@shrm.org", toAdmin.To)
	assert.Contains(t, toAdmin.HTML, "appt-1")
	assert.Contains(t, toAdmin.HTML, "Not provided")
	assert.Contains(t, toAdmin.HTML, "&lt;b&gt;please&lt;/b&gt;", "notes are escaped")
}

func TestAppointmentBookedPartialFailure(t *testing.T) {
	s := &captureSender{failTo: "ada@example.com"}
	a, client, counselor := booked()

	err := newNotifier(s).AppointmentBooked(context.Background(), a, client, counselor)
	assert.Error(t, err)
	require.Len(t, s.sent, 1, "admin notice still goes out")
	assert.Equal(t, "admin@shrm.org", s.sent[0].To)
}

func TestContactReceived(t *testing.T) {
	s := &captureSender{}
	sub := contact.Submission{
		Name:    "Jane",
		Email:   "jane@example.com",
		Subject: contact.SubjectCrisis,
		Message: "line one\n<script>x</script>",
	}
	require.NoError(t, newNotifier(s).ContactReceived(context.Background(), sub))
	require.Len(t, s.sent, 2)

	notice, reply := s.sent[0], s.sent[1]
	assert.Equal(t, "info@shrm.org", notice.To)
	assert.Equal(t, "SHRM Contact Form: Crisis Support", notice.Subject)
	assert.Contains(t, notice.HTML, "line one<br>&lt;script&gt;")

	assert.Equal(t, "jane@example.com", reply.To)
	assert.Contains(t, reply.HTML, `id="crisis"`)
}

func TestContactReplyWithoutCrisisBlock(t *testing.T) {
	s := &captureSender{}
	sub := contact.Submission{Name: "Jane", Email: "jane@example.com", Subject: contact.SubjectFeedback,
		Message: "great service overall"}
	require.NoError(t, newNotifier(s).ContactReceived(context.Background(), sub))
	require.Len(t, s.sent, 2)
	assert.NotContains(t, s.sent[1].HTML, `id="crisis"`)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, LogSender{}, NewSender(SMTPConfig{}, zerolog.Nop()))
	assert.IsType(t, &SMTP{}, NewSender(SMTPConfig{Host: "smtp.example.com", Port: 587}, zerolog.Nop()))
	assert.NoError(t, LogSender{Log: zerolog.Nop()}.Send(context.Background(), Message{To: "x@y.z"}))
}
