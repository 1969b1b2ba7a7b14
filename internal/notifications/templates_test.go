package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredEvent() *SplitEvent {
	deadline := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	event := NewSplitEvent(EventSplitConfigured, 3, 12, 1)
	event.Currency = "EUR"
	event.TotalCents = 10000
	event.DeadlineAt = &deadline
	event.Participants = []ParticipantRef{
		{ParticipantID: 1, Name: "Ana", Contact: "ana@example.com", ShareCents: 5280, Status: "PENDING"},
		{ParticipantID: 2, Name: "Rui", Contact: "+351912345678", ShareCents: 5280, Status: "PENDING"},
		{ParticipantID: 3, Contact: "Joana <joana@example.com>", ShareCents: 5280, Status: "PENDING"},
	}
	return event
}

func TestBuildEmailsSkipsNonEmailContacts(t *testing.T) {
	emails := BuildEmails(configuredEvent())

	require.Len(t, emails, 2)
	assert.Equal(t, "ana@example.com", emails[0].To)
	assert.Equal(t, "joana@example.com", emails[1].To)
	assert.Equal(t, "Your share for booking #12", emails[0].Subject)
	assert.Contains(t, emails[0].TextBody, "Hi Ana")
	assert.Contains(t, emails[0].TextBody, "52.80 EUR")
	assert.Contains(t, emails[0].TextBody, "2026-05-01 18:00 UTC")
	assert.Contains(t, emails[1].TextBody, "Hi,")
	assert.Contains(t, emails[0].HTMLBody, "<br>")
}

func TestBuildEmailsParticipantPaidOnlyTargetsPayer(t *testing.T) {
	event := configuredEvent()
	event.Type = EventSplitParticipantPaid
	event.Participants[2].Status = "PAID"

	emails := BuildEmails(event)

	require.Len(t, emails, 1)
	assert.Equal(t, "joana@example.com", emails[0].To)
	assert.Equal(t, "Payment received for booking #12", emails[0].Subject)
}

func TestBuildEmailsUnknownType(t *testing.T) {
	event := configuredEvent()
	event.Type = "split.unknown"

	assert.Empty(t, BuildEmails(event))
	assert.Nil(t, BuildEmails(nil))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "52.80 EUR", FormatCents(5280, "EUR"))
	assert.Equal(t, "0.05", FormatCents(5, ""))
	assert.Equal(t, "-1.50 EUR", FormatCents(-150, "EUR"))
}
