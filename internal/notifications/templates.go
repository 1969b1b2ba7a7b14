package notifications

import (
	"fmt"
	"html"
	"net/mail"
	"strings"
)

// BuildEmails renders the messages for one split event. Participants without
// a valid email contact are skipped.
func BuildEmails(event *SplitEvent) []Email {
	if event == nil {
		return nil
	}

	var emails []Email
	for _, p := range event.Participants {
		address, ok := emailAddress(p.Contact)
		if !ok {
			continue
		}
		subject, text, ok := renderSplitMessage(event, p)
		if !ok {
			continue
		}
		emails = append(emails, Email{
			To:       address,
			Name:     p.Name,
			Subject:  subject,
			TextBody: text,
			HTMLBody: "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
		})
	}
	return emails
}

func renderSplitMessage(event *SplitEvent, p ParticipantRef) (subject, text string, ok bool) {
	greeting := "Hi"
	if p.Name != "" {
		greeting = "Hi " + p.Name
	}
	share := FormatCents(p.ShareCents, event.Currency)

	switch event.Type {
	case EventSplitConfigured:
		if p.Status != "PENDING" {
			return "", "", false
		}
		subject = fmt.Sprintf("Your share for booking #%d", event.BookingID)
		text = fmt.Sprintf("%s,\nyour share of booking #%d is %s.", greeting, event.BookingID, share)
		if event.DeadlineAt != nil {
			text += fmt.Sprintf("\nPlease pay before %s.", event.DeadlineAt.UTC().Format("2006-01-02 15:04 MST"))
		}
	case EventSplitParticipantPaid:
		if p.Status != "PAID" {
			return "", "", false
		}
		subject = fmt.Sprintf("Payment received for booking #%d", event.BookingID)
		text = fmt.Sprintf("%s,\nwe received your payment of %s.", greeting, share)
	case EventSplitCompleted:
		subject = fmt.Sprintf("Booking #%d is fully paid", event.BookingID)
		text = fmt.Sprintf("%s,\nall shares of booking #%d have been paid.", greeting, event.BookingID)
	case EventSplitExpired:
		if p.Status != "PENDING" {
			return "", "", false
		}
		subject = fmt.Sprintf("Payment window closed for booking #%d", event.BookingID)
		text = fmt.Sprintf("%s,\nthe payment window for your share of booking #%d has closed.", greeting, event.BookingID)
	default:
		return "", "", false
	}
	return subject, text, true
}

func emailAddress(contact string) (string, bool) {
	contact = strings.TrimSpace(contact)
	if contact == "" || !strings.Contains(contact, "@") {
		return "", false
	}
	addr, err := mail.ParseAddress(contact)
	if err != nil {
		return "", false
	}
	return addr.Address, true
}

// FormatCents renders an amount as "52.80 EUR".
func FormatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	out := fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	if currency != "" {
		out += " " + currency
	}
	return out
}
