package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSplitConfigured      EventType = "split.configured"
	EventSplitParticipantPaid EventType = "split.participant_paid"
	EventSplitCompleted       EventType = "split.completed"
	EventSplitExpired         EventType = "split.expired"
)

// ParticipantRef is the slice of participant data recipients need.
type ParticipantRef struct {
	ParticipantID uint   `json:"participantId"`
	Name          string `json:"name,omitempty"`
	Contact       string `json:"contact,omitempty"`
	ShareCents    int64  `json:"shareCents"`
	Status        string `json:"status"`
}

// SplitEvent is the message published on the split topic.
type SplitEvent struct {
	ID             uuid.UUID        `json:"id"`
	Type           EventType        `json:"type"`
	SplitID        uint             `json:"splitId"`
	BookingID      uint             `json:"bookingId"`
	OrganizationID uint             `json:"organizationId"`
	Currency       string           `json:"currency"`
	TotalCents     int64            `json:"totalCents"`
	DeadlineAt     *time.Time       `json:"deadlineAt,omitempty"`
	Participants   []ParticipantRef `json:"participants,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

func NewSplitEvent(eventType EventType, splitID, bookingID, organizationID uint) *SplitEvent {
	return &SplitEvent{
		ID:             uuid.New(),
		Type:           eventType,
		SplitID:        splitID,
		BookingID:      bookingID,
		OrganizationID: organizationID,
		OccurredAt:     time.Now().UTC(),
	}
}

func (e *SplitEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps all events of one booking on the same partition.
func (e *SplitEvent) PartitionKey() string {
	return fmt.Sprintf("booking_%d", e.BookingID)
}

func ParseSplitEvent(data []byte) (*SplitEvent, error) {
	var event SplitEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Email is a rendered message ready for delivery.
type Email struct {
	To       string
	Name     string
	Subject  string
	HTMLBody string
	TextBody string
}
