package splits

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FlexInt accepts a JSON number or a numeric string and rounds it to the
// nearest integer. Anything else decodes as absent.
type FlexInt struct {
	Value int64
	Valid bool
}

// Largest magnitude FlexInt decodes; float64 holds every integer below it.
const maxFlexInt = 1 << 53

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Floor(v + 0.5)
	if v >= maxFlexInt || v <= -maxFlexInt {
		return nil
	}
	*f = FlexInt{Value: int64(v), Valid: true}
	return nil
}

func (f FlexInt) Int64Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (f FlexInt) IntPtr() *int {
	if !f.Valid {
		return nil
	}
	v := int(f.Value)
	return &v
}

type ParticipantRequest struct {
	InviteID        FlexInt `json:"inviteId"`
	UserID          *string `json:"userId"`
	Name            *string `json:"name"`
	Contact         *string `json:"contact"`
	ShareCents      FlexInt `json:"shareCents"`
	AmountCents     FlexInt `json:"amountCents"`
	SharePercentBps FlexInt `json:"sharePercentBps"`
	PercentBps      FlexInt `json:"percentBps"`
}

// ConfigureSplitRequest is the body of POST .../bookings/:id/split.
type ConfigureSplitRequest struct {
	PricingMode  string               `json:"pricingMode"`
	DynamicMode  string               `json:"dynamicMode"`
	Participants []ParticipantRequest `json:"participants"`
	DeadlineAt   *string              `json:"deadlineAt"`
}

func (p ParticipantRequest) toRaw() RawParticipant {
	raw := RawParticipant{
		UserID:  p.UserID,
		Name:    p.Name,
		Contact: p.Contact,
	}
	if p.InviteID.Valid && p.InviteID.Value > 0 {
		id := uint(p.InviteID.Value)
		raw.InviteID = &id
	}

	raw.ShareCents = p.ShareCents.Int64Ptr()
	if raw.ShareCents == nil {
		raw.ShareCents = p.AmountCents.Int64Ptr()
	}
	raw.SharePercentBps = p.SharePercentBps.IntPtr()
	if raw.SharePercentBps == nil {
		raw.SharePercentBps = p.PercentBps.IntPtr()
	}
	return raw
}

// ParsePricingMode defaults to FIXED for anything but DYNAMIC.
func ParsePricingMode(raw string) PricingMode {
	if PricingMode(strings.ToUpper(strings.TrimSpace(raw))) == PricingModeDynamic {
		return PricingModeDynamic
	}
	return PricingModeFixed
}

// ParseDynamicMode returns nil for empty or unknown values.
func ParseDynamicMode(raw string) *DynamicMode {
	mode := DynamicMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case DynamicModePercent, DynamicModeAmount:
		return &mode
	}
	return nil
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDeadline accepts RFC 3339 timestamps or plain dates (UTC). Unparseable
// input yields no deadline.
func ParseDeadline(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func (r *ConfigureSplitRequest) ToInput() ConfigureInput {
	participants := make([]RawParticipant, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = p.toRaw()
	}
	return ConfigureInput{
		PricingMode:  ParsePricingMode(r.PricingMode),
		DynamicMode:  ParseDynamicMode(r.DynamicMode),
		Participants: participants,
		DeadlineAt:   ParseDeadline(r.DeadlineAt),
	}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"omitempty,max=20"`
}

// PaymentConfirmationRequest is sent by the payment processor integration
// once a participant's intent succeeds.
type PaymentConfirmationRequest struct {
	PurchaseID      string     `json:"purchaseId" binding:"required,max=100"`
	PaymentIntentID string     `json:"paymentIntentId" binding:"required,max=255"`
	PaidAt          *time.Time `json:"paidAt"`
}
