package splits

import (
	"time"

	"organizer/internal/fees"
)

type ConfiguredSplitResponse struct {
	ID          uint        `json:"id"`
	PricingMode PricingMode `json:"pricingMode"`
	TotalCents  int64       `json:"totalCents"`
	ShareCents  *int64      `json:"shareCents"`
	DeadlineAt  *time.Time  `json:"deadlineAt"`
	Currency    string      `json:"currency"`
}

type ConfigureSplitResponse struct {
	Split ConfiguredSplitResponse `json:"split"`
}

type ParticipantResponse struct {
	ID               uint              `json:"id"`
	InviteID         *uint             `json:"inviteId"`
	UserID           *string           `json:"userId"`
	Name             *string           `json:"name"`
	Contact          *string           `json:"contact"`
	BaseShareCents   int64             `json:"baseShareCents"`
	ShareCents       int64             `json:"shareCents"`
	PlatformFeeCents int64             `json:"platformFeeCents"`
	Status           ParticipantStatus `json:"status"`
	PaymentIntentID  *string           `json:"paymentIntentId"`
	PaidAt           *time.Time        `json:"paidAt"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type SplitResponse struct {
	ID             uint                  `json:"id"`
	BookingID      uint                  `json:"bookingId"`
	PricingMode    PricingMode           `json:"pricingMode"`
	Status         Status                `json:"status"`
	Currency       string                `json:"currency"`
	TotalCents     int64                 `json:"totalCents"`
	ShareCents     *int64                `json:"shareCents"`
	DeadlineAt     *time.Time            `json:"deadlineAt"`
	CreatedAt      time.Time             `json:"createdAt"`
	PaidCents      int64                 `json:"paidCents"`
	BaseTotalCents int64                 `json:"baseTotalCents"`
	Participants   []ParticipantResponse `json:"participants"`
}

// GetSplitResponse carries a nil split when none has been configured.
type GetSplitResponse struct {
	Split *SplitResponse `json:"split"`
}

type CheckoutResponse struct {
	PurchaseID       string       `json:"purchaseId"`
	SplitID          uint         `json:"splitId"`
	ParticipantID    uint         `json:"participantId"`
	BaseShareCents   int64        `json:"baseShareCents"`
	AmountCents      int64        `json:"amountCents"`
	PlatformFeeCents int64        `json:"platformFeeCents"`
	FeeMode          fees.FeeMode `json:"feeMode"`
	Currency         string       `json:"currency"`
	PaymentMethod    string       `json:"paymentMethod"`
}

type PaymentConfirmationResponse struct {
	SplitID       uint   `json:"splitId"`
	ParticipantID uint   `json:"participantId"`
	SplitStatus   Status `json:"splitStatus"`
	Duplicate     bool   `json:"duplicate"`
}

func toConfigureSplitResponse(r *ConfigureResult) ConfigureSplitResponse {
	return ConfigureSplitResponse{Split: ConfiguredSplitResponse{
		ID:          r.ID,
		PricingMode: r.PricingMode,
		TotalCents:  r.TotalCents,
		ShareCents:  r.ShareCents,
		DeadlineAt:  r.DeadlineAt,
		Currency:    r.Currency,
	}}
}

func toGetSplitResponse(view *SplitView) GetSplitResponse {
	if view == nil || view.Split == nil {
		return GetSplitResponse{}
	}
	split := view.Split
	participants := make([]ParticipantResponse, len(split.Participants))
	for i, p := range split.Participants {
		participants[i] = ParticipantResponse{
			ID:               p.ID,
			InviteID:         p.InviteID,
			UserID:           p.UserID,
			Name:             p.Name,
			Contact:          p.Contact,
			BaseShareCents:   p.BaseShareCents,
			ShareCents:       p.ShareCents,
			PlatformFeeCents: p.PlatformFeeCents,
			Status:           p.Status,
			PaymentIntentID:  p.PaymentIntentID,
			PaidAt:           p.PaidAt,
			CreatedAt:        p.CreatedAt,
		}
	}
	return GetSplitResponse{Split: &SplitResponse{
		ID:             split.ID,
		BookingID:      split.BookingID,
		PricingMode:    split.PricingMode,
		Status:         split.Status,
		Currency:       split.Currency,
		TotalCents:     split.TotalCents,
		ShareCents:     split.ShareCents,
		DeadlineAt:     split.DeadlineAt,
		CreatedAt:      split.CreatedAt,
		PaidCents:      view.PaidCents,
		BaseTotalCents: view.BaseTotalCents,
		Participants:   participants,
	}}
}

func toCheckoutResponse(q *CheckoutQuote) CheckoutResponse {
	return CheckoutResponse{
		PurchaseID:       q.PurchaseID,
		SplitID:          q.SplitID,
		ParticipantID:    q.ParticipantID,
		BaseShareCents:   q.BaseShareCents,
		AmountCents:      q.AmountCents,
		PlatformFeeCents: q.PlatformFeeCents,
		FeeMode:          q.FeeMode,
		Currency:         q.Currency,
		PaymentMethod:    q.PaymentMethod,
	}
}
