package splits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"organizer/internal/bookings"
	"organizer/internal/fees"
	"organizer/internal/notifications"
	"organizer/internal/organizations"
	"organizer/internal/shared/apperror"
	"organizer/pkg/logger"

	"github.com/google/uuid"
)

// SupportedCheckoutCurrency is the only currency participants can pay in.
const SupportedCheckoutCurrency = "EUR"

type Service interface {
	// GetSplit returns nil, nil when the booking has no split.
	GetSplit(ctx context.Context, organizationID, bookingID uint) (*SplitView, error)
	ConfigureSplit(ctx context.Context, in ConfigureInput) (*ConfigureResult, error)
	PrepareParticipantCheckout(ctx context.Context, in CheckoutInput) (*CheckoutQuote, error)
	RecordParticipantPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error)
	// ExpireOverdueSplits expires up to batchSize OPEN splits whose deadline
	// has passed and returns how many changed.
	ExpireOverdueSplits(ctx context.Context, batchSize int) (int64, error)
}

// OrganizationLookup resolves the organization that owns a booking.
type OrganizationLookup interface {
	GetOrganization(ctx context.Context, orgID uint) (*organizations.Organization, error)
}

type SplitView struct {
	Split          *BookingSplit
	PaidCents      int64
	BaseTotalCents int64
}

type ConfigureInput struct {
	OrganizationID uint
	// Organization is optional; it is looked up when nil.
	Organization *organizations.Organization
	BookingID    uint
	UserID       *uuid.UUID
	PricingMode  PricingMode
	DynamicMode  *DynamicMode
	Participants []RawParticipant
	DeadlineAt   *time.Time
}

type ConfigureResult struct {
	ID          uint
	PricingMode PricingMode
	TotalCents  int64
	ShareCents  *int64
	DeadlineAt  *time.Time
	Currency    string
}

type CheckoutInput struct {
	Token         string
	PaymentMethod string
}

type CheckoutQuote struct {
	PurchaseID       string
	SplitID          uint
	ParticipantID    uint
	BaseShareCents   int64
	AmountCents      int64
	PlatformFeeCents int64
	FeeMode          fees.FeeMode
	Currency         string
	PaymentMethod    string
}

type PaymentInput struct {
	PurchaseID      string
	PaymentIntentID string
	PaidAt          *time.Time
}

type PaymentResult struct {
	SplitID       uint
	ParticipantID uint
	SplitStatus   Status
	// Duplicate is set when the same payment intent was already recorded.
	Duplicate bool
}

type service struct {
	repo            Repository
	bookings        bookings.Repository
	orgs            OrganizationLookup
	fees            fees.SettingsProvider
	publisher       notifications.Publisher
	log             *logger.Logger
	defaultCurrency string
	now             func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithDefaultCurrency(currency string) Option {
	return func(s *service) {
		if currency != "" {
			s.defaultCurrency = strings.ToUpper(currency)
		}
	}
}

func NewService(
	repo Repository,
	bookingRepo bookings.Repository,
	orgs OrganizationLookup,
	feeSettings fees.SettingsProvider,
	publisher notifications.Publisher,
	log *logger.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:            repo,
		bookings:        bookingRepo,
		orgs:            orgs,
		fees:            feeSettings,
		publisher:       publisher,
		log:             log,
		defaultCurrency: SupportedCheckoutCurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetSplit(ctx context.Context, organizationID, bookingID uint) (*SplitView, error) {
	booking, err := s.bookings.FindByIDInOrganization(ctx, bookingID, organizationID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking not found")
	}

	split, err := s.repo.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if split == nil {
		return nil, nil
	}

	return &SplitView{
		Split:          split,
		PaidCents:      split.PaidCents(),
		BaseTotalCents: booking.Price,
	}, nil
}

func (s *service) ConfigureSplit(ctx context.Context, in ConfigureInput) (*ConfigureResult, error) {
	booking, err := s.bookings.FindByIDInOrganization(ctx, in.BookingID, in.OrganizationID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking not found")
	}

	state := bookings.State(booking, s.now())
	if state.IsInactive() {
		return nil, apperror.Conflict(apperror.CodeBookingInactive, "Booking is no longer active")
	}
	if booking.Price <= 0 {
		return nil, apperror.Conflict(apperror.CodeInvalidPrice, "Booking has no valid price")
	}

	inviteIDs, err := collectInviteIDs(in.Participants)
	if err != nil {
		return nil, err
	}

	normalized, err := NormalizeParticipants(NormalizeInput{
		TotalBaseCents: booking.Price,
		PricingMode:    in.PricingMode,
		DynamicMode:    in.DynamicMode,
		Participants:   in.Participants,
	})
	if err != nil {
		return nil, err
	}

	invites, err := s.bookings.FindInvitesByIDs(ctx, booking.ID, inviteIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(invites) != len(inviteIDs) {
		return nil, apperror.Unprocessable(apperror.CodeInviteInvalid, "One or more invites do not belong to this booking")
	}
	invitesByID := make(map[uint]bookings.BookingInvite, len(invites))
	for _, invite := range invites {
		invitesByID[invite.ID] = invite
	}

	opts, err := s.pricingOptions(ctx, in.Organization, booking.OrganizationID)
	if err != nil {
		return nil, err
	}

	participants := make([]BookingSplitParticipant, 0, len(normalized))
	var totalCents int64
	for _, p := range normalized {
		quote := QuoteShare(p.BaseShareCents, opts, false)
		participant := BookingSplitParticipant{
			InviteID:         p.InviteID,
			UserID:           p.UserID,
			Name:             p.Name,
			Contact:          p.Contact,
			BaseShareCents:   quote.BaseShareCents,
			ShareCents:       quote.ShareCents,
			PlatformFeeCents: quote.PlatformFeeCents,
			Status:           ParticipantStatusPending,
		}
		if p.InviteID != nil {
			invite := invitesByID[*p.InviteID]
			if participant.Name == nil {
				participant.Name = invite.TargetName
			}
			if participant.Contact == nil {
				participant.Contact = invite.TargetContact
			}
		}
		totalCents += participant.ShareCents
		participants = append(participants, participant)
	}

	var shareCents *int64
	if in.PricingMode == PricingModeFixed {
		first := participants[0].ShareCents
		shareCents = &first
	}

	currency := strings.ToUpper(strings.TrimSpace(booking.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	var saved *BookingSplit
	err = s.repo.Transaction(ctx, func(tx TxRepository) error {
		split, err := tx.LockByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if split != nil && split.IsLocked() {
			return apperror.Conflict(apperror.CodeSplitLocked, "Split can no longer be changed because a participant has already paid")
		}
		if split == nil {
			split = &BookingSplit{
				BookingID:      booking.ID,
				OrganizationID: booking.OrganizationID,
			}
		}
		split.PricingMode = in.PricingMode
		split.Status = StatusOpen
		split.Currency = currency
		split.TotalCents = totalCents
		split.ShareCents = shareCents
		if in.DeadlineAt != nil {
			split.DeadlineAt = in.DeadlineAt
		}
		if in.UserID != nil {
			split.CreatedByUserID = in.UserID
		}

		if err := tx.SaveSplit(ctx, split); err != nil {
			return err
		}
		if err := tx.ReplaceParticipants(ctx, split.ID, participants); err != nil {
			return err
		}
		if in.DeadlineAt != nil && state.IsPending() {
			if err := tx.Bookings().EnsurePendingExpiry(ctx, booking.ID, *in.DeadlineAt); err != nil {
				return err
			}
		}

		split.Participants = participants
		saved = split
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	userID := ""
	if in.UserID != nil {
		userID = in.UserID.String()
	}
	s.log.LogSplitConfigured(ctx, saved.ID, booking.ID, userID, len(participants), saved.TotalCents)
	s.publish(ctx, s.splitEvent(notifications.EventSplitConfigured, saved, saved.Participants))

	return &ConfigureResult{
		ID:          saved.ID,
		PricingMode: saved.PricingMode,
		TotalCents:  saved.TotalCents,
		ShareCents:  saved.ShareCents,
		DeadlineAt:  saved.DeadlineAt,
		Currency:    saved.Currency,
	}, nil
}

// txError keeps coded errors raised inside a transaction and wraps the rest.
func txError(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}

func collectInviteIDs(participants []RawParticipant) ([]uint, error) {
	seen := make(map[uint]struct{}, len(participants))
	var ids []uint
	for _, p := range participants {
		if p.InviteID == nil {
			continue
		}
		if _, dup := seen[*p.InviteID]; dup {
			return nil, apperror.Unprocessable(apperror.CodeInviteDuplicate, "An invite can only appear once in a split")
		}
		seen[*p.InviteID] = struct{}{}
		ids = append(ids, *p.InviteID)
	}
	return ids, nil
}

func (s *service) pricingOptions(ctx context.Context, org *organizations.Organization, organizationID uint) (fees.PricingOptions, error) {
	if org == nil {
		var err error
		org, err = s.orgs.GetOrganization(ctx, organizationID)
		if err != nil {
			return fees.PricingOptions{}, err
		}
	}
	platform, err := s.fees.PlatformFees(ctx)
	if err != nil {
		return fees.PricingOptions{}, apperror.Internal(err)
	}
	return pricingOptions(org, platform), nil
}

func (s *service) PrepareParticipantCheckout(ctx context.Context, in CheckoutInput) (*CheckoutQuote, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, apperror.NotFound("Invite not found")
	}
	paymentMethod := "mbway"
	if strings.EqualFold(strings.TrimSpace(in.PaymentMethod), "card") {
		paymentMethod = "card"
	}

	invite, err := s.bookings.FindInviteByToken(ctx, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if invite == nil {
		return nil, apperror.NotFound("Invite not found")
	}
	booking, err := s.bookings.FindByID(ctx, invite.BookingID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Invite not found")
	}

	now := s.now()
	if bookings.State(booking, now).IsInactive() {
		return nil, apperror.Conflict(apperror.CodeBookingInactive, "Booking is no longer active")
	}

	split, err := s.repo.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	participant, err := checkoutParticipant(split, invite.ID, now)
	if err != nil {
		return nil, err
	}
	if booking.Price <= 0 {
		return nil, apperror.Conflict(apperror.CodeInvalidPrice, "Booking has no valid price")
	}

	currency := strings.ToUpper(strings.TrimSpace(booking.Currency))
	if currency == "" {
		currency = strings.ToUpper(split.Currency)
	}
	if currency == "" {
		currency = s.defaultCurrency
	}
	if currency != SupportedCheckoutCurrency {
		return nil, apperror.New(apperror.CodeCurrencyNotSupported, http.StatusBadRequest, "Currency not supported")
	}

	opts, err := s.pricingOptions(ctx, nil, booking.OrganizationID)
	if err != nil {
		return nil, err
	}
	baseShare := participant.BaseShareCents
	if baseShare < 0 {
		baseShare = 0
	}
	quote := QuoteShare(baseShare, opts, paymentMethod == "card")

	err = s.repo.Transaction(ctx, func(tx TxRepository) error {
		locked, err := tx.LockByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if _, err := checkoutParticipant(locked, invite.ID, now); err != nil {
			return err
		}
		if err := tx.UpdateParticipantQuote(ctx, participant.ID, quote.ShareCents, quote.PlatformFeeCents); err != nil {
			return err
		}
		if invite.Status != bookings.InviteStatusAccepted {
			return tx.Bookings().MarkInviteAccepted(ctx, invite.ID)
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	return &CheckoutQuote{
		PurchaseID:       PurchaseID(booking.ID, participant.ID),
		SplitID:          split.ID,
		ParticipantID:    participant.ID,
		BaseShareCents:   quote.BaseShareCents,
		AmountCents:      quote.ShareCents,
		PlatformFeeCents: quote.PlatformFeeCents,
		FeeMode:          quote.FeeMode,
		Currency:         currency,
		PaymentMethod:    paymentMethod,
	}, nil
}

// checkoutParticipant applies the split-level checkout guards and returns the
// participant linked to inviteID.
func checkoutParticipant(split *BookingSplit, inviteID uint, now time.Time) (*BookingSplitParticipant, error) {
	if split == nil || split.Status != StatusOpen {
		return nil, apperror.Conflict(apperror.CodeSplitInactive, "Split payment is not available")
	}
	if split.DeadlineAt != nil && split.DeadlineAt.Before(now) {
		return nil, apperror.Conflict(apperror.CodeSplitExpired, "The payment deadline has passed")
	}
	participant := split.ParticipantByInvite(inviteID)
	if participant == nil {
		return nil, apperror.Conflict(apperror.CodeParticipantMissing, "Participant not found")
	}
	if participant.Status == ParticipantStatusPaid {
		return nil, apperror.Conflict(apperror.CodeAlreadyPaid, "Payment already completed")
	}
	if participant.Status != ParticipantStatusPending {
		return nil, apperror.Conflict(apperror.CodeParticipantInactive, "Participant is no longer active")
	}
	return participant, nil
}

// PurchaseID identifies one participant's payment towards a booking.
func PurchaseID(bookingID, participantID uint) string {
	return fmt.Sprintf("booking_%d_split_%d", bookingID, participantID)
}

// ParsePurchaseID is the inverse of PurchaseID.
func ParsePurchaseID(purchaseID string) (bookingID, participantID uint, ok bool) {
	if _, err := fmt.Sscanf(purchaseID, "booking_%d_split_%d", &bookingID, &participantID); err != nil {
		return 0, 0, false
	}
	if bookingID == 0 || participantID == 0 || PurchaseID(bookingID, participantID) != purchaseID {
		return 0, 0, false
	}
	return bookingID, participantID, true
}

func (s *service) RecordParticipantPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	bookingID, participantID, ok := ParsePurchaseID(strings.TrimSpace(in.PurchaseID))
	if !ok {
		return nil, apperror.BadRequest("Invalid purchase id")
	}
	intent := strings.TrimSpace(in.PaymentIntentID)
	if intent == "" {
		return nil, apperror.BadRequest("Payment intent id is required")
	}
	paidAt := s.now().UTC()
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}

	var (
		result    PaymentResult
		split     *BookingSplit
		completed bool
	)
	err := s.repo.Transaction(ctx, func(tx TxRepository) error {
		var err error
		split, err = tx.LockByBookingID(ctx, bookingID)
		if err != nil {
			return err
		}
		if split == nil {
			return apperror.NotFound("Split not found")
		}

		var participant *BookingSplitParticipant
		for i := range split.Participants {
			if split.Participants[i].ID == participantID {
				participant = &split.Participants[i]
				break
			}
		}
		if participant == nil {
			return apperror.Conflict(apperror.CodeParticipantMissing, "Participant not found")
		}

		result = PaymentResult{SplitID: split.ID, ParticipantID: participant.ID, SplitStatus: split.Status}

		if participant.Status == ParticipantStatusPaid {
			if participant.PaymentIntentID != nil && *participant.PaymentIntentID == intent {
				result.Duplicate = true
				return nil
			}
			return apperror.Conflict(apperror.CodeAlreadyPaid, "Participant has already paid")
		}
		if participant.Status != ParticipantStatusPending {
			return apperror.Conflict(apperror.CodeParticipantInactive, "Participant is no longer active")
		}

		if err := tx.MarkParticipantPaid(ctx, participant.ID, intent, paidAt); err != nil {
			return err
		}
		participant.Status = ParticipantStatusPaid
		participant.PaymentIntentID = &intent
		participant.PaidAt = &paidAt

		unpaid, err := tx.CountUnpaid(ctx, split.ID)
		if err != nil {
			return err
		}
		if unpaid == 0 && (split.Status == StatusOpen || split.Status == StatusExpired) {
			if err := tx.UpdateSplitStatus(ctx, split.ID, StatusCompleted); err != nil {
				return err
			}
			split.Status = StatusCompleted
			completed = true
		}
		result.SplitStatus = split.Status
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	if result.Duplicate {
		return &result, nil
	}

	s.log.LogParticipantPaid(ctx, split.ID, participantID, intent)
	for _, p := range split.Participants {
		if p.ID == participantID {
			s.publish(ctx, s.splitEvent(notifications.EventSplitParticipantPaid, split, []BookingSplitParticipant{p}))
		}
	}
	if completed {
		s.publish(ctx, s.splitEvent(notifications.EventSplitCompleted, split, split.Participants))
	}
	return &result, nil
}

func (s *service) ExpireOverdueSplits(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	overdue, err := s.repo.ListOverdue(ctx, s.now(), batchSize)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(overdue))
	for i, split := range overdue {
		ids[i] = split.ID
	}
	expired, err := s.repo.MarkExpired(ctx, ids)
	if err != nil {
		return 0, err
	}

	for i := range overdue {
		overdue[i].Status = StatusExpired
		s.publish(ctx, s.splitEvent(notifications.EventSplitExpired, &overdue[i], overdue[i].Participants))
	}
	return expired, nil
}

func (s *service) splitEvent(eventType notifications.EventType, split *BookingSplit, participants []BookingSplitParticipant) *notifications.SplitEvent {
	event := notifications.NewSplitEvent(eventType, split.ID, split.BookingID, split.OrganizationID)
	event.Currency = split.Currency
	event.TotalCents = split.TotalCents
	event.DeadlineAt = split.DeadlineAt
	for _, p := range participants {
		ref := notifications.ParticipantRef{
			ParticipantID: p.ID,
			ShareCents:    p.ShareCents,
			Status:        string(p.Status),
		}
		if p.Name != nil {
			ref.Name = *p.Name
		}
		if p.Contact != nil {
			ref.Contact = *p.Contact
		}
		event.Participants = append(event.Participants, ref)
	}
	return event
}

// publish never fails the caller; the write has already committed.
func (s *service) publish(ctx context.Context, event *notifications.SplitEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("Failed to publish split event",
			slog.String("type", string(event.Type)),
			slog.Uint64("split_id", uint64(event.SplitID)),
			slog.String("error", err.Error()),
		)
	}
}
