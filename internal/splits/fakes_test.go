package splits

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"organizer/internal/bookings"
	"organizer/internal/fees"
	"organizer/internal/notifications"
	"organizer/internal/organizations"
	"organizer/pkg/logger"

	"gorm.io/gorm"
)

// fakeStore is an in-memory Repository. Transactions snapshot the state and
// restore it when fn fails.
type fakeStore struct {
	mu                sync.Mutex
	splits            map[uint]*BookingSplit // keyed by booking id
	nextSplitID       uint
	nextParticipantID uint
	clock             time.Time
	bookings          *fakeBookings
	saveErr           error
	transactions      int
}

func newFakeStore(b *fakeBookings) *fakeStore {
	return &fakeStore{
		splits:   map[uint]*BookingSplit{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		bookings: b,
	}
}

func cloneSplit(s *BookingSplit) *BookingSplit {
	if s == nil {
		return nil
	}
	out := *s
	out.Participants = append([]BookingSplitParticipant(nil), s.Participants...)
	return &out
}

func (f *fakeStore) FindByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error) {
	return cloneSplit(f.splits[bookingID]), nil
}

func (f *fakeStore) ListOverdue(ctx context.Context, now time.Time, limit int) ([]BookingSplit, error) {
	var out []BookingSplit
	for _, s := range f.splits {
		if s.Status == StatusOpen && s.DeadlineAt != nil && !s.DeadlineAt.After(now) {
			out = append(out, *cloneSplit(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkExpired(ctx context.Context, splitIDs []uint) (int64, error) {
	var n int64
	for _, id := range splitIDs {
		for _, s := range f.splits {
			if s.ID == id && s.Status == StatusOpen {
				s.Status = StatusExpired
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx TxRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions++

	snapshot := make(map[uint]*BookingSplit, len(f.splits))
	for k, v := range f.splits {
		snapshot[k] = cloneSplit(v)
	}
	bookingSnapshot := f.bookings.snapshot()

	if err := fn(f); err != nil {
		f.splits = snapshot
		f.bookings.restore(bookingSnapshot)
		return err
	}
	return nil
}

func (f *fakeStore) Bookings() bookings.Repository {
	return f.bookings
}

func (f *fakeStore) LockByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error) {
	return cloneSplit(f.splits[bookingID]), nil
}

func (f *fakeStore) SaveSplit(ctx context.Context, split *BookingSplit) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if split.ID == 0 {
		f.nextSplitID++
		split.ID = f.nextSplitID
		split.CreatedAt = f.clock
	}
	stored := cloneSplit(split)
	if existing := f.splits[split.BookingID]; existing != nil {
		stored.Participants = existing.Participants
	} else {
		stored.Participants = nil
	}
	f.splits[split.BookingID] = stored
	return nil
}

func (f *fakeStore) splitByID(splitID uint) *BookingSplit {
	for _, s := range f.splits {
		if s.ID == splitID {
			return s
		}
	}
	return nil
}

func (f *fakeStore) participantByID(participantID uint) *BookingSplitParticipant {
	for _, s := range f.splits {
		for i := range s.Participants {
			if s.Participants[i].ID == participantID {
				return &s.Participants[i]
			}
		}
	}
	return nil
}

func (f *fakeStore) ReplaceParticipants(ctx context.Context, splitID uint, participants []BookingSplitParticipant) error {
	split := f.splitByID(splitID)
	if split == nil {
		return errors.New("split not found")
	}
	for i := range participants {
		f.nextParticipantID++
		f.clock = f.clock.Add(time.Second)
		participants[i].ID = f.nextParticipantID
		participants[i].SplitID = splitID
		participants[i].CreatedAt = f.clock
	}
	split.Participants = append([]BookingSplitParticipant(nil), participants...)
	return nil
}

func (f *fakeStore) UpdateParticipantQuote(ctx context.Context, participantID uint, shareCents, platformFeeCents int64) error {
	p := f.participantByID(participantID)
	if p == nil {
		return errors.New("participant not found")
	}
	p.ShareCents = shareCents
	p.PlatformFeeCents = platformFeeCents
	return nil
}

func (f *fakeStore) MarkParticipantPaid(ctx context.Context, participantID uint, paymentIntentID string, paidAt time.Time) error {
	p := f.participantByID(participantID)
	if p == nil {
		return errors.New("participant not found")
	}
	p.Status = ParticipantStatusPaid
	p.PaymentIntentID = &paymentIntentID
	p.PaidAt = &paidAt
	return nil
}

func (f *fakeStore) CountUnpaid(ctx context.Context, splitID uint) (int64, error) {
	split := f.splitByID(splitID)
	if split == nil {
		return 0, nil
	}
	var n int64
	for _, p := range split.Participants {
		if p.Status != ParticipantStatusPaid {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpdateSplitStatus(ctx context.Context, splitID uint, status Status) error {
	split := f.splitByID(splitID)
	if split == nil {
		return errors.New("split not found")
	}
	split.Status = status
	return nil
}

// fakeBookings is an in-memory bookings.Repository.
type fakeBookings struct {
	bookings map[uint]*bookings.Booking
	invites  map[uint]*bookings.BookingInvite
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		bookings: map[uint]*bookings.Booking{},
		invites:  map[uint]*bookings.BookingInvite{},
	}
}

type bookingsSnapshot struct {
	bookings map[uint]bookings.Booking
	invites  map[uint]bookings.BookingInvite
}

func (f *fakeBookings) snapshot() bookingsSnapshot {
	s := bookingsSnapshot{bookings: map[uint]bookings.Booking{}, invites: map[uint]bookings.BookingInvite{}}
	for k, v := range f.bookings {
		s.bookings[k] = *v
	}
	for k, v := range f.invites {
		s.invites[k] = *v
	}
	return s
}

func (f *fakeBookings) restore(s bookingsSnapshot) {
	for k, v := range s.bookings {
		b := v
		f.bookings[k] = &b
	}
	for k, v := range s.invites {
		i := v
		f.invites[k] = &i
	}
}

func (f *fakeBookings) FindByID(ctx context.Context, id uint) (*bookings.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (f *fakeBookings) FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*bookings.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.OrganizationID != organizationID {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (f *fakeBookings) FindInviteByToken(ctx context.Context, token string) (*bookings.BookingInvite, error) {
	for _, invite := range f.invites {
		if invite.Token == token {
			out := *invite
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeBookings) FindInvitesByIDs(ctx context.Context, bookingID uint, ids []uint) ([]bookings.BookingInvite, error) {
	var out []bookings.BookingInvite
	for _, id := range ids {
		if invite, ok := f.invites[id]; ok && invite.BookingID == bookingID {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (f *fakeBookings) EnsurePendingExpiry(ctx context.Context, bookingID uint, deadline time.Time) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil
	}
	if b.PendingExpiresAt == nil || b.PendingExpiresAt.Before(deadline) {
		d := deadline
		b.PendingExpiresAt = &d
	}
	return nil
}

func (f *fakeBookings) MarkInviteAccepted(ctx context.Context, inviteID uint) error {
	if invite, ok := f.invites[inviteID]; ok && invite.Status == bookings.InviteStatusPending {
		invite.Status = bookings.InviteStatusAccepted
	}
	return nil
}

func (f *fakeBookings) WithTx(tx *gorm.DB) bookings.Repository {
	return f
}

type fakeOrgs map[uint]*organizations.Organization

func (f fakeOrgs) GetOrganization(ctx context.Context, orgID uint) (*organizations.Organization, error) {
	return f[orgID], nil
}

type fixedFees struct {
	fees fees.PlatformFees
	err  error
}

func (f fixedFees) PlatformFees(ctx context.Context) (fees.PlatformFees, error) {
	return f.fees, f.err
}

func (f fixedFees) Invalidate(ctx context.Context) error { return nil }

type recordingPublisher struct {
	events []*notifications.SplitEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *notifications.SplitEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []notifications.EventType {
	out := make([]notifications.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func quietLogger() *logger.Logger {
	return logger.NewWithOptions(logger.Options{Level: "error", Output: io.Discard})
}
