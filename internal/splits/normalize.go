package splits

import (
	"strings"

	"organizer/internal/fees"
	"organizer/internal/shared/apperror"
)

// MaxParticipants bounds a single split.
const MaxParticipants = 50

const (
	CodeParticipantsRequired apperror.Code = "SPLIT_PARTICIPANTS_REQUIRED"
	CodeTooManyParticipants  apperror.Code = "SPLIT_TOO_MANY_PARTICIPANTS"
	CodeTotalInvalid         apperror.Code = "SPLIT_TOTAL_INVALID"
	CodeDynamicModeRequired  apperror.Code = "SPLIT_DYNAMIC_MODE_REQUIRED"
	CodeShareRequired        apperror.Code = "SPLIT_SHARE_REQUIRED"
	CodeShareInvalid         apperror.Code = "SPLIT_SHARE_INVALID"
	CodeShareExceedsTotal    apperror.Code = "SPLIT_SHARE_EXCEEDS_TOTAL"
	CodePercentRequired      apperror.Code = "SPLIT_PERCENT_REQUIRED"
	CodePercentInvalid       apperror.Code = "SPLIT_PERCENT_INVALID"
	CodePercentExceedsTotal  apperror.Code = "SPLIT_PERCENT_EXCEEDS_TOTAL"
)

// RawParticipant is a participant as submitted, before validation.
type RawParticipant struct {
	InviteID        *uint
	UserID          *string
	Name            *string
	Contact         *string
	ShareCents      *int64
	SharePercentBps *int
}

type NormalizeInput struct {
	TotalBaseCents int64
	PricingMode    PricingMode
	DynamicMode    *DynamicMode
	Participants   []RawParticipant
}

// NormalizedParticipant carries the validated pre-fee share.
type NormalizedParticipant struct {
	InviteID        *uint
	UserID          *string
	Name            *string
	Contact         *string
	BaseShareCents  int64
	SharePercentBps *int
}

func invalid(code apperror.Code, message string) *apperror.Error {
	return apperror.Unprocessable(code, message)
}

// NormalizeParticipants validates the raw participants and computes each base
// share. FIXED splits the total evenly, handing leftover cents one by one to
// the first participants so the shares always add up to the total.
func NormalizeParticipants(in NormalizeInput) ([]NormalizedParticipant, error) {
	n := len(in.Participants)
	if n == 0 {
		return nil, invalid(CodeParticipantsRequired, "At least one participant is required")
	}
	if n > MaxParticipants {
		return nil, invalid(CodeTooManyParticipants, "Too many participants")
	}
	if in.TotalBaseCents <= 0 {
		return nil, invalid(CodeTotalInvalid, "Split total must be positive")
	}

	out := make([]NormalizedParticipant, n)
	for i, raw := range in.Participants {
		out[i] = NormalizedParticipant{
			InviteID: raw.InviteID,
			UserID:   trimmed(raw.UserID),
			Name:     trimmed(raw.Name),
			Contact:  trimmed(raw.Contact),
		}
	}

	if in.PricingMode != PricingModeDynamic {
		if in.TotalBaseCents < int64(n) {
			return nil, invalid(CodeShareInvalid, "Total is too small to split between participants")
		}
		base := in.TotalBaseCents / int64(n)
		remainder := in.TotalBaseCents % int64(n)
		for i := range out {
			out[i].BaseShareCents = base
			if int64(i) < remainder {
				out[i].BaseShareCents++
			}
		}
		return out, nil
	}

	if in.DynamicMode == nil {
		return nil, invalid(CodeDynamicModeRequired, "Dynamic mode is required for dynamic pricing")
	}

	switch *in.DynamicMode {
	case DynamicModeAmount:
		for _, raw := range in.Participants {
			if raw.ShareCents == nil {
				return nil, invalid(CodeShareRequired, "Every participant needs an amount")
			}
			if *raw.ShareCents <= 0 {
				return nil, invalid(CodeShareInvalid, "Participant amounts must be positive")
			}
		}
		// Compare against what is left of the total so the running sum
		// never exceeds it.
		var sum int64
		for i, raw := range in.Participants {
			if *raw.ShareCents > in.TotalBaseCents-sum {
				return nil, invalid(CodeShareExceedsTotal, "Participant amounts exceed the booking total")
			}
			sum += *raw.ShareCents
			out[i].BaseShareCents = *raw.ShareCents
		}

	case DynamicModePercent:
		sumBps := 0
		for i, raw := range in.Participants {
			if raw.SharePercentBps == nil {
				return nil, invalid(CodePercentRequired, "Every participant needs a percentage")
			}
			bps := *raw.SharePercentBps
			if bps < 1 || bps > 10000 {
				return nil, invalid(CodePercentInvalid, "Percentages must be between 0.01% and 100%")
			}
			sumBps += bps
			out[i].BaseShareCents = fees.RoundBps(in.TotalBaseCents, bps)
			out[i].SharePercentBps = &bps
		}
		if sumBps > 10000 {
			return nil, invalid(CodePercentExceedsTotal, "Percentages exceed 100%")
		}
		for _, p := range out {
			if p.BaseShareCents <= 0 {
				return nil, invalid(CodeShareInvalid, "Percentage is too small for the booking total")
			}
		}

	default:
		return nil, invalid(CodeDynamicModeRequired, "Dynamic mode is required for dynamic pricing")
	}

	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
