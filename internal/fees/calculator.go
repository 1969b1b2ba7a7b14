package fees

import "strings"

type FeeMode string

const (
	// FeeModeIncluded absorbs fees in the charged amount.
	FeeModeIncluded FeeMode = "INCLUDED"
	// FeeModeAdded charges fees on top of the base amount.
	FeeModeAdded FeeMode = "ADDED"
)

// ParseFeeMode returns fallback for empty or unknown values.
func ParseFeeMode(raw string, fallback FeeMode) FeeMode {
	switch FeeMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case FeeModeIncluded:
		return FeeModeIncluded
	case FeeModeAdded:
		return FeeModeAdded
	}
	return fallback
}

// PlatformFees is the platform-wide default fee policy.
type PlatformFees struct {
	FeeBps        int     `json:"feeBps"`
	FeeFixedCents int64   `json:"feeFixedCents"`
	FeeMode       FeeMode `json:"feeMode"`
}

// PricingOptions carries the organization overrides applied on top of the
// platform defaults.
type PricingOptions struct {
	Platform                  PlatformFees
	OrganizationFeeMode       *string
	OrganizationFeeBps        *int
	OrganizationFeeFixedCents *int
	IsPlatformOrganization    bool
}

type Pricing struct {
	AmountCents      int64   `json:"amountCents"`
	DiscountCents    int64   `json:"discountCents"`
	NetCents         int64   `json:"netCents"`
	FeeMode          FeeMode `json:"feeMode"`
	FeeBpsApplied    int     `json:"feeBpsApplied"`
	FeeFixedApplied  int64   `json:"feeFixedApplied"`
	PlatformFeeCents int64   `json:"platformFeeCents"`
}

// ComputePricing resolves the applied fee policy and the platform fee for an
// amount. Platform-owned organizations are never charged a platform fee.
func ComputePricing(amountCents, discountCents int64, opts PricingOptions) Pricing {
	if discountCents < 0 {
		discountCents = 0
	}
	net := amountCents - discountCents
	if net < 0 {
		net = 0
	}

	mode := ParseFeeMode(string(opts.Platform.FeeMode), FeeModeAdded)
	if opts.OrganizationFeeMode != nil {
		mode = ParseFeeMode(*opts.OrganizationFeeMode, mode)
	}

	bps := opts.Platform.FeeBps
	if opts.OrganizationFeeBps != nil {
		bps = *opts.OrganizationFeeBps
	}
	fixed := opts.Platform.FeeFixedCents
	if opts.OrganizationFeeFixedCents != nil {
		fixed = int64(*opts.OrganizationFeeFixedCents)
	}
	if opts.IsPlatformOrganization {
		bps, fixed = 0, 0
	}
	if bps < 0 {
		bps = 0
	}
	if fixed < 0 {
		fixed = 0
	}

	var fee int64
	if net > 0 {
		fee = RoundBps(net, bps) + fixed
	}

	return Pricing{
		AmountCents:      amountCents,
		DiscountCents:    discountCents,
		NetCents:         net,
		FeeMode:          mode,
		FeeBpsApplied:    bps,
		FeeFixedApplied:  fixed,
		PlatformFeeCents: fee,
	}
}

type CombinedFeesInput struct {
	AmountCents       int64
	DiscountCents     int64
	PlatformFeeCents  int64
	ProcessorFeeCents int64
	FeeMode           FeeMode
}

type CombinedFees struct {
	BaseCents         int64   `json:"baseCents"`
	PlatformFeeCents  int64   `json:"platformFeeCents"`
	ProcessorFeeCents int64   `json:"processorFeeCents"`
	CombinedFeeCents  int64   `json:"combinedFeeCents"`
	TotalCents        int64   `json:"totalCents"`
	FeeMode           FeeMode `json:"feeMode"`
}

// ComputeCombinedFees produces the amount charged to the payer.
func ComputeCombinedFees(in CombinedFeesInput) CombinedFees {
	base := in.AmountCents - in.DiscountCents
	if base < 0 {
		base = 0
	}
	platform := maxInt64(0, in.PlatformFeeCents)
	processor := maxInt64(0, in.ProcessorFeeCents)
	combined := platform + processor

	total := base
	if in.FeeMode == FeeModeAdded {
		total = base + combined
	}

	return CombinedFees{
		BaseCents:         base,
		PlatformFeeCents:  platform,
		ProcessorFeeCents: processor,
		CombinedFeeCents:  combined,
		TotalCents:        total,
		FeeMode:           in.FeeMode,
	}
}

// RoundBps returns amount*bps/10000 rounded half up.
func RoundBps(amountCents int64, bps int) int64 {
	if amountCents <= 0 || bps <= 0 {
		return 0
	}
	b := int64(bps)
	return amountCents/10000*b + (amountCents%10000*b+5000)/10000
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
