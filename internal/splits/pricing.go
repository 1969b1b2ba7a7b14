package splits

import (
	"organizer/internal/fees"
	"organizer/internal/organizations"
)

// CardFeeBps is the surcharge applied when a participant pays by card.
const CardFeeBps = 100

// ShareQuote is the amount one participant is charged for a base share.
type ShareQuote struct {
	BaseShareCents   int64
	ShareCents       int64
	PlatformFeeCents int64
	FeeMode          fees.FeeMode
}

func pricingOptions(org *organizations.Organization, platform fees.PlatformFees) fees.PricingOptions {
	opts := fees.PricingOptions{Platform: platform}
	if org != nil {
		opts.OrganizationFeeMode = org.FeeMode
		opts.OrganizationFeeBps = org.PlatformFeeBps
		opts.OrganizationFeeFixedCents = org.PlatformFeeFixedCents
		opts.IsPlatformOrganization = org.IsPlatform()
	}
	return opts
}

// QuoteShare runs the fee calculator for one base share. The card surcharge
// counts as platform fee and is always charged on top.
func QuoteShare(baseShareCents int64, opts fees.PricingOptions, cardPayment bool) ShareQuote {
	pricing := fees.ComputePricing(baseShareCents, 0, opts)
	combined := fees.ComputeCombinedFees(fees.CombinedFeesInput{
		AmountCents:      baseShareCents,
		PlatformFeeCents: pricing.PlatformFeeCents,
		FeeMode:          pricing.FeeMode,
	})

	quote := ShareQuote{
		BaseShareCents:   baseShareCents,
		ShareCents:       combined.TotalCents,
		PlatformFeeCents: pricing.PlatformFeeCents,
		FeeMode:          pricing.FeeMode,
	}
	if cardPayment && baseShareCents > 0 {
		surcharge := fees.RoundBps(baseShareCents, CardFeeBps)
		quote.ShareCents += surcharge
		quote.PlatformFeeCents += surcharge
	}
	if quote.PlatformFeeCents > quote.ShareCents {
		quote.PlatformFeeCents = quote.ShareCents
	}
	return quote
}
