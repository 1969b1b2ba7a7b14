package splits

import (
	"testing"

	"organizer/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64    { return &v }
func iptr(v int) *int       { return &v }
func sptr(v string) *string { return &v }
func uptr(v uint) *uint     { return &v }

func dynamic(mode DynamicMode) *DynamicMode { return &mode }

func sumBase(ps []NormalizedParticipant) int64 {
	var total int64
	for _, p := range ps {
		total += p.BaseShareCents
	}
	return total
}

func TestNormalizeFixed(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		out, err := NormalizeParticipants(NormalizeInput{
			TotalBaseCents: 10000,
			PricingMode:    PricingModeFixed,
			Participants:   []RawParticipant{{}, {}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), out[0].BaseShareCents)
		assert.Equal(t, int64(5000), out[1].BaseShareCents)
	})

	t.Run("remainder goes to the first participants", func(t *testing.T) {
		out, err := NormalizeParticipants(NormalizeInput{
			TotalBaseCents: 10000,
			PricingMode:    PricingModeFixed,
			Participants:   []RawParticipant{{}, {}, {}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{3334, 3333, 3333}, []int64{out[0].BaseShareCents, out[1].BaseShareCents, out[2].BaseShareCents})
		assert.Equal(t, int64(10000), sumBase(out))
	})

	t.Run("explicit amounts are ignored", func(t *testing.T) {
		out, err := NormalizeParticipants(NormalizeInput{
			TotalBaseCents: 900,
			PricingMode:    PricingModeFixed,
			Participants:   []RawParticipant{{ShareCents: i64(1)}, {ShareCents: i64(899)}, {}},
		})
		require.NoError(t, err)
		for _, p := range out {
			assert.Equal(t, int64(300), p.BaseShareCents)
		}
	})

	t.Run("sums to total for any size", func(t *testing.T) {
		for n := 1; n <= MaxParticipants; n++ {
			participants := make([]RawParticipant, n)
			out, err := NormalizeParticipants(NormalizeInput{TotalBaseCents: 12345, PricingMode: PricingModeFixed, Participants: participants})
			require.NoError(t, err)
			assert.Equal(t, int64(12345), sumBase(out), "n=%d", n)
			assert.LessOrEqual(t, out[0].BaseShareCents-out[n-1].BaseShareCents, int64(1))
		}
	})

	t.Run("total smaller than participant count", func(t *testing.T) {
		_, err := NormalizeParticipants(NormalizeInput{TotalBaseCents: 1, PricingMode: PricingModeFixed, Participants: []RawParticipant{{}, {}}})
		assert.True(t, apperror.HasCode(err, CodeShareInvalid))
	})
}

func TestNormalizePercent(t *testing.T) {
	out, err := NormalizeParticipants(NormalizeInput{
		TotalBaseCents: 20000,
		PricingMode:    PricingModeDynamic,
		DynamicMode:    dynamic(DynamicModePercent),
		Participants: []RawParticipant{
			{SharePercentBps: iptr(7000), Name: sptr("  Ana ")},
			{SharePercentBps: iptr(3000), Name: sptr("   ")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(14000), out[0].BaseShareCents)
	assert.Equal(t, int64(6000), out[1].BaseShareCents)
	assert.Equal(t, "Ana", *out[0].Name)
	assert.Nil(t, out[1].Name)
	assert.Equal(t, 7000, *out[0].SharePercentBps)
}

func TestNormalizePercentRounding(t *testing.T) {
	out, err := NormalizeParticipants(NormalizeInput{
		TotalBaseCents: 999,
		PricingMode:    PricingModeDynamic,
		DynamicMode:    dynamic(DynamicModePercent),
		Participants:   []RawParticipant{{SharePercentBps: iptr(3333)}, {SharePercentBps: iptr(3333)}},
	})
	require.NoError(t, err)
	// 999 * 0.3333 = 332.9667
	assert.Equal(t, int64(333), out[0].BaseShareCents)
}

func TestNormalizeAmount(t *testing.T) {
	out, err := NormalizeParticipants(NormalizeInput{
		TotalBaseCents: 10000,
		PricingMode:    PricingModeDynamic,
		DynamicMode:    dynamic(DynamicModeAmount),
		Participants: []RawParticipant{
			{ShareCents: i64(6000), InviteID: uptr(4)},
			{ShareCents: i64(3000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), out[0].BaseShareCents)
	assert.Equal(t, int64(3000), out[1].BaseShareCents)
	assert.Equal(t, uint(4), *out[0].InviteID)
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name string
		in   NormalizeInput
		code apperror.Code
	}{
		{
			name: "no participants",
			in:   NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeFixed},
			code: CodeParticipantsRequired,
		},
		{
			name: "too many participants",
			in:   NormalizeInput{TotalBaseCents: 100000, PricingMode: PricingModeFixed, Participants: make([]RawParticipant, MaxParticipants+1)},
			code: CodeTooManyParticipants,
		},
		{
			name: "non positive total",
			in:   NormalizeInput{TotalBaseCents: 0, PricingMode: PricingModeFixed, Participants: []RawParticipant{{}}},
			code: CodeTotalInvalid,
		},
		{
			name: "dynamic without sub mode",
			in:   NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, Participants: []RawParticipant{{}}},
			code: CodeDynamicModeRequired,
		},
		{
			name: "amount missing",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModeAmount),
				Participants: []RawParticipant{{ShareCents: i64(10)}, {}}},
			code: CodeShareRequired,
		},
		{
			name: "amount zero",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModeAmount),
				Participants: []RawParticipant{{ShareCents: i64(0)}}},
			code: CodeShareInvalid,
		},
		{
			name: "amounts exceed total",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModeAmount),
				Participants: []RawParticipant{{ShareCents: i64(60)}, {ShareCents: i64(41)}}},
			code: CodeShareExceedsTotal,
		},
		{
			name: "percent missing",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModePercent),
				Participants: []RawParticipant{{}}},
			code: CodePercentRequired,
		},
		{
			name: "percent out of range",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModePercent),
				Participants: []RawParticipant{{SharePercentBps: iptr(10001)}}},
			code: CodePercentInvalid,
		},
		{
			name: "percent exceeds total",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModePercent),
				Participants: []RawParticipant{{SharePercentBps: iptr(6000)}, {SharePercentBps: iptr(5000)}}},
			code: CodePercentExceedsTotal,
		},
		{
			name: "amounts that would overflow",
			in: NormalizeInput{TotalBaseCents: 10000, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModeAmount),
				Participants: []RawParticipant{{ShareCents: i64(1 << 62)}, {ShareCents: i64(1 << 62)}}},
			code: CodeShareExceedsTotal,
		},
		{
			name: "missing amount reported before an oversized one",
			in: NormalizeInput{TotalBaseCents: 100, PricingMode: PricingModeDynamic, DynamicMode: dynamic(DynamicModeAmount),
				Participants: []RawParticipant{{ShareCents: i64(500)}, {}}},
			code: CodeShareRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := NormalizeParticipants(tc.in)
			assert.Nil(t, out)
			require.Error(t, err)
			appErr := apperror.From(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, 422, appErr.Status)
		})
	}
}
