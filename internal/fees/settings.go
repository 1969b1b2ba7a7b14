package fees

import (
	"context"
	"strconv"
	"time"

	"organizer/internal/shared/constants"
	"organizer/pkg/cache"

	"gorm.io/gorm"
)

const (
	SettingPlatformFeeBps        = "platform_fee_bps"
	SettingPlatformFeeFixedCents = "platform_fee_fixed_cents"
	SettingPlatformFeeMode       = "platform_fee_mode"
)

// PlatformSetting is a key/value row of platform-wide configuration.
type PlatformSetting struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(100)"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SettingsRepository interface {
	GetSettings(ctx context.Context, keys []string) (map[string]string, error)
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSettings(ctx context.Context, keys []string) (map[string]string, error) {
	var rows []PlatformSetting
	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// SettingsProvider resolves the platform default fee policy.
type SettingsProvider interface {
	PlatformFees(ctx context.Context) (PlatformFees, error)
	Invalidate(ctx context.Context) error
}

type settingsProvider struct {
	repo     SettingsRepository
	cache    cache.Service
	defaults PlatformFees
	ttl      time.Duration
}

// NewSettingsProvider reads platform_settings, falling back to defaults for
// missing or malformed rows. cacheSvc may be nil.
func NewSettingsProvider(repo SettingsRepository, cacheSvc cache.Service, defaults PlatformFees) SettingsProvider {
	return &settingsProvider{
		repo:     repo,
		cache:    cacheSvc,
		defaults: defaults,
		ttl:      constants.TTL_PLATFORM_FEES,
	}
}

func (p *settingsProvider) PlatformFees(ctx context.Context) (PlatformFees, error) {
	if p.cache == nil {
		return p.load(ctx)
	}

	var out PlatformFees
	err := p.cache.GetOrSet(ctx, constants.CACHE_KEY_PLATFORM_FEES, p.ttl, func() (interface{}, error) {
		return p.load(ctx)
	}, &out)
	if err != nil {
		return PlatformFees{}, err
	}
	return out, nil
}

func (p *settingsProvider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_FEES_ALL)
}

func (p *settingsProvider) load(ctx context.Context) (PlatformFees, error) {
	values, err := p.repo.GetSettings(ctx, []string{
		SettingPlatformFeeBps,
		SettingPlatformFeeFixedCents,
		SettingPlatformFeeMode,
	})
	if err != nil {
		return PlatformFees{}, err
	}

	out := p.defaults
	if v, err := strconv.Atoi(values[SettingPlatformFeeBps]); err == nil && v >= 0 {
		out.FeeBps = v
	}
	if v, err := strconv.ParseInt(values[SettingPlatformFeeFixedCents], 10, 64); err == nil && v >= 0 {
		out.FeeFixedCents = v
	}
	out.FeeMode = ParseFeeMode(values[SettingPlatformFeeMode], ParseFeeMode(string(out.FeeMode), FeeModeAdded))
	return out, nil
}
