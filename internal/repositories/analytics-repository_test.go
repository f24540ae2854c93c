package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-inventory/internal/entities"
	"it-inventory/pkg/config"
)

var riskConfig = config.AnalyticsConfig{WearThreshold: 80, OldAssetYears: 5}

func datePtr(t time.Time) *time.Time { return &t }
func intPtr(i int) *int { return &i }

func TestClassifyRisk(t *testing.T) {
	today := time.Date(2025, 1, 15, 13, 45, 0, 0, time.UTC)
	yesterday := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	sixYearsAgo := time.Date(2019, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		candidate RiskCandidate
		issue     entities.RiskIssue
		level     entities.Criticality
		dateRef   string
	}{
		{
			name:      "wear wins over expired warranty",
			candidate: RiskCandidate{WearPercentage: intPtr(90), WarrantyEndDate: datePtr(yesterday)},
			issue:     entities.RiskCriticalWear,
			level:     entities.CriticalityHigh,
		},
		{
			name:      "wear exactly at threshold",
			candidate: RiskCandidate{WearPercentage: intPtr(80)},
			issue:     entities.RiskCriticalWear,
			level:     entities.CriticalityHigh,
		},
		{
			name:      "warranty expired",
			candidate: RiskCandidate{WearPercentage: intPtr(10), WarrantyEndDate: datePtr(yesterday), PurchaseDate: datePtr(sixYearsAgo)},
			issue:     entities.RiskWarrantyExpired,
			level:     entities.CriticalityMedium,
			dateRef:   "2025-01-14",
		},
		{
			name:      "old asset",
			candidate: RiskCandidate{PurchaseDate: datePtr(sixYearsAgo)},
			issue:     entities.RiskOldAsset,
			level:     entities.CriticalityMedium,
			dateRef:   "2019-01-15",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			risk, ok := ClassifyRisk(tc.candidate, today, riskConfig)
			require.True(t, ok)
			assert.Equal(t, tc.issue, risk.Issue)
			assert.Equal(t, tc.level, risk.Criticality)
			if tc.dateRef == "" {
				assert.Nil(t, risk.DateRef)
				return
			}
			require.NotNil(t, risk.DateRef)
			assert.Equal(t, tc.dateRef, *risk.DateRef)
		})
	}
}

func TestClassifyRisk_NoIssue(t *testing.T) {
	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	candidates := []RiskCandidate{
		{},
		{WearPercentage: intPtr(79)},
		// гарантия, истекающая сегодня, еще действует
		{WarrantyEndDate: datePtr(today)},
		{PurchaseDate: datePtr(today.AddDate(-5, 0, 0))},
	}
	for _, c := range candidates {
		_, ok := ClassifyRisk(c, today, riskConfig)
		assert.False(t, ok)
	}
}

func TestDateOnly(t *testing.T) {
	local := time.FixedZone("UTC+5", 5*3600)
	got := DateOnly(time.Date(2025, 1, 16, 2, 0, 0, 0, local))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got)
}
