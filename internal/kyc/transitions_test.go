package kyc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veripath/backend/internal/models"
)

func TestAllowedTransitions(t *testing.T) {
	tests := []struct {
		name         string
		current      models.KYCStatus
		skipsAddress bool
		want         []models.KYCStatus
	}{
		{
			name:    "pending branches on the ID verification result",
			current: models.KYCStatusPending,
			want:    []models.KYCStatus{models.KYCStatusIDVerified, models.KYCStatusIDRejected},
		},
		{
			name:    "id_verified goes through address verification",
			current: models.KYCStatusIDVerified,
			want:    []models.KYCStatus{models.KYCStatusAddressVerified, models.KYCStatusAddressRejected},
		},
		{
			name:         "id_verified skips straight to screening for skip-address countries",
			current:      models.KYCStatusIDVerified,
			skipsAddress: true,
			want:         []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckManualReview},
		},
		{
			name:    "address_verified moves to screening",
			current: models.KYCStatusAddressVerified,
			want:    []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckManualReview},
		},
		{
			name:    "manual review resolves to passed or rejected",
			current: models.KYCStatusBackgroundCheckManualReview,
			want:    []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckRejected},
		},
		{
			name:    "passed background check completes",
			current: models.KYCStatusBackgroundCheckPassed,
			want:    []models.KYCStatus{models.KYCStatusCompleted},
		},
		{
			name:    "id_rejected is terminal",
			current: models.KYCStatusIDRejected,
			want:    nil,
		},
		{
			name:    "address_rejected is terminal",
			current: models.KYCStatusAddressRejected,
			want:    nil,
		},
		{
			name:    "background_check_rejected is terminal",
			current: models.KYCStatusBackgroundCheckRejected,
			want:    nil,
		},
		{
			name:    "completed is terminal",
			current: models.KYCStatusCompleted,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowedTransitions(tt.current, tt.skipsAddress)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	assert.True(t, IsValidTransition(models.KYCStatusPending, models.KYCStatusIDVerified, false))
	assert.True(t, IsValidTransition(models.KYCStatusIDVerified, models.KYCStatusAddressVerified, false))

	// The skip-address branch swaps the reachable set, it does not extend it
	assert.True(t, IsValidTransition(models.KYCStatusIDVerified, models.KYCStatusBackgroundCheckPassed, true))
	assert.False(t, IsValidTransition(models.KYCStatusIDVerified, models.KYCStatusBackgroundCheckPassed, false))
	assert.False(t, IsValidTransition(models.KYCStatusIDVerified, models.KYCStatusAddressVerified, true))

	// No skipping stages
	assert.False(t, IsValidTransition(models.KYCStatusPending, models.KYCStatusAddressVerified, false))
	assert.False(t, IsValidTransition(models.KYCStatusPending, models.KYCStatusCompleted, false))
	assert.False(t, IsValidTransition(models.KYCStatusAddressVerified, models.KYCStatusCompleted, false))

	// No going backwards
	assert.False(t, IsValidTransition(models.KYCStatusAddressVerified, models.KYCStatusIDVerified, false))
	assert.False(t, IsValidTransition(models.KYCStatusCompleted, models.KYCStatusPending, false))

	// Terminal statuses accept nothing
	for _, terminal := range []models.KYCStatus{
		models.KYCStatusIDRejected,
		models.KYCStatusAddressRejected,
		models.KYCStatusBackgroundCheckRejected,
		models.KYCStatusCompleted,
	} {
		for _, next := range []models.KYCStatus{
			models.KYCStatusPending,
			models.KYCStatusIDVerified,
			models.KYCStatusAddressVerified,
			models.KYCStatusBackgroundCheckPassed,
			models.KYCStatusCompleted,
		} {
			assert.False(t, IsValidTransition(terminal, next, false), "%s -> %s", terminal, next)
			assert.False(t, IsValidTransition(terminal, next, true), "%s -> %s", terminal, next)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.KYCStatus{
		models.KYCStatusIDRejected,
		models.KYCStatusAddressRejected,
		models.KYCStatusBackgroundCheckRejected,
		models.KYCStatusCompleted,
	}
	for _, status := range terminal {
		assert.True(t, IsTerminal(status), "%s", status)
	}

	nonTerminal := []models.KYCStatus{
		models.KYCStatusPending,
		models.KYCStatusIDVerified,
		models.KYCStatusAddressVerified,
		models.KYCStatusBackgroundCheckPassed,
		models.KYCStatusBackgroundCheckManualReview,
	}
	for _, status := range nonTerminal {
		assert.False(t, IsTerminal(status), "%s", status)
	}
}

func TestCountryPolicy(t *testing.T) {
	policy := NewCountryPolicy([]string{"Wakanda"}, []string{"Wakanda"})

	assert.True(t, policy.SkipsAddressVerification("Wakanda"))
	assert.False(t, policy.SkipsAddressVerification("Ruritania"))

	assert.True(t, policy.PromoJurisdiction("Wakanda"))
	assert.False(t, policy.PromoJurisdiction("Ruritania"))
}
