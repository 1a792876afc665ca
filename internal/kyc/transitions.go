// Package kyc holds the pure domain rules of the onboarding workflow: the
// status graph, the transition validator and the country policy. Nothing in
// this package performs I/O.
package kyc

import "github.com/veripath/backend/internal/models"

// AllowedTransitions returns the set of statuses a profile may legally move to
// from the given status. The graph branches on skipsAddress because profiles
// from certain jurisdictions must never go through address verification; that
// is a guard on the edge, not a separate state.
func AllowedTransitions(current models.KYCStatus, skipsAddress bool) []models.KYCStatus {
	switch current {
	case models.KYCStatusPending:
		return []models.KYCStatus{models.KYCStatusIDVerified, models.KYCStatusIDRejected}
	case models.KYCStatusIDVerified:
		if skipsAddress {
			return []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckManualReview}
		}
		return []models.KYCStatus{models.KYCStatusAddressVerified, models.KYCStatusAddressRejected}
	case models.KYCStatusAddressVerified:
		return []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckManualReview}
	case models.KYCStatusBackgroundCheckManualReview:
		return []models.KYCStatus{models.KYCStatusBackgroundCheckPassed, models.KYCStatusBackgroundCheckRejected}
	case models.KYCStatusBackgroundCheckPassed:
		return []models.KYCStatus{models.KYCStatusCompleted}
	default:
		// id_rejected, address_rejected, background_check_rejected and
		// completed are terminal.
		return nil
	}
}

// IsValidTransition reports whether a profile in the current status may move to
// next. It must be consulted before every status mutation.
func IsValidTransition(current, next models.KYCStatus, skipsAddress bool) bool {
	for _, allowed := range AllowedTransitions(current, skipsAddress) {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no outgoing transitions exist for the status.
func IsTerminal(status models.KYCStatus) bool {
	return len(AllowedTransitions(status, false)) == 0 && len(AllowedTransitions(status, true)) == 0
}
