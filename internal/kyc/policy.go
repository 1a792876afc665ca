package kyc

// CountryPolicy captures the jurisdiction-dependent branching of the workflow:
// which countries skip address verification entirely and which countries get
// the special welcome flow with a promo code. Both sets come from
// configuration so tests and deployments can adjust them without code changes.
type CountryPolicy struct {
	skipAddress map[string]bool
	promo       map[string]bool
}

// NewCountryPolicy builds a policy from the configured country lists.
func NewCountryPolicy(skipAddressCountries, promoCountries []string) *CountryPolicy {
	p := &CountryPolicy{
		skipAddress: make(map[string]bool, len(skipAddressCountries)),
		promo:       make(map[string]bool, len(promoCountries)),
	}
	for _, c := range skipAddressCountries {
		p.skipAddress[c] = true
	}
	for _, c := range promoCountries {
		p.promo[c] = true
	}
	return p
}

// SkipsAddressVerification reports whether profiles from the country go
// straight from ID verification to background screening. Address verification
// results for such profiles are a consistency violation.
func (p *CountryPolicy) SkipsAddressVerification(country string) bool {
	return p.skipAddress[country]
}

// PromoJurisdiction reports whether completed profiles from the country are
// issued a promo code and receive the jurisdiction-specific welcome template.
func (p *CountryPolicy) PromoJurisdiction(country string) bool {
	return p.promo[country]
}
