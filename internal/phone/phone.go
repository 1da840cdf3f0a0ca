// Package phone canonicalizes the many textual shapes a phone number
// arrives in (local 10-digit, country-code prefixed, the historical
// mobile form with an extra leading digit, with or without '+') into
// a single canonical representation, and expands a raw number into
// the variant set used for exact-match contact lookups.
package phone

import (
	"errors"
	"strings"
)

// ErrUnresolvableIdentity means a raw string cannot denote a phone
// number: fewer than 10 significant digits survive cleaning.
var ErrUnresolvableIdentity = errors.New("phone cannot be canonicalized")

const localDigits = 10

// Normalizer holds the numbering-plan configuration. CountryCode is
// prepended to bare local numbers; MobilePrefix is the historical
// extra digit that used to follow the country code on mobile numbers
// and is collapsed away.
type Normalizer struct {
	CountryCode  string
	MobilePrefix string
}

// NewNormalizer defaults to the Mexican plan (+52, historical "1").
func NewNormalizer(countryCode, mobilePrefix string) Normalizer {
	if countryCode == "" {
		countryCode = "52"
	}
	if mobilePrefix == "" {
		mobilePrefix = "1"
	}
	return Normalizer{CountryCode: countryCode, MobilePrefix: mobilePrefix}
}

// Digits strips everything but decimal digits.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonicalize reduces raw to the canonical "+<cc><10 digits>" form
// stored on contacts. It is a pure function of its input.
func (n Normalizer) Canonicalize(raw string) (string, error) {
	digits := Digits(raw)
	if len(digits) < localDigits {
		return "", ErrUnresolvableIdentity
	}

	mobileLen := len(n.CountryCode) + len(n.MobilePrefix) + localDigits

	switch {
	case len(digits) == localDigits:
		// Bare local number, assume the configured country.
		return "+" + n.CountryCode + digits, nil
	case len(digits) == mobileLen && strings.HasPrefix(digits, n.CountryCode+n.MobilePrefix):
		// Historical mobile form: collapse the extra prefix digit.
		return "+" + n.CountryCode + digits[len(digits)-localDigits:], nil
	default:
		// Already carries an explicit country code.
		return "+" + digits, nil
	}
}

// Variants expands raw into every textual shape the same number may
// have been stored or delivered under. The order is fixed: canonical
// first, then the historical mobile forms, the bare local tail, and
// finally the raw input as given. Duplicates are removed preserving
// first position.
func (n Normalizer) Variants(raw string) []string {
	digits := Digits(raw)
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	canonical, err := n.Canonicalize(raw)
	if err == nil {
		bare := canonical[1:]
		last10 := bare[len(bare)-localDigits:]
		mobile := n.CountryCode + n.MobilePrefix + last10

		add(canonical)
		add(bare)
		add("+" + mobile)
		add(mobile)
		add(last10)
	}

	add(strings.TrimSpace(raw))
	add(digits)
	if digits != "" {
		add("+" + digits)
	}
	return out
}

// DialFormat renders raw the way the transport dials it: country-code
// prefixed digits without the '+'.
func (n Normalizer) DialFormat(raw string) (string, error) {
	canonical, err := n.Canonicalize(raw)
	if err != nil {
		return "", err
	}
	return canonical[1:], nil
}
