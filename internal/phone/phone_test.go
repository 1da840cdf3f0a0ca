package phone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultNormalizer() Normalizer {
	return NewNormalizer("52", "1")
}

func TestCanonicalizeLocalNumber(t *testing.T) {
	n := defaultNormalizer()

	got, err := n.Canonicalize("5512345678")
	require.NoError(t, err)
	assert.Equal(t, "+525512345678", got)
}

func TestCanonicalizeHistoricalMobileForm(t *testing.T) {
	n := defaultNormalizer()

	withPlus, err := n.Canonicalize("+5215512345678")
	require.NoError(t, err)

	withoutPlus, err := n.Canonicalize("5215512345678")
	require.NoError(t, err)

	assert.Equal(t, "+525512345678", withPlus)
	assert.Equal(t, withPlus, withoutPlus)
}

func TestCanonicalizeExplicitCountryCode(t *testing.T) {
	n := defaultNormalizer()

	got, err := n.Canonicalize("+1 (415) 555-0199")
	require.NoError(t, err)
	assert.Equal(t, "+14155550199", got)
}

func TestCanonicalizeTooShort(t *testing.T) {
	n := defaultNormalizer()

	_, err := n.Canonicalize("12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvableIdentity))

	_, err = n.Canonicalize("no digits here")
	assert.True(t, errors.Is(err, ErrUnresolvableIdentity))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	n := defaultNormalizer()

	for _, raw := range []string{
		"5512345678",
		"525512345678",
		"5215512345678",
		"+5215512345678",
		"+14155550199",
		"55 1234 5678",
	} {
		first, err := n.Canonicalize(raw)
		require.NoError(t, err, "raw %q", raw)

		second, err := n.Canonicalize(first)
		require.NoError(t, err, "canonical %q", first)
		assert.Equal(t, first, second, "raw %q", raw)
	}
}

func TestVariantsContainCanonical(t *testing.T) {
	n := defaultNormalizer()

	for _, raw := range []string{"5512345678", "+5215512345678", "525512345678"} {
		canonical, err := n.Canonicalize(raw)
		require.NoError(t, err)
		assert.Contains(t, n.Variants(raw), canonical, "raw %q", raw)
	}
}

func TestVariantsCoverRecognizedShapes(t *testing.T) {
	n := defaultNormalizer()

	variants := n.Variants("5512345678")
	for _, want := range []string{
		"+525512345678",
		"525512345678",
		"+5215512345678",
		"5215512345678",
		"5512345678",
	} {
		assert.Contains(t, variants, want)
	}

	// Stable order: canonical first.
	assert.Equal(t, "+525512345678", variants[0])
}

func TestVariantsDeduplicated(t *testing.T) {
	n := defaultNormalizer()

	variants := n.Variants("+525512345678")
	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}

func TestVariantsOfUnresolvableRaw(t *testing.T) {
	n := defaultNormalizer()

	variants := n.Variants("911")
	assert.Contains(t, variants, "911")
	assert.Contains(t, variants, "+911")
}

func TestDialFormat(t *testing.T) {
	n := defaultNormalizer()

	got, err := n.DialFormat("5512345678")
	require.NoError(t, err)
	assert.Equal(t, "525512345678", got)

	_, err = n.DialFormat("123")
	assert.True(t, errors.Is(err, ErrUnresolvableIdentity))
}

func TestEquivalentRawFormsMatch(t *testing.T) {
	n := defaultNormalizer()

	a, err := n.Canonicalize("55-12-34-56-78")
	require.NoError(t, err)
	b, err := n.Canonicalize("+52 1 55 1234 5678")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
