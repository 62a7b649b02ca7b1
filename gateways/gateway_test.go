package gateways

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReferenceRoundTrip(t *testing.T) {
	ref := BuildReference("PT", "ORD-7")
	assert.Regexp(t, `^PT-ORD-7-\d+$`, ref)

	orderNumber, ok := ParseReferenceOrderNumber(ref)
	require.True(t, ok)
	assert.Equal(t, "ORD-7", orderNumber)
}

func TestParseReferenceOrderNumber(t *testing.T) {
	cases := []struct {
		ref   string
		want  string
		valid bool
	}{
		{"PF-ORD-123456-1690000000000", "ORD-123456", true},
		{"DOP-ORD-7-1690000000000", "ORD-7", true},
		// Order numbers may themselves contain several dashes.
		{"PT-ORD-A-B-1690000000000", "ORD-A-B", true},
		{"PT-1690000000000", "", false},
		{"not-a-reference", "", false},
		{"PT--1690000000000", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseReferenceOrderNumber(tc.ref)
		assert.Equal(t, tc.valid, ok, "ref %q", tc.ref)
		assert.Equal(t, tc.want, got, "ref %q", tc.ref)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(&StripeGateway{}, &PayFastGateway{})

	gw, ok := r.Get(GatewayStripe)
	require.True(t, ok)
	assert.Equal(t, GatewayStripe, gw.Name())

	_, ok = r.Get("paypal")
	assert.False(t, ok)

	assert.Equal(t, []string{GatewayPayFast, GatewayStripe}, r.Names())
}
