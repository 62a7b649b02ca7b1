package controllers

import (
	"regexp"
	"testing"

	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	number := generateOrderNumber()
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-\d{6}$`), number)

	// Payment references embed the order number between a gateway prefix and
	// a timestamp; the dashed form must survive the round trip.
	ref := gateways.BuildReference("PF", number)
	parsed, ok := gateways.ParseReferenceOrderNumber(ref)
	require.True(t, ok)
	assert.Equal(t, number, parsed)
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[generateOrderNumber()] = true
	}
	assert.Greater(t, len(seen), 1)
}
