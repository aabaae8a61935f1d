package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminGate_CaseInsensitive(t *testing.T) {
	gate := NewAdminGate([]string{"0xABCdef0123456789abcDEF0123456789ABCDEF01"})

	assert.True(t, gate.Allowed("0xabcdef0123456789abcdef0123456789abcdef01"))
	assert.True(t, gate.Allowed("0xABCDEF0123456789ABCDEF0123456789ABCDEF01"))
}

func TestAdminGate_EmptyAddressNeverAllowed(t *testing.T) {
	gate := NewAdminGate([]string{""})
	assert.False(t, gate.Allowed(""))
	assert.False(t, gate.Allowed("   "))
}

func TestAdminGate_UnlistedAddressDenied(t *testing.T) {
	gate := NewAdminGate([]string{"0xaaa"})
	assert.False(t, gate.Allowed("0xbbb"))
}

func TestAdminGate_TrimsWhitespaceEntries(t *testing.T) {
	gate := NewAdminGate([]string{"  0xAAA  ", ""})
	assert.True(t, gate.Allowed("0xaaa"))
}
