package embeddedsass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocolVersion(t *testing.T) {
	v, err := parseProtocolVersion("2.3.1")
	require.NoError(t, err)
	assert.Equal(t, protocolVersion{2, 3, 1}, v)
}

func TestParseProtocolVersionStripsPrerelease(t *testing.T) {
	v, err := parseProtocolVersion("2.0.0-beta.1")
	require.NoError(t, err)
	assert.Equal(t, protocolVersion{2, 0, 0}, v)
}

func TestParseProtocolVersionRejectsMalformed(t *testing.T) {
	_, err := parseProtocolVersion("2.0")
	assert.Error(t, err)

	_, err = parseProtocolVersion("a.b.c")
	assert.Error(t, err)
}

func TestProtocolVersionLess(t *testing.T) {
	assert.True(t, protocolVersion{1, 9, 9}.less(protocolVersion{2, 0, 0}))
	assert.True(t, protocolVersion{2, 0, 0}.less(protocolVersion{2, 0, 1}))
	assert.True(t, protocolVersion{2, 0, 0}.less(protocolVersion{2, 1, 0}))
	assert.False(t, protocolVersion{2, 1, 0}.less(protocolVersion{2, 0, 9}))
	assert.False(t, protocolVersion{2, 0, 0}.less(protocolVersion{2, 0, 0}))
}

func TestNegotiateVersionAccepts(t *testing.T) {
	assert.NoError(t, negotiateVersion("2.0.0"))
	assert.NoError(t, negotiateVersion("2.4.7"))
	assert.NoError(t, negotiateVersion("2.0.0-rc.1"))
}

func TestNegotiateVersionRejectsMajorMismatch(t *testing.T) {
	err := negotiateVersion("3.0.0")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "major version mismatch")
}

func TestNegotiateVersionRejectsBelowMinimum(t *testing.T) {
	err := negotiateVersion("2.0.0-alpha")
	assert.NoError(t, err, "2.0.0 exactly equals the minimum and must be accepted")

	err = negotiateVersion("1.99.99")
	assert.Error(t, err)
}

func TestNegotiateVersionRejectsUnparsable(t *testing.T) {
	err := negotiateVersion("not-a-version")
	assert.Error(t, err)
}
