package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalInboundMessageEmptyPayloadIsZeroValue(t *testing.T) {
	m, err := UnmarshalInboundMessage(nil)
	require.NoError(t, err)
	assert.Equal(t, &InboundMessage{}, m)
}

func TestUnmarshalOutboundMessageEmptyPayloadIsZeroValue(t *testing.T) {
	m, err := UnmarshalOutboundMessage([]byte{})
	require.NoError(t, err)
	assert.Equal(t, &OutboundMessage{}, m)
}

func TestUnmarshalInboundMessageRoundTrips(t *testing.T) {
	in := &InboundMessage{VersionRequest: &VersionRequest{ID: 0}}
	out, err := UnmarshalInboundMessage(in.Marshal())
	require.NoError(t, err)
	require.NotNil(t, out.VersionRequest)
	assert.EqualValues(t, 0, out.VersionRequest.ID)
}

func TestUnmarshalInboundMessageRejectsFileImportResponse(t *testing.T) {
	var b []byte
	b = appendVarintField(b, 4, 0)
	_, err := UnmarshalInboundMessage(b)
	assert.ErrorIs(t, err, ErrFileImportUnsupported)
}
