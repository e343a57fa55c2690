package rnc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := PacketHeader{
		Sequence:           123456,
		Acknowledgment:     654321,
		AcknowledgmentMask: 0xABCD1234,
		Guarantee:          Reliable,
		Flags:              FlagAck,
		Channel:            42,
	}
	buf := EncodeHeader(h)
	require.Len(t, buf, HeaderSize)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDecodeHeaderShortBufferFails(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	require.Error(t, err)
}

func TestPacketRoundTrip(t *testing.T) {
	p := Packet{
		Header:  PacketHeader{Sequence: 1, Channel: 7},
		Payload: []byte("hello, reliable world"),
	}
	buf := Encode(p)
	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, p.Header, got.Header)
	require.Equal(t, p.Payload, got.Payload)
}

func TestFramedRoundTrip(t *testing.T) {
	p := Packet{
		Header:  PacketHeader{Sequence: 99, Channel: 3},
		Payload: []byte("framed payload"),
	}
	frame := EncodeFramed(p)
	got, err := DecodeFramed(frame)
	require.NoError(t, err)
	require.Equal(t, p.Header, got.Header)
	require.Equal(t, p.Payload, got.Payload)
}

func TestEndpointStringAndParseRoundTrip(t *testing.T) {
	ep, err := ParseEndpoint("192.168.1.10:5050")
	require.NoError(t, err)
	require.Equal(t, "192.168.1.10:5050", ep.String())
}
