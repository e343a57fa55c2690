package rnc

import (
	"encoding/binary"
	"fmt"
)

// Guarantee selects delivery semantics for a packet.
type Guarantee uint8

const (
	Unreliable Guarantee = 0
	Reliable   Guarantee = 1
)

// Flag bits for PacketHeader.Flags.
const (
	FlagAck uint8 = 1 << 0
)

// HeaderSize is the fixed, little-endian, field-packed wire size of a
// PacketHeader: sequence(4) + acknowledgment(4) + acknowledgmentMask(4) +
// guarantee(1) + flags(1) + channel(2) = 16 bytes. encoding/binary is the
// standard library's fixed-width integer codec; there is no pack
// dependency offering a drop-in wire-format replacement for this exact,
// peer-to-peer byte layout (spec.md §6 requires both peers to agree on one
// encoding, not on a library).
const HeaderSize = 16

// MTU bounds a single datagram read (spec.md §4.5).
const MTU = 1500

// PacketHeader is the fixed-size framing header carried by every packet.
type PacketHeader struct {
	Sequence           uint32
	Acknowledgment     uint32
	AcknowledgmentMask uint32
	Guarantee          Guarantee
	Flags              uint8
	Channel            uint16
}

// Packet is a framed header plus an opaque payload.
type Packet struct {
	Header  PacketHeader
	Payload []byte
}

// EncodeHeader writes h's fixed-size, little-endian wire representation.
func EncodeHeader(h PacketHeader) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Sequence)
	binary.LittleEndian.PutUint32(buf[4:8], h.Acknowledgment)
	binary.LittleEndian.PutUint32(buf[8:12], h.AcknowledgmentMask)
	buf[12] = byte(h.Guarantee)
	buf[13] = h.Flags
	binary.LittleEndian.PutUint16(buf[14:16], h.Channel)
	return buf
}

// DecodeHeader parses a fixed-size header from buf's first HeaderSize
// bytes. It fails if buf is too short to hold one.
func DecodeHeader(buf []byte) (PacketHeader, error) {
	if len(buf) < HeaderSize {
		return PacketHeader{}, fmt.Errorf("rnc: short header: got %d bytes, want %d", len(buf), HeaderSize)
	}
	return PacketHeader{
		Sequence:           binary.LittleEndian.Uint32(buf[0:4]),
		Acknowledgment:     binary.LittleEndian.Uint32(buf[4:8]),
		AcknowledgmentMask: binary.LittleEndian.Uint32(buf[8:12]),
		Guarantee:          Guarantee(buf[12]),
		Flags:              buf[13],
		Channel:            binary.LittleEndian.Uint16(buf[14:16]),
	}, nil
}

// Encode produces the datagram wire form: header‖payload.
func Encode(p Packet) []byte {
	buf := EncodeHeader(p.Header)
	return append(buf, p.Payload...)
}

// Decode parses the datagram wire form produced by Encode. It fails if buf
// cannot hold a full header (spec.md §4.5: "fails silently on short
// datagrams that cannot hold a header" is enforced by the transport, which
// treats this error as "nothing received").
func Decode(buf []byte) (Packet, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Packet{}, err
	}
	payload := make([]byte, len(buf)-HeaderSize)
	copy(payload, buf[HeaderSize:])
	return Packet{Header: h, Payload: payload}, nil
}

// EncodeFramed produces the reliable-stream wire form:
// [payload-size: u32][header][payload], payload-size in the same byte
// order as header integers.
func EncodeFramed(p Packet) []byte {
	buf := make([]byte, 4, 4+HeaderSize+len(p.Payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(p.Payload)))
	buf = append(buf, EncodeHeader(p.Header)...)
	buf = append(buf, p.Payload...)
	return buf
}

// DecodeFramed parses the reliable-stream wire form produced by
// EncodeFramed, requiring buf to hold the full frame exactly.
func DecodeFramed(buf []byte) (Packet, error) {
	if len(buf) < 4+HeaderSize {
		return Packet{}, fmt.Errorf("rnc: short frame: got %d bytes, want at least %d", len(buf), 4+HeaderSize)
	}
	payloadSize := binary.LittleEndian.Uint32(buf[0:4])
	h, err := DecodeHeader(buf[4 : 4+HeaderSize])
	if err != nil {
		return Packet{}, err
	}
	want := 4 + HeaderSize + int(payloadSize)
	if len(buf) < want {
		return Packet{}, fmt.Errorf("rnc: truncated frame: got %d bytes, want %d", len(buf), want)
	}
	payload := make([]byte, payloadSize)
	copy(payload, buf[4+HeaderSize:want])
	return Packet{Header: h, Payload: payload}, nil
}
