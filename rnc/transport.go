package rnc

import "github.com/holy-bit/SoulLib/task"

// ReceivedPacket pairs a decoded Packet with the endpoint it arrived from.
type ReceivedPacket struct {
	Endpoint Endpoint
	Packet   Packet
}

// Transport is the common contract shared by the datagram and
// reliable-stream flavors (spec.md §4.5).
type Transport interface {
	Bind(ep Endpoint) bool
	Close() error
	SendAsync(ep Endpoint, p Packet) *task.Task[struct{}]
	ReceiveAsync() *task.Task[*ReceivedPacket]
}
