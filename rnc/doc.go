// Package rnc implements SoulLib's Reliable-UDP Network Core (RNC): a
// connection-less datagram engine that adds sequenced delivery, selective
// acknowledgement, and time-bounded retransmission over a best-effort
// datagram transport, choosing between a reliable-stream transport and a
// datagram transport per packet.
package rnc
