package rnc

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/holy-bit/SoulLib/internal/obslog"
	"github.com/holy-bit/SoulLib/task"
)

// StreamTransport is the reliable-stream flavor: a listener model where
// every receive polls for one inbound connection, reads exactly one framed
// message, and closes the connection immediately afterward ("message
// courier" semantics, spec.md §4.5 and the open question in spec.md §9).
type StreamTransport struct {
	scheduler *task.Scheduler
	logger    *obslog.Logger
	listener  *net.TCPListener
}

// NewStreamTransport builds a StreamTransport dispatching its blocking
// socket work onto scheduler.
func NewStreamTransport(scheduler *task.Scheduler) *StreamTransport {
	return &StreamTransport{scheduler: scheduler, logger: obslog.L()}
}

// Bind opens a listening TCP socket on ep's port.
func (s *StreamTransport) Bind(ep Endpoint) bool {
	l, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: ep.UDPAddr().IP, Port: int(ep.Port)})
	if err != nil {
		s.logger.Warning().Err(err).Str("endpoint", ep.String()).Log("rnc: stream bind failed")
		return false
	}
	s.listener = l
	return true
}

// Close releases the listening socket.
func (s *StreamTransport) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// SendAsync opens a fresh outbound connection to dst, writes one framed
// message, and closes. Any failure degrades to a no-op, per spec.md §7.
func (s *StreamTransport) SendAsync(dst Endpoint, p Packet) *task.Task[struct{}] {
	return task.SubmitAsync(s.scheduler, func() (struct{}, error) {
		conn, err := net.DialTCP("tcp4", nil, &net.TCPAddr{IP: dst.UDPAddr().IP, Port: int(dst.Port)})
		if err != nil {
			s.logger.Debug().Err(err).Str("endpoint", dst.String()).Log("rnc: stream dial failed")
			return struct{}{}, nil
		}
		defer conn.Close()
		frame := EncodeFramed(p)
		if _, err := conn.Write(frame); err != nil {
			s.logger.Debug().Err(err).Log("rnc: stream write failed")
		}
		return struct{}{}, nil
	})
}

// ReceiveAsync polls the listener with a one-millisecond timeout; if a connection is
// waiting, it accepts, reads one framed message, closes the connection,
// and returns the decoded packet. It returns nil when nothing is pending,
// or when the frame is malformed/partial (spec.md §4.5: "Partial
// reads/writes within one frame are fatal for that frame").
func (s *StreamTransport) ReceiveAsync() *task.Task[*ReceivedPacket] {
	return task.SubmitAsync(s.scheduler, func() (*ReceivedPacket, error) {
		if s.listener == nil {
			return nil, nil
		}
		_ = s.listener.SetDeadline(time.Now().Add(time.Millisecond))
		conn, err := s.listener.Accept()
		if err != nil {
			return nil, nil
		}
		defer conn.Close()

		var sizeBuf [4]byte
		if _, err := io.ReadFull(conn, sizeBuf[:]); err != nil {
			return nil, nil
		}
		payloadSize := binary.LittleEndian.Uint32(sizeBuf[:])

		rest := make([]byte, HeaderSize+int(payloadSize))
		if _, err := io.ReadFull(conn, rest); err != nil {
			return nil, nil
		}

		frame := append(sizeBuf[:], rest...)
		pkt, err := DecodeFramed(frame)
		if err != nil {
			return nil, nil
		}

		remote, ok := conn.RemoteAddr().(*net.TCPAddr)
		if !ok {
			return nil, nil
		}
		return &ReceivedPacket{
			Endpoint: EndpointFromUDPAddr(&net.UDPAddr{IP: remote.IP, Port: remote.Port}),
			Packet:   pkt,
		}, nil
	})
}
