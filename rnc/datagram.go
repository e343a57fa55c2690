package rnc

import (
	"net"
	"time"

	"github.com/holy-bit/SoulLib/internal/obslog"
	"github.com/holy-bit/SoulLib/task"
)

// DatagramTransport is one OS datagram socket per instance. All socket
// calls run inside scheduler-dispatched closures so a caller's own thread
// never blocks on them (spec.md §4.5).
type DatagramTransport struct {
	scheduler *task.Scheduler
	logger    *obslog.Logger
	conn      net.PacketConn
}

// NewDatagramTransport builds a DatagramTransport dispatching its blocking
// socket work onto scheduler.
func NewDatagramTransport(scheduler *task.Scheduler) *DatagramTransport {
	return &DatagramTransport{scheduler: scheduler, logger: obslog.L()}
}

// Bind opens a UDP socket on ep's port. A bind failure degrades to false
// rather than an error, per spec.md §7's TransportError contract.
func (d *DatagramTransport) Bind(ep Endpoint) bool {
	conn, err := net.ListenUDP("udp4", ep.UDPAddr())
	if err != nil {
		d.logger.Warning().Err(err).Str("endpoint", ep.String()).Log("rnc: datagram bind failed")
		return false
	}
	d.conn = conn
	return true
}

// LocalEndpoint returns the socket's bound address, useful after binding
// to an ephemeral port (Endpoint{Port: 0}).
func (d *DatagramTransport) LocalEndpoint() Endpoint {
	if d.conn == nil {
		return Endpoint{}
	}
	if addr, ok := d.conn.LocalAddr().(*net.UDPAddr); ok {
		return EndpointFromUDPAddr(addr)
	}
	return Endpoint{}
}

// Close releases the underlying socket.
func (d *DatagramTransport) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// SendAsync writes header‖payload to dst. Write failures are swallowed
// (spec.md §4.6 "Failure semantics"): the task still completes, with no
// error, degrading to a no-op send.
func (d *DatagramTransport) SendAsync(dst Endpoint, p Packet) *task.Task[struct{}] {
	return task.SubmitAsync(d.scheduler, func() (struct{}, error) {
		if d.conn == nil {
			return struct{}{}, nil
		}
		buf := Encode(p)
		if _, err := d.conn.WriteTo(buf, dst.UDPAddr()); err != nil {
			d.logger.Debug().Err(err).Str("endpoint", dst.String()).Log("rnc: datagram send failed")
		}
		return struct{}{}, nil
	})
}

// ReceiveAsync polls for one datagram without blocking the caller beyond
// the worker it runs on. It returns a nil *ReceivedPacket when nothing is
// available or the datagram is too short to hold a header.
func (d *DatagramTransport) ReceiveAsync() *task.Task[*ReceivedPacket] {
	return task.SubmitAsync(d.scheduler, func() (*ReceivedPacket, error) {
		if d.conn == nil {
			return nil, nil
		}
		buf := make([]byte, MTU)
		// A deadline already reached fails the read before it is attempted,
		// so poll with a short one instead.
		_ = d.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, addr, err := d.conn.ReadFrom(buf)
		if err != nil {
			return nil, nil
		}
		if n < HeaderSize {
			return nil, nil
		}
		pkt, err := Decode(buf[:n])
		if err != nil {
			return nil, nil
		}
		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			return nil, nil
		}
		return &ReceivedPacket{Endpoint: EndpointFromUDPAddr(udpAddr), Packet: pkt}, nil
	})
}
