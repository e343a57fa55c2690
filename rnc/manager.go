package rnc

import (
	"sync"
	"time"

	"github.com/holy-bit/SoulLib/internal/obslog"
	"github.com/holy-bit/SoulLib/task"
)

const (
	defaultRetransmitInterval = 200 * time.Millisecond
	defaultMaxAttempts        = 5
)

// Manager fronts a datagram and a reliable-stream transport and enforces
// reliable-UDP semantics on selected channels (spec.md §4.6).
type Manager struct {
	mu sync.Mutex

	datagram  Transport
	stream    Transport
	scheduler *task.Scheduler
	logger    *obslog.Logger

	channels            map[channelKey]*ReliableChannelState
	reliabilityEnabled  map[uint16]bool
	retransmitInterval  time.Duration
	maxAttempts         int
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithLogger overrides the manager's logger (default obslog.L()).
func WithLogger(l *obslog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager builds a Manager fronting datagram and stream, dispatching
// retransmission jobs on scheduler.
func NewManager(scheduler *task.Scheduler, datagram, stream Transport, opts ...ManagerOption) *Manager {
	m := &Manager{
		datagram:           datagram,
		stream:             stream,
		scheduler:          scheduler,
		logger:             obslog.L(),
		channels:           make(map[channelKey]*ReliableChannelState),
		reliabilityEnabled: make(map[uint16]bool),
		retransmitInterval: defaultRetransmitInterval,
		maxAttempts:        defaultMaxAttempts,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// EnableReliability toggles reliable-datagram handling for channel.
func (m *Manager) EnableReliability(channel uint16, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reliabilityEnabled[channel] = enabled
}

// ConfigureRetransmission stores the per-manager retransmission defaults.
// maxAttempts is clamped to >= 1.
func (m *Manager) ConfigureRetransmission(interval time.Duration, maxAttempts int) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retransmitInterval = interval
	m.maxAttempts = maxAttempts
}

func (m *Manager) channelLocked(ep Endpoint, channel uint16) *ReliableChannelState {
	key := channelKey{endpoint: ep, channel: channel}
	ch, ok := m.channels[key]
	if !ok {
		ch = newReliableChannelState()
		m.channels[key] = ch
	}
	return ch
}

func (m *Manager) reliabilityEnabledFor(channel uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reliabilityEnabled[channel]
}

// Send routes p according to its guarantee and the channel's reliability
// configuration (spec.md §4.6 "Send").
func (m *Manager) Send(ep Endpoint, p Packet) *task.Task[struct{}] {
	if p.Header.Guarantee == Reliable {
		if m.reliabilityEnabledFor(p.Header.Channel) {
			return m.sendReliableDatagram(ep, p)
		}
		return m.stream.SendAsync(ep, p)
	}
	return m.datagram.SendAsync(ep, p)
}

// sendReliableDatagram implements spec.md §4.6's numbered send procedure.
func (m *Manager) sendReliableDatagram(ep Endpoint, p Packet) *task.Task[struct{}] {
	m.mu.Lock()
	ch := m.channelLocked(ep, p.Header.Channel)
	ch.NextOutgoingSequence++
	seq := ch.NextOutgoingSequence
	p.Header.Sequence = seq
	p.Header.Acknowledgment = ch.LastReceivedSequence
	p.Header.AcknowledgmentMask = ch.ReceivedMask
	ch.Pending[seq] = &PendingPacket{Endpoint: ep, Packet: p, LastSentTime: time.Now(), Attempts: 0}
	interval := m.retransmitInterval
	m.mu.Unlock()

	t := m.datagram.SendAsync(ep, p)
	m.scheduleRetransmit(ep, p.Header.Channel, seq, interval)
	return t
}

// scheduleRetransmit submits a worker job that sleeps for interval, then
// retries or drops the pending entry (spec.md §4.6 "Retransmission job").
func (m *Manager) scheduleRetransmit(ep Endpoint, channel uint16, seq uint32, interval time.Duration) {
	task.SubmitAsync(m.scheduler, func() (struct{}, error) {
		time.Sleep(interval)
		m.retransmit(ep, channel, seq)
		return struct{}{}, nil
	})
}

func (m *Manager) retransmit(ep Endpoint, channel uint16, seq uint32) {
	m.mu.Lock()
	ch := m.channelLocked(ep, channel)
	pending, ok := ch.Pending[seq]
	if !ok {
		m.mu.Unlock()
		return
	}
	pending.Attempts++
	if pending.Attempts >= m.maxAttempts {
		delete(ch.Pending, seq)
		m.mu.Unlock()
		m.logger.Debug().Int("attempts", pending.Attempts).Log("rnc: retransmission exhausted, dropping packet")
		return
	}
	pending.LastSentTime = time.Now()
	pending.Packet.Header.Acknowledgment = ch.LastReceivedSequence
	pending.Packet.Header.AcknowledgmentMask = ch.ReceivedMask
	resend := pending.Packet
	interval := m.retransmitInterval
	m.mu.Unlock()

	m.datagram.SendAsync(ep, resend)
	m.scheduleRetransmit(ep, channel, seq, interval)
}

// recordAck erases every pending entry on ep's channel whose sequence is
// covered by header's acknowledgment/acknowledgmentMask.
func (m *Manager) recordAck(ep Endpoint, header PacketHeader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channelLocked(ep, header.Channel)
	for seq := range ch.Pending {
		if acked(seq, header.Acknowledgment, header.AcknowledgmentMask) {
			delete(ch.Pending, seq)
		}
	}
}

// handleIncomingSequence applies the sequence-bit protocol and reports
// whether header.Sequence is a duplicate.
func (m *Manager) handleIncomingSequence(ep Endpoint, header PacketHeader) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channelLocked(ep, header.Channel)
	return updateSequence(ch, header.Sequence)
}

// maybeSendAck emits an unreliable ack-only packet if the channel has a
// pending acknowledgment to send.
func (m *Manager) maybeSendAck(ep Endpoint, channel uint16) {
	m.mu.Lock()
	ch := m.channelLocked(ep, channel)
	if !ch.PendingAck {
		m.mu.Unlock()
		return
	}
	ch.PendingAck = false
	ack := Packet{Header: PacketHeader{
		Acknowledgment:     ch.LastReceivedSequence,
		AcknowledgmentMask: ch.ReceivedMask,
		Guarantee:          Unreliable,
		Flags:              FlagAck,
		Channel:            channel,
	}}
	m.mu.Unlock()

	m.datagram.SendAsync(ep, ack)
}

// Receive implements spec.md §4.6's "Receive" procedure: poll the
// reliable-stream transport first, then the datagram transport, applying
// ack-tracking/dedup/ack-emission when the incoming channel has
// reliability enabled. It returns a nil *ReceivedPacket for ack-only or
// duplicate datagrams. The returned task is not queued on the scheduler:
// its body runs on the goroutine that first calls Get or Await, and only
// the transport polls it issues run on the scheduler's workers.
func (m *Manager) Receive() *task.Task[*ReceivedPacket] {
	return task.NewTask(func() (*ReceivedPacket, error) {
		if sp, err := m.stream.ReceiveAsync().Get(); err == nil && sp != nil {
			return sp, nil
		}

		dp, err := m.datagram.ReceiveAsync().Get()
		if err != nil || dp == nil {
			return nil, nil
		}

		header := dp.Packet.Header
		if !m.reliabilityEnabledFor(header.Channel) {
			return dp, nil
		}

		ackOnly := header.Flags&FlagAck != 0 && len(dp.Packet.Payload) == 0
		m.recordAck(dp.Endpoint, header)

		duplicate := false
		if !ackOnly {
			duplicate = m.handleIncomingSequence(dp.Endpoint, header)
			m.maybeSendAck(dp.Endpoint, header.Channel)
		}

		if ackOnly || duplicate {
			return nil, nil
		}
		return dp, nil
	})
}
