package rnc

// seqDelta returns a-b as a wrap-safe signed difference over the 32-bit
// sequence space (spec.md §4.6: "Wrap-safe comparison treats the 32-bit
// sequence space as circular (signed difference)").
func seqDelta(a, b uint32) int32 {
	return int32(a - b)
}

// updateSequence applies the sequence-bit protocol from spec.md §4.6 to a
// channel's receive-side bookkeeping for an incoming sequence. It returns
// whether the incoming sequence is a duplicate, and sets ch.PendingAck
// whenever the sequence is newly recorded.
func updateSequence(ch *ReliableChannelState, incoming uint32) (duplicate bool) {
	if !ch.HasReceived {
		ch.LastReceivedSequence = incoming
		ch.ReceivedMask = 0
		ch.HasReceived = true
		ch.PendingAck = true
		return false
	}

	delta := seqDelta(incoming, ch.LastReceivedSequence)
	if delta > 0 {
		if delta >= 32 {
			ch.ReceivedMask = 0
		} else {
			// The previous LastReceivedSequence is now delta-1 slots behind
			// the new one; fold its bit in alongside the shift so a later
			// re-delivery of it is still recognized as a duplicate.
			ch.ReceivedMask = (ch.ReceivedMask << uint(delta)) | (1 << uint(delta-1))
		}
		ch.LastReceivedSequence = incoming
		ch.PendingAck = true
		return false
	}

	back := -delta
	if back == 0 {
		return true
	}
	if back > 32 {
		return true
	}
	bit := uint32(1) << uint(back-1)
	if ch.ReceivedMask&bit != 0 {
		return true
	}
	ch.ReceivedMask |= bit
	ch.PendingAck = true
	return false
}

// acked reports whether seq is covered by an incoming (ack, mask) pair,
// per spec.md §4.6's "Ack-covers-sequence test".
func acked(seq, ack, mask uint32) bool {
	if seq == ack {
		return true
	}
	delta := seqDelta(ack, seq)
	if delta < 1 || delta > 32 {
		return false
	}
	bit := uint32(1) << uint(delta-1)
	return mask&bit != 0
}
