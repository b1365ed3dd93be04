// internal/reliable/reliable.go
//
// Sequence/ack sublayer for pushes that must arrive in order even when
// the transport reorders or drops frames. The sender keeps a pending
// table keyed by message id until an ack arrives; the receiver buffers
// out-of-order sequences and releases them contiguously.
package reliable

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxRetries is how many times an unacked message is resent.
	MaxRetries = 3
	// RetryInterval is the delay between resends.
	RetryInterval = 500 * time.Millisecond
)

// Sequencer issues messages on one stream. Each receiver expects its
// stream's sequences to start at 1 and stay contiguous, so a sender
// keeps one Sequencer per recipient.
type Sequencer struct {
	seq atomic.Uint64
}

// Next wraps payload in an envelope carrying the stream's next
// sequence number.
func (s *Sequencer) Next(payload string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sequence:  s.seq.Add(1),
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Message is the reliable envelope around an opaque payload.
type Message struct {
	ID        string `json:"id"`
	Sequence  uint64 `json:"sequence"`
	Payload   string `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Ack acknowledges one message by id.
type Ack struct {
	MessageID string `json:"message_id"`
}

// Pending is a sent-but-unacked message tracked by the sender.
type Pending struct {
	Message Message
	SentAt  time.Time
	Retries int
}

// Receiver tracks the next expected sequence and buffers gaps.
type Receiver struct {
	expected uint64
	buffer   map[uint64]Message
}

func NewReceiver() *Receiver {
	return &Receiver{expected: 1, buffer: make(map[uint64]Message)}
}

// Receive acks the message unconditionally and returns the messages
// that became deliverable in order. Sequences below the expected one
// are duplicates: acked again, never re-delivered.
func (r *Receiver) Receive(m Message) (Ack, []Message) {
	ack := Ack{MessageID: m.ID}

	if m.Sequence < r.expected {
		return ack, nil
	}
	if m.Sequence > r.expected {
		r.buffer[m.Sequence] = m
		return ack, nil
	}

	ordered := []Message{m}
	r.expected++
	for {
		buffered, ok := r.buffer[r.expected]
		if !ok {
			break
		}
		delete(r.buffer, r.expected)
		ordered = append(ordered, buffered)
		r.expected++
	}
	return ack, ordered
}

// Buffered reports how many future messages are waiting on a gap.
func (r *Receiver) Buffered() int { return len(r.buffer) }
