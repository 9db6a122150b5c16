package channels

import (
	"fmt"
	"unsafe"

	"github.com/hotpath-go/hotpath/internal/tid"
)

// Options configures a newly wrapped channel.
type Options struct {
	Label      string
	LogResults bool
	TypeName   string
}

// Channel is an instrumented channel: callers Send into it and Recv from
// it exactly as they would a native chan, while a background goroutine
// proxies every value through a secondary intermediate queue, emitting
// Sent then Received collector events around the hop.
type Channel[T any] struct {
	id       uint64
	producer *queue[T]
	consumer *queue[T]
	opts     Options
}

// New wraps a new instrumented channel of the given kind. Bounded and
// Oneshot channels require an explicit positive capacity (construction
// panics otherwise); Unbounded channels ignore capacity. source should be
// a "file:line" string identifying the call site.
func New[T any](kind Kind, capacity int, source string, opts Options) *Channel[T] {
	if (kind == Bounded || kind == Oneshot) && capacity <= 0 {
		panic(fmt.Sprintf("hotpath: channel of kind %s requires an explicit positive capacity", kind))
	}

	id := globalIDGen.Next()
	proxyCapacity := 1
	producerCapacity := capacity
	if kind == Unbounded {
		proxyCapacity = 0
		producerCapacity = 0
	}

	c := &Channel[T]{
		id:       id,
		producer: newQueue[T](producerCapacity),
		consumer: newQueue[T](proxyCapacity),
		opts:     opts,
	}

	typeName := opts.TypeName
	if typeName == "" {
		typeName = fmt.Sprintf("%T", *new(T))
	}

	worker().ingestCh <- createdEvent{
		id:        id,
		source:    source,
		userLabel: opts.Label,
		kind:      kind,
		capacity:  capacity,
		typeName:  typeName,
		typeSize:  uint64(unsafe.Sizeof(*new(T))),
	}

	go c.run()
	return c
}

// run is the forwarding task: relay every value from the producer queue to
// the consumer queue, emitting Sent right before the hand-off and Received
// right after, so a Received observer always saw the value cross the proxy
// boundary.
func (c *Channel[T]) run() {
	for {
		v, ok := c.producer.pop()
		if !ok {
			c.consumer.close()
			worker().ingestCh <- closedEvent{id: c.id}
			return
		}
		payload := c.stringify(v)
		worker().ingestCh <- sentEvent{id: c.id, payload: payload, tid: tid.OSThread()}
		c.consumer.push(v)
		worker().ingestCh <- receivedEvent{id: c.id, payload: payload, tid: tid.OSThread()}
	}
}

func (c *Channel[T]) stringify(v T) *string {
	if !c.opts.LogResults {
		return nil
	}
	s := fmt.Sprintf("%+v", v)
	return &s
}

// Send enqueues v, blocking if the channel is a full bounded/oneshot
// channel.
func (c *Channel[T]) Send(v T) {
	c.producer.push(v)
}

// Recv blocks until a value is available or the channel is closed (in
// which case ok is false).
func (c *Channel[T]) Recv() (v T, ok bool) {
	return c.consumer.pop()
}

// Close signals no further sends will occur. The forwarding goroutine
// drains any already-sent values before marking the channel Closed.
func (c *Channel[T]) Close() {
	c.producer.close()
}

// MarkNotified records the oneshot success path's extra terminal state.
func (c *Channel[T]) MarkNotified() {
	worker().ingestCh <- notifiedEvent{id: c.id}
}
