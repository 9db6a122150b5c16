package channels

import (
	"cmp"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/hotpath-go/hotpath/internal/collector"
	"github.com/hotpath-go/hotpath/internal/ring"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

type createdEvent struct {
	id         uint64
	source     string
	userLabel  string
	kind       Kind
	capacity   int
	typeName   string
	typeSize   uint64
}

type sentEvent struct {
	id      uint64
	payload *string
	tid     int64
}

type receivedEvent struct {
	id      uint64
	payload *string
	tid     int64
}

type closedEvent struct{ id uint64 }
type notifiedEvent struct{ id uint64 }

type queryRequest struct {
	reply chan snapshot.ChannelsSnapshot
}

// collectorWorker owns the channel stats map; the same single-writer
// skeleton as internal/functions.Worker, generalized to every channel/
// stream/future collector.
type collectorWorker struct {
	start      time.Time
	logsLimit  int
	ingestCh   chan any
	queryCh    chan queryRequest
	iterTrack  *collector.IterTracker
}

func newCollectorWorker(logsLimit int) *collectorWorker {
	return &collectorWorker{
		start:     time.Now(),
		logsLimit: logsLimit,
		ingestCh:  make(chan any, 4096),
		queryCh:   make(chan queryRequest, 16),
		iterTrack: collector.NewIterTracker(),
	}
}

func (w *collectorWorker) run() {
	stats := make(map[uint64]*channelStats)

	drain := func() {
		for {
			select {
			case e := <-w.ingestCh:
				w.apply(stats, e)
			default:
				return
			}
		}
	}

	for {
		select {
		case e := <-w.ingestCh:
			w.apply(stats, e)
		case q := <-w.queryCh:
			drain()
			q.reply <- buildSnapshot(stats, time.Since(w.start).Nanoseconds())
		}
	}
}

func (w *collectorWorker) apply(stats map[uint64]*channelStats, e any) {
	switch ev := e.(type) {
	case createdEvent:
		iter := w.iterTrack.Next(ev.source)
		label, hasCustomLabel := collector.Label(ev.userLabel, ev.source, iter)
		stats[ev.id] = &channelStats{
			id:             ev.id,
			source:         ev.source,
			label:          label,
			hasCustomLabel: hasCustomLabel,
			iter:           iter,
			kind:           ev.kind,
			capacity:       ev.capacity,
			typeName:       ev.typeName,
			typeSize:       ev.typeSize,
			sentLog:        ring.New[logEntry](w.logsLimit),
			receivedLog:    ring.New[logEntry](w.logsLimit),
		}
	case sentEvent:
		if cs, ok := stats[ev.id]; ok {
			cs.sent++
			cs.sentLog.Push(logEntry{index: cs.sent, elapsedNs: time.Since(w.start).Nanoseconds(), payload: ev.payload, threadID: ev.tid})
			if cs.kind != Unbounded && cs.capacity > 0 && int(cs.sent-cs.received) >= cs.capacity {
				cs.state = Full
			}
		}
	case receivedEvent:
		if cs, ok := stats[ev.id]; ok {
			cs.received++
			cs.receivedLog.Push(logEntry{index: cs.received, elapsedNs: time.Since(w.start).Nanoseconds(), payload: ev.payload, threadID: ev.tid})
			if cs.state == Full && int(cs.sent-cs.received) < cs.capacity {
				cs.state = Active
			}
		}
	case closedEvent:
		if cs, ok := stats[ev.id]; ok {
			cs.state = Closed
		}
	case notifiedEvent:
		if cs, ok := stats[ev.id]; ok {
			cs.state = Notified
		}
	}
}

func buildSnapshot(stats map[uint64]*channelStats, elapsedNs int64) snapshot.ChannelsSnapshot {
	rows := make([]snapshot.ChannelRow, 0, len(stats))
	for _, cs := range stats {
		rows = append(rows, snapshot.ChannelRow{
			ID:             cs.id,
			Source:         cs.source,
			Label:          cs.label,
			HasCustomLabel: cs.hasCustomLabel,
			ChannelType:    cs.kind.String(),
			State:          cs.state.String(),
			Sent:           cs.sent,
			Received:       cs.received,
			Queued:         cs.queued(),
			TypeName:       cs.typeName,
			TypeSize:       cs.typeSize,
			QueuedBytes:    cs.queued() * cs.typeSize,
			Iter:           cs.iter,
		})
	}
	sortRows(rows)
	return snapshot.ChannelsSnapshot{CurrentElapsedNs: elapsedNs, Channels: rows}
}

// sortRows implements the snapshot sort order: user-labeled rows first
// (label ascending, then iter), then auto-labeled rows by source
// ascending then iter.
func sortRows(rows []snapshot.ChannelRow) {
	labeled := rows[:0:0]
	auto := rows[:0:0]
	for _, r := range rows {
		if r.HasCustomLabel {
			labeled = append(labeled, r)
		} else {
			auto = append(auto, r)
		}
	}
	slices.SortFunc(labeled, func(a, b snapshot.ChannelRow) int {
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	slices.SortFunc(auto, func(a, b snapshot.ChannelRow) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	copy(rows, append(labeled, auto...))
}

var (
	globalOnce    sync.Once
	globalWorker  *collectorWorker
	globalIDGen   collector.IDGenerator
)

func worker() *collectorWorker {
	globalOnce.Do(func() {
		globalWorker = newCollectorWorker(envLogsLimit())
		go globalWorker.run()
	})
	return globalWorker
}

func envLogsLimit() int {
	if v, ok := os.LookupEnv("HOTPATH_LOGS_LIMIT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 50
}

// Snapshot answers a live query against the process-wide channel collector.
func Snapshot() snapshot.ChannelsSnapshot {
	reply := make(chan snapshot.ChannelsSnapshot, 1)
	worker().queryCh <- queryRequest{reply: reply}
	return <-reply
}
