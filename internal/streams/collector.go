package streams

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
	id        uint64
	source    string
	userLabel string
	typeName  string
}

type yieldedEvent struct {
	id      uint64
	payload *string
}

type exhaustedEvent struct{ id uint64 }
type cancelledEvent struct{ id uint64 }

type queryRequest struct {
	reply chan snapshot.StreamsSnapshot
}

// collectorWorker owns the stream stats map; the same single-writer
// skeleton as internal/functions.Worker and internal/channels.collectorWorker.
type collectorWorker struct {
	start     time.Time
	logsLimit int
	ingestCh  chan any
	queryCh   chan queryRequest
	iterTrack *collector.IterTracker
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
	stats := make(map[uint64]*streamStats)

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

func (w *collectorWorker) apply(stats map[uint64]*streamStats, e any) {
	switch ev := e.(type) {
	case createdEvent:
		iter := w.iterTrack.Next(ev.source)
		label, hasCustomLabel := collector.Label(ev.userLabel, ev.source, iter)
		stats[ev.id] = &streamStats{
			id:             ev.id,
			source:         ev.source,
			label:          label,
			hasCustomLabel: hasCustomLabel,
			iter:           iter,
			typeName:       ev.typeName,
			yieldLog:       ring.New[logEntry](w.logsLimit),
		}
	case yieldedEvent:
		if ss, ok := stats[ev.id]; ok {
			ss.itemsYielded++
			ss.yieldLog.Push(logEntry{index: ss.itemsYielded, elapsedNs: time.Since(w.start).Nanoseconds(), payload: ev.payload})
		}
	case exhaustedEvent:
		if ss, ok := stats[ev.id]; ok {
			ss.state = Exhausted
		}
	case cancelledEvent:
		if ss, ok := stats[ev.id]; ok {
			ss.state = Cancelled
		}
	}
}

func buildSnapshot(stats map[uint64]*streamStats, elapsedNs int64) snapshot.StreamsSnapshot {
	rows := make([]snapshot.StreamRow, 0, len(stats))
	for _, ss := range stats {
		rows = append(rows, snapshot.StreamRow{
			ID:             ss.id,
			Source:         ss.source,
			Label:          ss.label,
			HasCustomLabel: ss.hasCustomLabel,
			State:          ss.state.String(),
			ItemsYielded:   ss.itemsYielded,
			TypeName:       ss.typeName,
			Iter:           ss.iter,
		})
	}
	sortRows(rows)
	return snapshot.StreamsSnapshot{CurrentElapsedNs: elapsedNs, Streams: rows}
}

// sortRows implements the same user-labeled-first, then auto-labeled-by-
// source sort order as internal/channels.sortRows.
func sortRows(rows []snapshot.StreamRow) {
	labeled := rows[:0:0]
	auto := rows[:0:0]
	for _, r := range rows {
		if r.HasCustomLabel {
			labeled = append(labeled, r)
		} else {
			auto = append(auto, r)
		}
	}
	slices.SortFunc(labeled, func(a, b snapshot.StreamRow) int {
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	slices.SortFunc(auto, func(a, b snapshot.StreamRow) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	copy(rows, append(labeled, auto...))
}

var (
	globalOnce  sync.Once
	globalW     *collectorWorker
	globalIDGen collector.IDGenerator
)

func worker() *collectorWorker {
	globalOnce.Do(func() {
		globalW = newCollectorWorker(envLogsLimit())
		go globalW.run()
	})
	return globalW
}

func envLogsLimit() int {
	if v, ok := os.LookupEnv("HOTPATH_LOGS_LIMIT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 50
}

// Snapshot answers a live query against the process-wide stream collector.
func Snapshot() snapshot.StreamsSnapshot {
	reply := make(chan snapshot.StreamsSnapshot, 1)
	worker().queryCh <- queryRequest{reply: reply}
	return <-reply
}
