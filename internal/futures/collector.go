package futures

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
}

type callStartedEvent struct {
	id     uint64
	callID uint64
}

type pollEvent struct {
	id        uint64
	callID    uint64
	pollCount uint64
}

type doneEvent struct {
	id      uint64
	callID  uint64
	state   State
	result  *string
}

type queryRequest struct {
	reply chan snapshot.FuturesSnapshot
}

// collectorWorker owns the future stats map; the same single-writer
// skeleton as internal/functions.Worker and the other L4 collectors.
type collectorWorker struct {
	start     time.Time
	callsCap  int
	ingestCh  chan any
	queryCh   chan queryRequest
	iterTrack *collector.IterTracker
}

func newCollectorWorker(callsCap int) *collectorWorker {
	return &collectorWorker{
		start:     time.Now(),
		callsCap:  callsCap,
		ingestCh:  make(chan any, 4096),
		queryCh:   make(chan queryRequest, 16),
		iterTrack: collector.NewIterTracker(),
	}
}

func (w *collectorWorker) run() {
	stats := make(map[uint64]*futureStats)

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

func (w *collectorWorker) apply(stats map[uint64]*futureStats, e any) {
	switch ev := e.(type) {
	case createdEvent:
		iter := w.iterTrack.Next(ev.source)
		label, hasCustomLabel := collector.Label(ev.userLabel, ev.source, iter)
		stats[ev.id] = &futureStats{
			id:             ev.id,
			source:         ev.source,
			label:          label,
			hasCustomLabel: hasCustomLabel,
			iter:           iter,
			calls:          ring.New[*callRecord](w.callsCap),
			activeCalls:    make(map[uint64]*callRecord),
		}
	case callStartedEvent:
		if fs, ok := stats[ev.id]; ok {
			rec := &callRecord{callID: ev.callID, state: Pending}
			fs.calls.Push(rec)
			fs.activeCalls[ev.callID] = rec
		}
	case pollEvent:
		if fs, ok := stats[ev.id]; ok {
			if rec, ok := fs.activeCalls[ev.callID]; ok {
				rec.pollCount = ev.pollCount
				fs.totalPolls++
				// The first poll of a call always stays Pending -- there is no
				// prior poll for it to have been suspended since, so only the
				// second and later polls can observe a parked, resumed call.
				if rec.state == Pending && ev.pollCount > 1 {
					rec.state = Suspended
				}
			}
		}
	case doneEvent:
		if fs, ok := stats[ev.id]; ok {
			if rec, ok := fs.activeCalls[ev.callID]; ok {
				rec.state = ev.state
				rec.result = ev.result
				delete(fs.activeCalls, ev.callID)
			}
		}
	}
}

func buildSnapshot(stats map[uint64]*futureStats, elapsedNs int64) snapshot.FuturesSnapshot {
	rows := make([]snapshot.FutureRow, 0, len(stats))
	for _, fs := range stats {
		calls := fs.calls.Slice()
		callRows := make([]snapshot.FutureCallRow, 0, len(calls))
		for _, c := range calls {
			callRows = append(callRows, snapshot.FutureCallRow{
				CallID:    c.callID,
				State:     c.state.String(),
				PollCount: c.pollCount,
				Result:    c.result,
			})
		}
		rows = append(rows, snapshot.FutureRow{
			ID:             fs.id,
			Source:         fs.source,
			Label:          fs.label,
			HasCustomLabel: fs.hasCustomLabel,
			TotalPolls:     fs.totalPolls,
			Iter:           fs.iter,
			Calls:          callRows,
		})
	}
	sortRows(rows)
	return snapshot.FuturesSnapshot{CurrentElapsedNs: elapsedNs, Futures: rows}
}

// sortRows implements the same user-labeled-first, then auto-labeled-by-
// source sort order as the other L4 collectors.
func sortRows(rows []snapshot.FutureRow) {
	labeled := rows[:0:0]
	auto := rows[:0:0]
	for _, r := range rows {
		if r.HasCustomLabel {
			labeled = append(labeled, r)
		} else {
			auto = append(auto, r)
		}
	}
	slices.SortFunc(labeled, func(a, b snapshot.FutureRow) int {
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	slices.SortFunc(auto, func(a, b snapshot.FutureRow) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Iter, b.Iter)
	})
	copy(rows, append(labeled, auto...))
}

var (
	globalOnce     sync.Once
	globalW        *collectorWorker
	globalIDGen    collector.IDGenerator
	globalCallIDs  collector.IDGenerator
)

func worker() *collectorWorker {
	globalOnce.Do(func() {
		globalW = newCollectorWorker(envCallsCap())
		go globalW.run()
	})
	return globalW
}

func envCallsCap() int {
	if v, ok := os.LookupEnv("HOTPATH_LOGS_LIMIT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 50
}

// Snapshot answers a live query against the process-wide future collector.
func Snapshot() snapshot.FuturesSnapshot {
	reply := make(chan snapshot.FuturesSnapshot, 1)
	worker().queryCh <- queryRequest{reply: reply}
	return <-reply
}
