// Package snapshot defines the immutable, plain-value types every collector
// (L3 functions, L4 channels/streams/futures) converts its live state into on
// query, plus the small set of pure helpers (percentile ordering, basis-point
// percentages) shared by all of them. Collectors build these values under
// their own exclusive ownership and hand them to callers as deep copies; this
// package owns only the shapes and the arithmetic, never the state itself.
package snapshot

// Percentiles is the fixed set of percentiles a function metrics row reports,
// shared by every snapshot request so column ordering is stable across calls.
var Percentiles = []float64{50, 90, 95, 99}

// BasisPoints converts part/whole into a 0..10000 integer (1% == 100),
// rounding to the nearest basis point. Returns 0 if whole is zero.
func BasisPoints(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	bp := part / whole * 10000
	if bp < 0 {
		bp = 0
	}
	return int(bp + 0.5)
}

// FunctionsSnapshot is the functions-query response shape.
type FunctionsSnapshot struct {
	ProfilingMode  string                  `json:"profiling_mode"`
	TotalElapsedNs int64                   `json:"total_elapsed_ns"`
	Description    string                  `json:"description"`
	CallerName     string                  `json:"caller_name"`
	Percentiles    []float64               `json:"percentiles"`
	Data           map[string][]FunctionRow `json:"data"`
}

// FunctionRow is one ordered row: [calls, avg, p..., total, percent_total].
// Values are *float64/*int so unsupported/cross-thread rows can render
// explicit JSON nulls instead of zeroes.
type FunctionRow struct {
	Name         string     `json:"name"`
	Calls        uint64     `json:"calls"`
	Avg          *float64   `json:"avg"`
	Percentiles  []*float64 `json:"percentiles"`
	Total        *float64   `json:"total"`
	PercentTotal *int       `json:"percent_total"`
	Unsupported  bool       `json:"unsupported,omitempty"`
	CrossThread  bool       `json:"cross_thread,omitempty"`
	Wrapper      bool       `json:"wrapper,omitempty"`
}

// FunctionLogsSnapshot answers a per-function log query.
type FunctionLogsSnapshot struct {
	FunctionName string          `json:"function_name"`
	Count        uint64          `json:"count"`
	Logs         []FunctionLogEntry `json:"logs"`
}

// FunctionLogEntry is one ring entry: value/alloc_count/result are nil when
// the call was cross-thread or unsupported-async.
type FunctionLogEntry struct {
	Value      *float64 `json:"value"`
	ElapsedNs  int64    `json:"elapsed_ns"`
	AllocCount *uint64  `json:"alloc_count"`
	Tid        int64    `json:"tid"`
	Result     *string  `json:"result"`
}

// ChannelsSnapshot is the channel-query response shape.
type ChannelsSnapshot struct {
	CurrentElapsedNs int64         `json:"current_elapsed_ns"`
	Channels         []ChannelRow `json:"channels"`
}

type ChannelRow struct {
	ID             uint64 `json:"id"`
	Source         string `json:"source"`
	Label          string `json:"label"`
	HasCustomLabel bool   `json:"has_custom_label"`
	ChannelType    string `json:"channel_type"`
	State          string `json:"state"`
	Sent           uint64 `json:"sent"`
	Received       uint64 `json:"received"`
	Queued         uint64 `json:"queued"`
	TypeName       string `json:"type_name"`
	TypeSize       uint64 `json:"type_size"`
	QueuedBytes    uint64 `json:"queued_bytes"`
	Iter           int    `json:"iter"`
}

// StreamsSnapshot is the stream-query response shape.
type StreamsSnapshot struct {
	CurrentElapsedNs int64        `json:"current_elapsed_ns"`
	Streams          []StreamRow `json:"streams"`
}

type StreamRow struct {
	ID            uint64 `json:"id"`
	Source        string `json:"source"`
	Label         string `json:"label"`
	HasCustomLabel bool  `json:"has_custom_label"`
	State         string `json:"state"`
	ItemsYielded  uint64 `json:"items_yielded"`
	TypeName      string `json:"type_name"`
	Iter          int    `json:"iter"`
}

// FuturesSnapshot is the future-query response shape.
type FuturesSnapshot struct {
	CurrentElapsedNs int64        `json:"current_elapsed_ns"`
	Futures          []FutureRow `json:"futures"`
}

type FutureRow struct {
	ID             uint64          `json:"id"`
	Source         string          `json:"source"`
	Label          string          `json:"label"`
	HasCustomLabel bool            `json:"has_custom_label"`
	TotalPolls     uint64          `json:"total_polls"`
	Iter           int             `json:"iter"`
	Calls          []FutureCallRow `json:"calls"`
}

type FutureCallRow struct {
	CallID    uint64  `json:"call_id"`
	State     string  `json:"state"`
	PollCount uint64  `json:"poll_count"`
	Result    *string `json:"result"`
}
