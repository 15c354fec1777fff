package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/api"
)

// Status is the load state of the dashboard
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of the controller state
type State struct {
	Data     *analytics.AdmissionAnalytics
	Loading  bool
	FromDate string
	ToDate   string
	Status   Status
}

// Controller owns the loaded snapshot and the selected date range, and
// derives the filtered trend series from them.
//
// A Load started while another is in flight cancels the earlier one; only the
// most recently started load may change state or clear the loading flag.
type Controller struct {
	fetcher api.Fetcher
	logger  *slog.Logger

	mu       sync.Mutex
	data     *analytics.AdmissionAnalytics
	loading  bool
	fromDate string
	toDate   string

	generation  uint64 // bumped by every Load
	dataVersion uint64 // bumped whenever data is replaced
	cancel      context.CancelFunc

	memo filterMemo
}

// filterMemo caches FilteredTrends for one (data, from, to) triple
type filterMemo struct {
	valid   bool
	version uint64
	from    string
	to      string
	result  []analytics.TrendPoint
}

// NewController creates a controller in the Loading state. A nil logger
// falls back to slog.Default().
func NewController(fetcher api.Fetcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		fetcher: fetcher,
		logger:  logger,
		loading: true,
	}
}

// Load fetches a fresh snapshot. On success the date bounds are reset to the
// first and last trend dates (left untouched when there are none); on failure
// the snapshot is discarded and the error is logged. Fetch errors are never
// returned; the resulting status is.
// A load superseded by a later one reports StatusLoading.
func (c *Controller) Load(ctx context.Context) (status Status) {
	loadCtx, gen := c.begin(ctx)
	defer func() { status = c.finish(gen) }()

	data, err := c.fetcher.FetchAdmissionAnalytics(loadCtx)
	c.apply(gen, data, err)

	return StatusLoading
}

// Cancel aborts the in-flight load, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	loadCtx, cancel := context.WithCancel(ctx)
	c.generation++
	c.cancel = cancel
	c.loading = true

	return loadCtx, c.generation
}

func (c *Controller) apply(gen uint64, data *analytics.AdmissionAnalytics, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("Discarding superseded analytics load", "generation", gen, "current", c.generation)
		return
	}

	if err == nil && data == nil {
		err = errors.New("fetcher returned no data")
	}

	if err != nil {
		c.logger.Error("Failed to fetch admission analytics", append([]any{"error", err}, errorAttrs(err)...)...)
		c.setData(nil)
		return
	}

	c.setData(data.Clone())
	if from, to, ok := data.DateBounds(); ok {
		c.fromDate = from
		c.toDate = to
	}

	c.logger.Info("Admission analytics loaded",
		"total_applicants", data.TotalApplicants,
		"programs", len(data.ApplicationsPerProgram),
		"trend_points", len(data.ApplicationTrends),
		"from", c.fromDate,
		"to", c.toDate)
}

// finish clears the loading flag for the current generation and returns the
// resulting status; superseded generations report StatusLoading
func (c *Controller) finish(gen uint64) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return StatusLoading
	}
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return c.statusLocked()
}

// setData replaces the snapshot; callers hold mu
func (c *Controller) setData(data *analytics.AdmissionAnalytics) {
	c.data = data
	c.dataVersion++
}

// SetFromDate sets the lower bound. No ordering check against the upper bound
// is made; an inverted range simply filters to nothing.
func (c *Controller) SetFromDate(d string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fromDate = d
}

// SetToDate sets the upper bound
func (c *Controller) SetToDate(d string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toDate = d
}

// FilteredTrends returns the trend points inside the inclusive date range.
// It is empty when no snapshot is loaded or either bound is unset.
func (c *Controller) FilteredTrends() []analytics.TrendPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTrends(c.filteredLocked())
}

func (c *Controller) filteredLocked() []analytics.TrendPoint {
	if c.memo.valid && c.memo.version == c.dataVersion && c.memo.from == c.fromDate && c.memo.to == c.toDate {
		return c.memo.result
	}

	result := []analytics.TrendPoint{}
	if c.data != nil {
		result = analytics.FilterTrends(c.data.ApplicationTrends, c.fromDate, c.toDate)
	}

	c.memo = filterMemo{
		valid:   true,
		version: c.dataVersion,
		from:    c.fromDate,
		to:      c.toDate,
		result:  result,
	}
	return result
}

// Data returns a copy of the loaded snapshot, or nil
func (c *Controller) Data() *analytics.AdmissionAnalytics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// Loading reports whether a fetch is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// FromDate returns the lower bound
func (c *Controller) FromDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fromDate
}

// ToDate returns the upper bound
func (c *Controller) ToDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toDate
}

// Status returns Loading while a fetch is in flight, then Loaded or Empty
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	switch {
	case c.loading:
		return StatusLoading
	case c.data != nil:
		return StatusLoaded
	default:
		return StatusEmpty
	}
}

// Snapshot returns a consistent copy of the whole state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Data:     c.data.Clone(),
		Loading:  c.loading,
		FromDate: c.fromDate,
		ToDate:   c.toDate,
		Status:   c.statusLocked(),
	}
}

func copyTrends(trends []analytics.TrendPoint) []analytics.TrendPoint {
	out := make([]analytics.TrendPoint, len(trends))
	copy(out, trends)
	return out
}

func errorAttrs(err error) []any {
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return []any{"kind", "network", "request_id", netErr.RequestID, "status_code", netErr.StatusCode}
	}
	var malformed *api.MalformedResponseError
	if errors.As(err, &malformed) {
		return []any{"kind", "malformed_response", "request_id", malformed.RequestID}
	}
	return []any{"kind", "unknown"}
}
