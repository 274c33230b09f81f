package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultInputDebounce = 500 * time.Millisecond
	defaultSlowLoad      = 5 * time.Second
)

// Config tunes tracker behavior. Zero values select defaults.
type Config struct {
	MaxBreadcrumbs    int
	InputDebounce     time.Duration
	SlowLoadThreshold time.Duration
	Logger            *slog.Logger
}

// Tracker is the client-side instrumentation layer: it maintains a bounded
// breadcrumb trail, assembles error envelopes with a context snapshot, and
// ships them through a delivery sink with offline queuing.
//
// Construct one Tracker per page/process lifetime at the composition root and
// inject it. There is no package-level singleton; Init is an explicit,
// idempotent lifecycle step and Teardown restores every installed hook.
//
// Concurrency: all state is guarded by one mutex; breadcrumb appends are
// synchronous and cheap, deliveries run on spawned goroutines so no hook ever
// blocks on the network.
type Tracker struct {
	mu sync.Mutex

	host Host
	sink Sink
	log  *slog.Logger

	crumbs        *ring
	inputDebounce time.Duration
	slowLoad      time.Duration

	initialized bool
	online      bool

	// queue is the offline retry queue, oldest first. Deliberately unbounded;
	// see DESIGN.md for the open question on capping it.
	queue []TrackedError

	userID string
	extra  map[string]any

	lastInput time.Time
	restores  []func()

	// clock and spawn are injectable for deterministic tests.
	clock func() time.Time
	spawn func(func())
}

// New builds a Tracker. host may be nil, in which case Init is a no-op and
// every Record/Capture call is silently dropped (non-instrumentable runtime).
func New(host Host, sink Sink, cfg Config) *Tracker {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	debounce := cfg.InputDebounce
	if debounce <= 0 {
		debounce = defaultInputDebounce
	}
	slow := cfg.SlowLoadThreshold
	if slow <= 0 {
		slow = defaultSlowLoad
	}
	return &Tracker{
		host:          host,
		sink:          sink,
		log:           log,
		crumbs:        newRing(cfg.MaxBreadcrumbs),
		inputDebounce: debounce,
		slowLoad:      slow,
		extra:         make(map[string]any),
		clock:         time.Now,
		spawn:         func(f func()) { go f() },
	}
}

/* ===================== LIFECYCLE ===================== */

// Init activates the tracker once per lifetime. Calling it again, or calling
// it with no host, is a no-op.
func (t *Tracker) Init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized || t.host == nil {
		return
	}
	t.initialized = true
	t.online = t.host.Online()
	t.appendLocked(CategoryNavigation, t.host.URL(), nil)
}

// InstallDefaultTransport wraps http.DefaultTransport with the observing
// transport and returns a restore function. The restore also runs on Teardown.
func (t *Tracker) InstallDefaultTransport() func() {
	prev := http.DefaultTransport
	http.DefaultTransport = t.WrapTransport(prev)
	restore := func() { http.DefaultTransport = prev }
	t.addRestore(restore)
	return restore
}

// InstallDefaultLogger wraps the process default slog handler with the
// console-observing handler and returns a restore function.
func (t *Tracker) InstallDefaultLogger() func() {
	prev := slog.Default()
	slog.SetDefault(slog.New(t.LogHandler(prev.Handler())))
	restore := func() { slog.SetDefault(prev) }
	t.addRestore(restore)
	return restore
}

func (t *Tracker) addRestore(f func()) {
	t.mu.Lock()
	t.restores = append(t.restores, f)
	t.mu.Unlock()
}

// Teardown restores installed hooks (newest first) and deactivates the
// tracker so tests can install/uninstall without polluting global state.
func (t *Tracker) Teardown() {
	t.mu.Lock()
	restores := t.restores
	t.restores = nil
	t.initialized = false
	t.mu.Unlock()

	for i := len(restores) - 1; i >= 0; i-- {
		restores[i]()
	}
}

/* ===================== BREADCRUMBS ===================== */

// AddBreadcrumb appends one entry, evicting the oldest once the buffer is full.
func (t *Tracker) AddBreadcrumb(category BreadcrumbCategory, message string, data map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return
	}
	t.appendLocked(category, message, data)
}

func (t *Tracker) appendLocked(category BreadcrumbCategory, message string, data map[string]any) {
	t.crumbs.append(Breadcrumb{
		Timestamp: t.clock().UTC(),
		Category:  category,
		Message:   message,
		Data:      data,
	})
}

// RecordNavigation notes a location change.
func (t *Tracker) RecordNavigation(url string) {
	t.AddBreadcrumb(CategoryNavigation, url, nil)
}

// RecordClick notes a pointer interaction. Element text is truncated so a
// single verbose element cannot bloat the trail.
func (t *Tracker) RecordClick(tag, id, class, text string) {
	const maxText = 50
	if len(text) > maxText {
		text = text[:maxText]
	}
	data := map[string]any{"tag": tag}
	if id != "" {
		data["id"] = id
	}
	if class != "" {
		data["class"] = class
	}
	if text != "" {
		data["text"] = text
	}
	t.AddBreadcrumb(CategoryInteraction, "click", data)
}

// RecordFormSubmit notes a form submission.
func (t *Tracker) RecordFormSubmit(id, action, method string) {
	t.AddBreadcrumb(CategoryInteraction, "form submit", map[string]any{
		"id": id, "action": action, "method": method,
	})
}

// RecordInputChange notes a field edit, debounced so rapid typing does not
// flood the buffer.
func (t *Tracker) RecordInputChange(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return
	}
	now := t.clock()
	if now.Sub(t.lastInput) < t.inputDebounce {
		return
	}
	t.lastInput = now
	t.appendLocked(CategoryInteraction, "input change", map[string]any{"field": field})
}

// RecordVisibility notes a tab foreground/background transition.
func (t *Tracker) RecordVisibility(visible bool) {
	state := "hidden"
	if visible {
		state = "visible"
	}
	t.AddBreadcrumb(CategoryCustom, "visibility "+state, nil)
}

// RecordLongTask notes a long-running task without synthesizing an error.
func (t *Tracker) RecordLongTask(d time.Duration) {
	t.AddBreadcrumb(CategoryCustom, "long task", map[string]any{"duration_ms": d.Milliseconds()})
}

// RecordPageLoad notes the initial load duration. Loads beyond the slow
// threshold additionally synthesize a performance-issue capture.
func (t *Tracker) RecordPageLoad(d time.Duration) {
	t.AddBreadcrumb(CategoryCustom, "page load", map[string]any{"duration_ms": d.Milliseconds()})
	if d > t.slowLoad {
		t.CaptureException(fmt.Sprintf("slow page load: %dms", d.Milliseconds()), "", ErrorTypePerformance, map[string]any{
			"duration_ms": d.Milliseconds(),
		})
	}
}

// ClearBreadcrumbs empties the trail. Local side effect only.
func (t *Tracker) ClearBreadcrumbs() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.crumbs.clear()
}

// BreadcrumbCount reports the current trail length.
func (t *Tracker) BreadcrumbCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.crumbs.len()
}

/* ===================== IDENTITY / EXTRAS ===================== */

// SetUser attaches a user identifier to future captures. No network call.
func (t *Tracker) SetUser(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userID = userID
	if t.initialized {
		t.appendLocked(CategoryCustom, "user set", map[string]any{"user_id": userID})
	}
}

// SetExtra attaches a key to the custom data of future captures. No network call.
func (t *Tracker) SetExtra(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extra[key] = value
}

/* ===================== CAPTURE PIPELINE ===================== */

// CaptureMessage always records a breadcrumb; only level "error" additionally
// runs the capture pipeline.
func (t *Tracker) CaptureMessage(text, level string, extra map[string]any) {
	t.AddBreadcrumb(CategoryCustom, text, map[string]any{"level": level})
	if level == "error" {
		t.CaptureException(text, "", ErrorTypeManual, extra)
	}
}

// CaptureError captures a Go error through the manual path.
func (t *Tracker) CaptureError(err error, extra map[string]any) {
	if err == nil {
		return
	}
	t.CaptureException(err.Error(), "", ErrorTypeManual, extra)
}

// CaptureRejection is called by host glue for unhandled promise rejections.
func (t *Tracker) CaptureRejection(reason, stack string) {
	t.CaptureException(reason, stack, ErrorTypeRejection, nil)
}

// CaptureUncaught is called by host glue for uncaught script errors.
func (t *Tracker) CaptureUncaught(message, source string, line, col int, stack string) {
	t.CaptureException(message, stack, ErrorTypeUncaught, map[string]any{
		"source": source, "line": line, "col": col,
	})
}

// ObservePanic captures a panic value with its stack and re-raises it, so
// instrumentation observes the crash without altering control flow. Use with
// defer.
func (t *Tracker) ObservePanic() {
	if p := recover(); p != nil {
		t.CaptureException(fmt.Sprint(p), string(debug.Stack()), ErrorTypeUncaught, nil)
		panic(p)
	}
}

// CaptureException assembles an envelope from the current breadcrumb snapshot
// and page context, then hands it to the delivery path. Fire-and-forget: the
// calling hook never blocks on the network and never sees an error.
func (t *Tracker) CaptureException(message, stack, errType string, custom map[string]any) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return
	}
	crumbs := t.crumbs.snapshot()
	userID := t.userID
	merged := make(map[string]any, len(t.extra)+len(custom))
	for k, v := range t.extra {
		merged[k] = v
	}
	for k, v := range custom {
		merged[k] = v
	}
	t.mu.Unlock()

	if len(merged) == 0 {
		merged = nil
	}
	env := TrackedError{
		Message:     message,
		Stack:       stack,
		ErrorType:   errType,
		Context:     t.pageContext(userID),
		Breadcrumbs: crumbs,
		Custom:      merged,
	}
	t.dispatch(env)
}

func (t *Tracker) pageContext(userID string) PageContext {
	cls := Classify(t.host.UserAgent())
	w, h := t.host.Viewport()
	ctx := PageContext{
		URL:            t.host.URL(),
		UserAgent:      t.host.UserAgent(),
		Timestamp:      t.clock().UTC(),
		Device:         cls.Device,
		OS:             cls.OS,
		Browser:        cls.Browser,
		ViewportWidth:  w,
		ViewportHeight: h,
		NetworkType:    t.host.NetworkType(),
		UserID:         userID,
	}
	if load, ok := t.host.PageLoad(); ok {
		ctx.PageLoadMS = load.Milliseconds()
	}
	return ctx
}

/* ===================== DELIVERY ===================== */

// dispatch sends the envelope if online, otherwise queues it. A failed send
// is queued for retry. Runs on a spawned goroutine.
func (t *Tracker) dispatch(env TrackedError) {
	t.spawn(func() {
		t.mu.Lock()
		online := t.online
		t.mu.Unlock()

		if !online || t.sink == nil {
			t.enqueue(env)
			return
		}
		if err := t.sink.Deliver(context.Background(), env); err != nil {
			// Debug level on purpose: the console hook does not observe Debug,
			// so a failing sink cannot feed back into capture.
			t.log.Debug("tracker delivery failed, queued", "err", err)
			t.enqueue(env)
		}
	})
}

func (t *Tracker) enqueue(env TrackedError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, env)
}

// SetOnline is called by host glue on connectivity transitions. Coming back
// online triggers a queue flush.
func (t *Tracker) SetOnline(online bool) {
	t.mu.Lock()
	was := t.online
	t.online = online
	if t.initialized && online != was {
		state := "offline"
		if online {
			state = "online"
		}
		t.appendLocked(CategoryCustom, "connectivity "+state, nil)
	}
	t.mu.Unlock()

	if online && !was {
		t.spawn(func() { t.Flush(context.Background()) })
	}
}

// Flush drains the retry queue sequentially, oldest first, preserving
// chronological delivery order. The first failure puts the entry back at the
// FRONT of the queue and stops the loop; the next online transition retries.
func (t *Tracker) Flush(ctx context.Context) {
	if t.sink == nil {
		return
	}
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		head := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()

		if err := t.sink.Deliver(ctx, head); err != nil {
			t.log.Debug("tracker flush halted", "err", err, "queued", t.QueueLen()+1)
			t.mu.Lock()
			t.queue = append([]TrackedError{head}, t.queue...)
			t.mu.Unlock()
			return
		}
	}
}

// QueueLen reports the number of envelopes awaiting delivery.
func (t *Tracker) QueueLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}
