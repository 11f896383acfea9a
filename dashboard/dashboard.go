// Package dashboard orchestrates the task dashboard: it sends user actions
// to the API, reconciles the task store with the server, and records the
// activity feed.
//
// Every operation follows the same flow: network call, then store update
// (a full reload, or an optimistic local patch followed by a reload), then
// an activity entry for mutations. The server is authoritative; a failed
// mutation restores consistency by reloading.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/amonks/taskdash/activity"
	"github.com/amonks/taskdash/api"
	"github.com/amonks/taskdash/session"
	"github.com/amonks/taskdash/task"
)

// ErrNotLoggedIn is returned by task operations when no session is held.
var ErrNotLoggedIn = errors.New("not logged in")

// Backend is the subset of the API client the dashboard uses.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Signup(ctx context.Context, creds api.Credentials) error
	ListTasks(ctx context.Context) ([]task.Task, error)
	SearchTasks(ctx context.Context, query string) ([]task.Task, error)
	CreateTask(ctx context.Context, req api.CreateRequest) error
	UpdateTask(ctx context.Context, req api.UpdateRequest) error
	UpdateTaskStatus(ctx context.Context, id task.ID, status task.Status) error
	DeleteTask(ctx context.Context, id task.ID) error
}

// Dashboard owns the session, task store, filter state, and activity log.
type Dashboard struct {
	backend Backend
	session *session.Session
	store   *task.Store
	log     *activity.Log
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time
	group   singleflight.Group

	// loadMu orders store loads against Logout.
	loadMu sync.Mutex

	mu     sync.Mutex
	filter task.FilterState
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLocation sets the viewer's zone for calendar-day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a dashboard with an empty store and activity log.
func New(backend Backend, sess *session.Session, opts ...Option) *Dashboard {
	d := &Dashboard{
		backend: backend,
		session: sess,
		store:   task.NewStore(),
		logger:  zap.NewNop(),
		loc:     time.Local,
		now:     time.Now,
		filter:  task.FilterState{Mode: task.ModeAll},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = activity.NewLog(d.now)
	return d
}

// Now returns the current time in the viewer's zone.
func (d *Dashboard) Now() time.Time {
	return d.now().In(d.loc)
}

// Today returns the current YYYY-MM-DD day in the viewer's zone.
func (d *Dashboard) Today() string {
	return task.DayKey(d.now(), d.loc)
}

// Location returns the viewer's zone.
func (d *Dashboard) Location() *time.Location {
	return d.loc
}

// Session returns the session holder.
func (d *Dashboard) Session() *session.Session {
	return d.session
}

// LoggedIn reports whether a session token is held.
func (d *Dashboard) LoggedIn() bool {
	return d.session.Present()
}

// Login authenticates and stores the returned token.
func (d *Dashboard) Login(ctx context.Context, username, password string) error {
	token, err := d.backend.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := d.session.Set(token, username); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	d.logger.Info("logged in", zap.String("username", username))
	return nil
}

// Signup registers a new account. It does not log in.
func (d *Dashboard) Signup(ctx context.Context, username, password string) error {
	return d.backend.Signup(ctx, api.Credentials{Username: username, Password: password})
}

// Logout clears the session and forgets the loaded tasks. A refresh still
// in flight does not repopulate the store.
func (d *Dashboard) Logout() error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()
	err := d.session.Clear()
	d.store.Load(nil)
	return err
}

// Refresh replaces the store with the server's task list. Concurrent calls
// share one request.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	_, err, _ := d.group.Do("refresh", func() (any, error) {
		return nil, d.reload(ctx)
	})
	return err
}

// reload fetches the task list with a request of its own. Mutations use it
// so their refresh never joins a list call sent before the change.
func (d *Dashboard) reload(ctx context.Context) error {
	tasks, err := d.backend.ListTasks(ctx)
	if err != nil {
		return d.fail(err)
	}
	if err := d.load(tasks); err != nil {
		return err
	}
	d.logger.Debug("refreshed tasks", zap.Int("count", len(tasks)))
	return nil
}

// load replaces the store unless the session ended while the response was
// in flight.
func (d *Dashboard) load(tasks []task.Task) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()
	if err := d.requireSession(); err != nil {
		return err
	}
	d.store.Load(tasks)
	return nil
}

// Search loads the server's matches for query and switches to the Search
// view. A blank query reloads everything and switches to All.
func (d *Dashboard) Search(ctx context.Context, query string) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		if err := d.Refresh(ctx); err != nil {
			return err
		}
		d.setFilter(task.FilterState{Mode: task.ModeAll})
		return nil
	}

	tasks, err := d.backend.SearchTasks(ctx, query)
	if err != nil {
		return d.fail(err)
	}
	if err := d.load(tasks); err != nil {
		return err
	}
	d.setFilter(task.FilterState{Mode: task.ModeSearch})
	return nil
}

// Add creates a task from input.
func (d *Dashboard) Add(ctx context.Context, in task.Input) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	req, err := api.NewCreateRequest(in, d.loc)
	if err != nil {
		return err
	}
	if err := d.backend.CreateTask(ctx, req); err != nil {
		return d.fail(err)
	}
	d.log.Record(activity.Added(in.Title))
	return d.reload(ctx)
}

// Edit replaces the title, description, and due date of a task.
func (d *Dashboard) Edit(ctx context.Context, id task.ID, in task.Input) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	req, err := api.NewUpdateRequest(id, in, d.loc)
	if err != nil {
		return err
	}
	if err := d.backend.UpdateTask(ctx, req); err != nil {
		return d.fail(err)
	}
	d.log.Record(activity.Edited(in.Title))
	return d.reload(ctx)
}

// SetStatus changes a task's status. The store shows the new status
// immediately and is reconciled with the server afterwards.
func (d *Dashboard) SetStatus(ctx context.Context, id task.ID, status task.Status) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	if !status.IsValid() {
		return fmt.Errorf("%w %q", task.ErrInvalidStatus, status)
	}
	current, ok := d.store.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}

	snapshot := d.store.Get()
	d.store.UpsertLocal(current.WithStatus(status))
	if err := d.backend.UpdateTaskStatus(ctx, id, status); err != nil {
		return d.reconcile(ctx, snapshot, err)
	}
	d.log.Record(activity.StatusChanged(current.Title, status))
	return d.reload(ctx)
}

// Delete removes a task. The store drops it immediately and is reconciled
// with the server afterwards.
func (d *Dashboard) Delete(ctx context.Context, id task.ID) error {
	if err := d.requireSession(); err != nil {
		return err
	}
	current, ok := d.store.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}

	snapshot := d.store.Get()
	d.store.RemoveLocal(id)
	if err := d.backend.DeleteTask(ctx, id); err != nil {
		return d.reconcile(ctx, snapshot, err)
	}
	d.log.Record(activity.Deleted(current.Title))
	return d.reload(ctx)
}

// reconcile undoes an optimistic patch after a failed mutation: it reloads
// from the server, falling back to the pre-patch snapshot when the server
// cannot be read.
func (d *Dashboard) reconcile(ctx context.Context, snapshot []task.Task, cause error) error {
	cause = d.fail(cause)
	if errors.Is(cause, api.ErrSessionExpired) {
		d.store.Load(snapshot)
		return cause
	}
	if err := d.reload(ctx); err != nil {
		d.logger.Warn("reload after failed mutation", zap.Error(err))
		if !errors.Is(err, api.ErrSessionExpired) {
			_ = d.load(snapshot)
		}
	}
	return cause
}

// fail applies the session-expiry policy: the token is dropped and the
// store is left as it was.
func (d *Dashboard) fail(err error) error {
	if errors.Is(err, api.ErrSessionExpired) {
		if clearErr := d.session.Clear(); clearErr != nil {
			d.logger.Warn("clear expired session", zap.Error(clearErr))
		}
		d.logger.Info("session expired")
	}
	return err
}

func (d *Dashboard) requireSession() error {
	if d.session == nil || !d.session.Present() {
		return ErrNotLoggedIn
	}
	return nil
}

// Tasks returns every loaded task in server order.
func (d *Dashboard) Tasks() []task.Task {
	return d.store.Get()
}

// Find returns a loaded task.
func (d *Dashboard) Find(id task.ID) (task.Task, bool) {
	return d.store.Find(id)
}

// Pending reports whether a task has an unconfirmed local change.
func (d *Dashboard) Pending(id task.ID) bool {
	return d.store.Pending(id)
}

// Visible returns the tasks shown under the current filter.
func (d *Dashboard) Visible() []task.Task {
	return task.Filter(d.store.Get(), d.Filter(), d.Now())
}

// Stats aggregates every loaded task.
func (d *Dashboard) Stats() task.Stats {
	return task.Aggregate(d.store.Get(), d.Now())
}

// Month lays out the loaded tasks on a calendar month.
func (d *Dashboard) Month(year int, month time.Month) task.Month {
	return task.BuildMonth(d.store.Get(), year, month, d.loc)
}

// Activity returns the feed, most recent first.
func (d *Dashboard) Activity() []activity.Entry {
	return d.log.Entries()
}

// Filter returns the current view selection.
func (d *Dashboard) Filter() task.FilterState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// SetMode switches the view and clears any selected date.
func (d *Dashboard) SetMode(mode task.Mode) {
	d.setFilter(task.FilterState{Mode: mode})
}

// SelectDate narrows the view to tasks due on a YYYY-MM-DD day.
func (d *Dashboard) SelectDate(day string) error {
	if _, err := task.ParseDay(day, d.loc); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.SelectedDate = day
	return nil
}

// ClearDate removes the selected-date override.
func (d *Dashboard) ClearDate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.SelectedDate = ""
}

func (d *Dashboard) setFilter(filter task.FilterState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = filter
}
