package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amonks/taskdash/api"
	"github.com/amonks/taskdash/internal/apitest"
	"github.com/amonks/taskdash/session"
	"github.com/amonks/taskdash/task"
)

var testZone = time.FixedZone("test", -5*3600)

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 9, 0, 0, 0, testZone)
}

func due(day, hour int) *time.Time {
	t := time.Date(2025, 3, day, hour, 0, 0, 0, testZone)
	return &t
}

// setup returns a logged-in dashboard against a fresh in-memory backend.
func setup(t *testing.T) (*Dashboard, *apitest.Server) {
	t.Helper()
	backend := apitest.New()
	backend.AddUser("alice", "secret")
	url := apitest.Start(t, backend)

	sess := session.New(nil)
	client := api.NewClient(url, sess, api.WithLocation(testZone))
	d := New(client, sess, WithLocation(testZone), WithClock(fixedNow))
	require.NoError(t, d.Login(context.Background(), "alice", "secret"))
	return d, backend
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestLoginStoresToken(t *testing.T) {
	d, _ := setup(t)
	assert.True(t, d.LoggedIn())
	assert.Equal(t, "alice", d.Session().Username())
}

func TestLoginFailure(t *testing.T) {
	backend := apitest.New()
	backend.AddUser("alice", "secret")
	sess := session.New(nil)
	d := New(api.NewClient(apitest.Start(t, backend), sess), sess)

	err := d.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, api.ErrAuthentication)
	assert.False(t, d.LoggedIn())
	assert.Equal(t, "Invalid credentials", Describe(err))
}

func TestOperationsRequireSession(t *testing.T) {
	backend := apitest.New()
	sess := session.New(nil)
	d := New(api.NewClient(apitest.Start(t, backend), sess), sess)
	ctx := context.Background()

	assert.ErrorIs(t, d.Refresh(ctx), ErrNotLoggedIn)
	assert.ErrorIs(t, d.Search(ctx, "x"), ErrNotLoggedIn)
	assert.ErrorIs(t, d.Add(ctx, task.Input{Title: "x"}), ErrNotLoggedIn)
	assert.ErrorIs(t, d.SetStatus(ctx, "1", task.StatusCompleted), ErrNotLoggedIn)
	assert.ErrorIs(t, d.Delete(ctx, "1"), ErrNotLoggedIn)
	assert.Empty(t, backend.Requests())
}

func TestRefreshLoadsTasks(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice", task.Task{Title: "one"}, task.Task{Title: "two"})

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, []string{"one", "two"}, titles(d.Tasks()))
}

func TestAddRecordsActivityAndReloads(t *testing.T) {
	d, backend := setup(t)

	err := d.Add(context.Background(), task.Input{Title: "Buy milk", DueDate: "2025-03-10"})
	require.NoError(t, err)

	tasks := d.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusPending, tasks[0].Status)
	assert.Equal(t, task.PriorityMedium, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, "2025-03-10", tasks[0].DueKey(testZone))

	entries := d.Activity()
	require.Len(t, entries, 1)
	assert.Equal(t, `Added task: "Buy milk"`, entries[0].Text)
	assert.Equal(t, 1, backend.CountRequests(http.MethodPost, "/api/todo"))
}

func TestDueDayFollowsConfiguredZone(t *testing.T) {
	// Far from any likely host zone, so the day differs from time.Local's.
	zone := time.FixedZone("far-east", 13*3600)
	backend := apitest.New()
	backend.AddUser("alice", "secret")
	sess := session.New(nil)
	client := api.NewClient(apitest.Start(t, backend), sess, api.WithLocation(zone))
	d := New(client, sess, WithLocation(zone), WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, zone)
	}))
	ctx := context.Background()
	require.NoError(t, d.Login(ctx, "alice", "secret"))

	require.NoError(t, d.Add(ctx, task.Input{Title: "Pay rent", DueDate: "2025-03-10"}))
	created := d.Tasks()[0]
	assert.Equal(t, "2025-03-10", created.DueKey(zone))
	assert.Equal(t, 1, d.Stats().Today)

	d.SetMode(task.ModeToday)
	assert.Equal(t, []string{"Pay rent"}, titles(d.Visible()))
	require.NoError(t, d.SelectDate("2025-03-10"))
	assert.Equal(t, []string{"Pay rent"}, titles(d.Visible()))

	// Editing other fields re-sends the same day.
	in := task.InputFrom(created, zone)
	in.Title = "Pay rent early"
	require.NoError(t, d.Edit(ctx, created.ID, in))
	edited, ok := d.Find(created.ID)
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", edited.DueKey(zone))
}

func TestValidationFailureIssuesNoRequest(t *testing.T) {
	d, backend := setup(t)
	before := len(backend.Requests())

	err := d.Add(context.Background(), task.Input{Title: "   "})
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
	assert.ErrorIs(t, err, task.ErrValidation)

	err = d.Edit(context.Background(), "1", task.Input{Title: "x", DueDate: "tomorrow"})
	assert.ErrorIs(t, err, task.ErrInvalidDueDate)

	assert.Len(t, backend.Requests(), before)
	assert.Empty(t, d.Activity())
}

func TestEdit(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "draft", DueDate: due(9, 12)})
	require.NoError(t, d.Refresh(context.Background()))

	err := d.Edit(context.Background(), seeded[0].ID, task.Input{Title: "final", Description: "done soon"})
	require.NoError(t, err)

	got, ok := d.Find(seeded[0].ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "done soon", got.Description)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, `Edited task: "final"`, d.Activity()[0].Text)
}

func TestSetStatus(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "Write report"})
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.SetStatus(context.Background(), seeded[0].ID, task.StatusInProgress))

	got, _ := d.Find(seeded[0].ID)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.False(t, d.Pending(seeded[0].ID), "reload should confirm the change")
	assert.Equal(t, task.StatusInProgress, backend.Tasks("alice")[0].Status)
	assert.Equal(t, `Updated "Write report" → In Progress`, d.Activity()[0].Text)
}

func TestSetStatusUnknownTask(t *testing.T) {
	d, _ := setup(t)
	err := d.SetStatus(context.Background(), "99", task.StatusCompleted)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestFailedDeleteRestoresByReload(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "keep me"}, task.Task{Title: "other"})
	require.NoError(t, d.Refresh(context.Background()))

	backend.FailNext(http.MethodDelete, "/api/todo/delete", http.StatusInternalServerError)
	err := d.Delete(context.Background(), seeded[0].ID)

	code, ok := api.StatusCode(err)
	require.True(t, ok, "expected status error, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, []string{"keep me", "other"}, titles(d.Tasks()))
	assert.Empty(t, d.Activity())
}

func TestDelete(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "gone"})
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.Delete(context.Background(), seeded[0].ID))
	assert.Empty(t, d.Tasks())
	assert.Empty(t, backend.Tasks("alice"))
	assert.Equal(t, `Deleted task: "gone"`, d.Activity()[0].Text)
}

func TestSessionExpiryClearsSessionAndKeepsStore(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice", task.Task{Title: "cached"})
	require.NoError(t, d.Refresh(context.Background()))

	backend.RevokeTokens()
	err := d.Refresh(context.Background())

	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.False(t, d.LoggedIn())
	assert.Equal(t, []string{"cached"}, titles(d.Tasks()))
	assert.True(t, NeedsLogin(err))
	assert.Equal(t, "Session expired. Please log in again.", Describe(err))
}

func TestSessionExpiryDuringStatusChangeRestoresSnapshot(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "a", Status: task.StatusPending})
	require.NoError(t, d.Refresh(context.Background()))

	backend.FailNext(http.MethodPut, "/api/todo/status", http.StatusForbidden)
	err := d.SetStatus(context.Background(), seeded[0].ID, task.StatusCompleted)

	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.False(t, d.LoggedIn())
	got, _ := d.Find(seeded[0].ID)
	assert.Equal(t, task.StatusPending, got.Status)
}

func TestSearch(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice", task.Task{Title: "Buy milk"}, task.Task{Title: "Walk dog"})
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.SelectDate("2025-03-10"))

	require.NoError(t, d.Search(context.Background(), "milk"))
	assert.Equal(t, task.FilterState{Mode: task.ModeSearch}, d.Filter())
	assert.Equal(t, []string{"Buy milk"}, titles(d.Tasks()))
	assert.Equal(t, []string{"Buy milk"}, titles(d.Visible()))

	require.NoError(t, d.Search(context.Background(), "   "))
	assert.Equal(t, task.FilterState{Mode: task.ModeAll}, d.Filter())
	assert.Equal(t, []string{"Buy milk", "Walk dog"}, titles(d.Tasks()))
	assert.Equal(t, 1, backend.CountRequests(http.MethodGet, "/api/todo/search"))
}

func TestVisibleAndStats(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice",
		task.Task{Title: "today", DueDate: due(10, 10), Status: task.StatusPending},
		task.Task{Title: "yesterday", DueDate: due(9, 10), Status: task.StatusPending},
		task.Task{Title: "undated", Status: task.StatusCompleted},
	)
	require.NoError(t, d.Refresh(context.Background()))

	stats := d.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 33, stats.CompletionRate)

	d.SetMode(task.ModeToday)
	assert.Equal(t, []string{"today"}, titles(d.Visible()))

	d.SetMode(task.ModeCompleted)
	assert.Equal(t, []string{"undated"}, titles(d.Visible()))

	require.NoError(t, d.SelectDate("2025-03-09"))
	assert.Equal(t, []string{"yesterday"}, titles(d.Visible()))
	assert.Equal(t, "(2025-03-09)", d.Filter().Title())

	d.ClearDate()
	assert.Equal(t, []string{"undated"}, titles(d.Visible()))

	assert.Error(t, d.SelectDate("March 9"))

	month := d.Month(2025, time.March)
	day, ok := month.Find("2025-03-10")
	require.True(t, ok)
	assert.Equal(t, []string{"today"}, titles(day.Tasks))
}

func TestLogout(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice", task.Task{Title: "x"})
	require.NoError(t, d.Refresh(context.Background()))

	require.NoError(t, d.Logout())
	assert.False(t, d.LoggedIn())
	assert.Empty(t, d.Tasks())
}

// failingBackend fails every task call with the same error.
type failingBackend struct {
	err error
}

func (b *failingBackend) Login(context.Context, api.Credentials) (string, error) { return "tok", nil }
func (b *failingBackend) Signup(context.Context, api.Credentials) error          { return b.err }
func (b *failingBackend) ListTasks(context.Context) ([]task.Task, error)         { return nil, b.err }
func (b *failingBackend) SearchTasks(context.Context, string) ([]task.Task, error) {
	return nil, b.err
}
func (b *failingBackend) CreateTask(context.Context, api.CreateRequest) error { return b.err }
func (b *failingBackend) UpdateTask(context.Context, api.UpdateRequest) error { return b.err }
func (b *failingBackend) UpdateTaskStatus(context.Context, task.ID, task.Status) error {
	return b.err
}
func (b *failingBackend) DeleteTask(context.Context, task.ID) error { return b.err }

// slowListBackend is a task server whose next ListTasks can be held until
// released, returning the tasks as they were when the call arrived.
type slowListBackend struct {
	failingBackend

	mu        sync.Mutex
	tasks     []task.Task
	listCalls int
	hold      chan struct{}
	held      chan struct{}
}

func (b *slowListBackend) ListTasks(context.Context) ([]task.Task, error) {
	b.mu.Lock()
	b.listCalls++
	tasks := append([]task.Task(nil), b.tasks...)
	hold := b.hold
	b.hold = nil
	b.mu.Unlock()
	if hold != nil {
		close(b.held)
		<-hold
	}
	return tasks, nil
}

func (b *slowListBackend) UpdateTaskStatus(_ context.Context, id task.ID, status task.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks[i].Status = status
		}
	}
	return nil
}

func (b *slowListBackend) holdNextList() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hold = make(chan struct{})
	b.held = make(chan struct{})
	return func() { close(b.hold) }
}

func (b *slowListBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

func TestMutationRefreshDoesNotJoinEarlierPoll(t *testing.T) {
	backend := &slowListBackend{tasks: []task.Task{{ID: "1", Title: "a", Status: task.StatusPending}}}
	sess := session.New(nil)
	d := New(backend, sess)
	ctx := context.Background()
	require.NoError(t, d.Login(ctx, "alice", "pw"))
	require.NoError(t, d.Refresh(ctx))

	release := backend.holdNextList()
	polled := make(chan error, 1)
	go func() { polled <- d.Refresh(ctx) }()
	<-backend.held

	require.NoError(t, d.SetStatus(ctx, "1", task.StatusCompleted))
	assert.Equal(t, 3, backend.calls())
	got, _ := d.Find("1")
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.False(t, d.Pending("1"))

	release()
	require.NoError(t, <-polled)
}

func TestLogoutWinsOverRefreshInFlight(t *testing.T) {
	backend := &slowListBackend{tasks: []task.Task{{ID: "1", Title: "a"}}}
	sess := session.New(nil)
	d := New(backend, sess)
	ctx := context.Background()
	require.NoError(t, d.Login(ctx, "alice", "pw"))

	release := backend.holdNextList()
	polled := make(chan error, 1)
	go func() { polled <- d.Refresh(ctx) }()
	<-backend.held

	require.NoError(t, d.Logout())
	release()

	assert.ErrorIs(t, <-polled, ErrNotLoggedIn)
	assert.Empty(t, d.Tasks())
}

func TestNetworkFailureDuringDeleteRestoresSnapshot(t *testing.T) {
	sess := session.New(nil)
	backend := &failingBackend{err: fmt.Errorf("%w: connection refused", api.ErrNetwork)}
	d := New(backend, sess)
	require.NoError(t, d.Login(context.Background(), "alice", "pw"))
	d.store.Load([]task.Task{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}})

	err := d.Delete(context.Background(), "1")
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, []string{"a", "b"}, titles(d.Tasks()))
	assert.True(t, d.LoggedIn())
	assert.Equal(t, "Unable to connect to server. Try again later.", Describe(err))
}

func TestPoller(t *testing.T) {
	d, backend := setup(t)
	backend.Seed("alice", task.Task{Title: "polled"})

	results := make(chan error, 8)
	poller := d.NewPoller(10*time.Millisecond, func(err error) { results <- err })
	poller.Start(context.Background())

	select {
	case err := <-results:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller never refreshed")
	}
	poller.Stop()
	poller.Stop()

	assert.Equal(t, []string{"polled"}, titles(d.Tasks()))
}

func TestConcurrentMutationsAreSafe(t *testing.T) {
	d, backend := setup(t)
	seeded := backend.Seed("alice", task.Task{Title: "a"}, task.Task{Title: "b"})
	require.NoError(t, d.Refresh(context.Background()))

	var wg sync.WaitGroup
	for _, s := range seeded {
		wg.Add(2)
		go func(id task.ID) {
			defer wg.Done()
			assert.NoError(t, d.SetStatus(context.Background(), id, task.StatusCompleted))
		}(s.ID)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 2, d.Stats().Completed)
	assert.Len(t, d.Activity(), 2)
}

func TestDescribePassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
