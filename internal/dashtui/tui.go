// Package dashtui is the interactive terminal dashboard.
package dashtui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/taskdash/dashboard"
	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/task"
)

type tabKind int

const (
	tabTasks tabKind = iota
	tabCalendar
	tabStats
	tabActivity
)

var tabLabels = []string{"[1] Tasks", "[2] Calendar", "[3] Stats", "[4] Activity"}

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalDelete
)

type confirmModal struct {
	kind        modalKind
	message     string
	confirmText string
	cancelText  string
	selected    int
	taskID      task.ID
}

// Options configure the dashboard UI.
type Options struct {
	// PollInterval is how often tasks are re-fetched. Zero disables polling.
	PollInterval time.Duration
}

type model struct {
	ctx         context.Context
	dash        *dashboard.Dashboard
	poll        time.Duration
	width       int
	height      int
	activeTab   tabKind
	taskList    list.Model
	detail      viewport.Model
	form        *taskForm
	searching   bool
	search      textinput.Model
	modal       confirmModal
	status      string
	statusLevel statusLevel
	loading     bool
	cursor      time.Time
	selectedID  task.ID
	err         error
}

// Run shows the dashboard until the user quits. It returns the error that
// ended the session, such as dashboard.ErrNotLoggedIn or an expired
// session.
func Run(ctx context.Context, dash *dashboard.Dashboard, opts Options) error {
	if dash == nil {
		return fmt.Errorf("dashboard is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !dash.LoggedIn() {
		return dashboard.ErrNotLoggedIn
	}
	program := tea.NewProgram(newModel(ctx, dash, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}

func newModel(ctx context.Context, dash *dashboard.Dashboard, opts Options) model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search tasks"

	return model{
		ctx:       ctx,
		dash:      dash,
		poll:      opts.PollInterval,
		activeTab: tabTasks,
		taskList:  newTaskList(),
		detail:    viewport.New(0, 0),
		search:    search,
		cursor:    task.StartOfDay(dash.Now()),
		loading:   true,
	}
}

type resultMsg struct {
	info string
	err  error
}

type pollMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(""), m.pollCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.update(msg)
	updated.syncTasks()
	return updated, cmd
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case resultMsg:
		return m.handleResult(msg)
	case pollMsg:
		return m, tea.Batch(m.refreshCmd(""), m.pollCmd())
	}

	if m.modal.kind != modalNone {
		return m.updateModal(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m model) handleResult(msg resultMsg) (model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setStatus(dashboard.Describe(msg.err), statusError)
		if dashboard.NeedsLogin(msg.err) {
			m.err = msg.err
			return m, tea.Quit
		}
		return m, nil
	}
	if msg.info != "" {
		m.setStatus(msg.info, statusInfo)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.modal = confirmModal{kind: modalHelp}
		return m, nil
	case "1", "2", "3", "4":
		m.activeTab = tabKind(key[0] - '1')
		return m, nil
	case "tab":
		m.activeTab = (m.activeTab + 1) % tabKind(len(tabLabels))
		return m, nil
	case "shift+tab", "backtab":
		m.activeTab = (m.activeTab + tabKind(len(tabLabels)) - 1) % tabKind(len(tabLabels))
		return m, nil
	case "r":
		m.loading = true
		return m, m.refreshCmd("Refreshed")
	}

	switch m.activeTab {
	case tabTasks:
		return m.handleTasksKey(key)
	case tabCalendar:
		return m.handleCalendarKey(key)
	}
	return m, nil
}

func (m model) handleTasksKey(key string) (model, tea.Cmd) {
	switch key {
	case "up", "k":
		return m.moveSelection(-1), nil
	case "down", "j":
		return m.moveSelection(1), nil
	case "home", "g":
		return m.moveSelection(-len(m.taskList.Items())), nil
	case "end", "G":
		return m.moveSelection(len(m.taskList.Items())), nil
	case "a":
		return m, m.setMode(task.ModeAll)
	case "c":
		return m, m.setMode(task.ModeCompleted)
	case "t":
		return m, m.setMode(task.ModeToday)
	case "esc":
		m.dash.ClearDate()
		return m, nil
	case "/":
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()
	case "n":
		form := newTaskForm().SetWidth(m.formWidth())
		form, cmd := form.Focus()
		m.form = &form
		return m, cmd
	case "enter", "e":
		current, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		form := editTaskForm(current, m.dash.Location()).SetWidth(m.formWidth())
		form, cmd := form.Focus()
		m.form = &form
		return m, cmd
	case "x":
		return m, m.setStatusCmd(task.StatusCompleted)
	case "i":
		return m, m.setStatusCmd(task.StatusInProgress)
	case "p":
		return m, m.setStatusCmd(task.StatusPending)
	case "d":
		current, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.modal = confirmModal{
			kind:        modalDelete,
			message:     fmt.Sprintf("Do you want to delete %q?", current.Title),
			confirmText: "Delete",
			cancelText:  "Cancel",
			selected:    1,
			taskID:      current.ID,
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleCalendarKey(key string) (model, tea.Cmd) {
	switch key {
	case "h", "left":
		m.cursor = moveCursor(m.cursor, -1)
	case "l", "right":
		m.cursor = moveCursor(m.cursor, 1)
	case "k", "up":
		m.cursor = moveCursor(m.cursor, -7)
	case "j", "down":
		m.cursor = moveCursor(m.cursor, 7)
	case "[":
		m.cursor = shiftMonth(m.cursor, -1)
	case "]":
		m.cursor = shiftMonth(m.cursor, 1)
	case ".":
		m.cursor = task.StartOfDay(m.dash.Now())
	case "enter":
		day := task.DayKey(m.cursor, m.dash.Location())
		if err := m.dash.SelectDate(day); err != nil {
			m.setStatus(dashboard.Describe(err), statusError)
			return m, nil
		}
		m.activeTab = tabTasks
		m.selectedID = ""
	}
	return m, nil
}

// setMode switches the filter. Leaving a search reloads the full list,
// since the store only holds the matches.
func (m model) setMode(mode task.Mode) tea.Cmd {
	previous := m.dash.Filter().Mode
	m.dash.SetMode(mode)
	if previous == task.ModeSearch || mode == task.ModeAll {
		return m.refreshCmd("")
	}
	return nil
}

func (m model) moveSelection(delta int) model {
	items := m.taskList.Items()
	if len(items) == 0 {
		return m
	}
	next := min(max(m.taskList.Index()+delta, 0), len(items)-1)
	m.taskList.Select(next)
	if item, ok := items[next].(taskItem); ok {
		m.selectedID = item.task.ID
	}
	return m
}

func (m model) selectedTask() (task.Task, bool) {
	item, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return task.Task{}, false
	}
	return item.task, true
}

func (m model) updateSearch(msg tea.Msg) (model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "enter":
			query := m.search.Value()
			m.searching = false
			m.search.Blur()
			m.selectedID = ""
			m.loading = true
			return m, m.run("", func(ctx context.Context) error {
				return m.dash.Search(ctx, query)
			})
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m model) updateForm(msg tea.Msg) (model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.form = nil
			m.setStatus("Edit cancelled", statusInfo)
			return m, nil
		case "ctrl+s":
			return m.saveForm()
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	form, cmd := m.form.Update(msg)
	m.form = &form
	return m, cmd
}

func (m model) saveForm() (model, tea.Cmd) {
	form := *m.form
	in, err := form.Input(m.dash.Now(), m.dash.Location())
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		m.setStatus(dashboard.Describe(err), statusError)
		return m, nil
	}
	m.form = nil
	if form.isNew {
		return m, m.run(fmt.Sprintf("Added %q", in.Title), func(ctx context.Context) error {
			return m.dash.Add(ctx, in)
		})
	}
	return m, m.run(fmt.Sprintf("Saved %q", in.Title), func(ctx context.Context) error {
		return m.dash.Edit(ctx, form.id, in)
	})
}

func (m model) updateModal(msg tea.Msg) (model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.modal.kind == modalHelp {
		switch key.String() {
		case "?", "esc":
			m.modal = confirmModal{kind: modalNone}
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil
	}
	switch key.String() {
	case "left", "right", "tab", "shift+tab", "backtab", "h", "l":
		m.modal.selected = 1 - m.modal.selected
		return m, nil
	case "y":
		return m.resolveModal(true)
	case "n", "esc":
		return m.resolveModal(false)
	case "enter":
		return m.resolveModal(m.modal.selected == 0)
	}
	return m, nil
}

func (m model) resolveModal(confirm bool) (model, tea.Cmd) {
	modal := m.modal
	m.modal = confirmModal{kind: modalNone}
	if !confirm || modal.kind != modalDelete {
		return m, nil
	}
	return m, m.run("Task deleted", func(ctx context.Context) error {
		return m.dash.Delete(ctx, modal.taskID)
	})
}

func (m model) setStatusCmd(status task.Status) tea.Cmd {
	current, ok := m.selectedTask()
	if !ok {
		return nil
	}
	if current.Status == status {
		return nil
	}
	info := fmt.Sprintf("Marked %q %s", current.Title, status.Label())
	return m.run(info, func(ctx context.Context) error {
		return m.dash.SetStatus(ctx, current.ID, status)
	})
}

func (m model) run(info string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{info: info, err: fn(ctx)}
	}
}

func (m model) refreshCmd(info string) tea.Cmd {
	return m.run(info, m.dash.Refresh)
}

func (m model) pollCmd() tea.Cmd {
	if m.poll <= 0 {
		return nil
	}
	return tea.Tick(m.poll, func(time.Time) tea.Msg { return pollMsg{} })
}

// syncTasks rebuilds the list from the dashboard's visible tasks, keeping
// the selection on the same task when it is still shown.
func (m *model) syncTasks() {
	now := m.dash.Now()
	items := taskItems(m.dash.Visible(), m.dash.Pending, now)
	m.taskList.SetItems(items)

	index := -1
	for i, item := range items {
		if item.(taskItem).task.ID == m.selectedID {
			index = i
			break
		}
	}
	if index < 0 && len(items) > 0 {
		index = min(max(m.taskList.Index(), 0), len(items)-1)
	}
	if index >= 0 {
		m.taskList.Select(index)
		m.selectedID = items[index].(taskItem).task.ID
	} else {
		m.selectedID = ""
	}

	if current, ok := m.selectedTask(); ok {
		m.detail.SetContent(renderTaskCard(current, m.dash.Pending(current.ID), m.dash.Location(), m.detail.Width))
	} else {
		m.detail.SetContent(valueMuted.Render("No tasks. Press n to add one."))
	}
}

func (m *model) resize() {
	leftWidth, rightWidth := splitWidths(m.width)
	paneHeight := m.paneHeight()
	m.taskList.SetSize(max(leftWidth-4, 1), max(paneHeight-2, 1))
	m.detail.Width = max(rightWidth-4, 1)
	m.detail.Height = max(paneHeight-2, 1)
	if m.form != nil {
		form := m.form.SetWidth(m.formWidth())
		m.form = &form
	}
}

func (m model) formWidth() int {
	_, rightWidth := splitWidths(m.width)
	return rightWidth - 8
}

// contentHeight is the space between the tab bar and the help and status
// lines.
func (m model) contentHeight() int {
	return max(m.height-3, 1)
}

// paneHeight is what remains under the filter header and stat cards.
func (m model) paneHeight() int {
	height := m.contentHeight() - 3
	if m.searching {
		height--
	}
	return max(height, 3)
}

func splitWidths(width int) (int, int) {
	left := width / 2
	if left < 30 {
		left = min(30, width)
	}
	return left, max(width-left, 0)
}

func (m *model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading taskdash..."
	}
	if m.modal.kind != modalNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modalView())
	}

	var content string
	switch m.activeTab {
	case tabTasks:
		content = m.renderTasksTab()
	case tabCalendar:
		content = m.renderCalendarTab()
	case tabStats:
		content = renderStats(m.dash.Stats())
	case tabActivity:
		content = renderActivity(m.dash.Activity(), m.dash.Now(), m.width)
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	return strings.Join([]string{m.renderTabs(), content, m.renderHelpLine(), m.renderStatusLine()}, "\n")
}

func (m model) renderTabs() string {
	parts := make([]string, 0, len(tabLabels))
	for i, label := range tabLabels {
		style := tabInactiveStyle
		if tabKind(i) == m.activeTab {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(label))
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	user := m.dash.Session().Username()
	if user == "" {
		user = "signed in"
	}
	hint := valueMuted.Render(user + " | ? help")
	spacer := strings.Repeat(" ", max(m.width-lipgloss.Width(content)-lipgloss.Width(hint), 1))
	return tabBarStyle.Width(m.width).Render(content + spacer + hint)
}

func (m model) renderTasksTab() string {
	title := headerStyle.Render(m.dash.Filter().Title())
	header := lipgloss.JoinHorizontal(lipgloss.Center, lipgloss.NewStyle().Width(24).Render(title), renderStatCards(m.dash.Stats()))
	rows := []string{header}
	if m.searching {
		rows = append(rows, m.search.View())
	}

	leftWidth, rightWidth := splitWidths(m.width)
	height := m.paneHeight()
	listContent := m.taskList.View()
	if len(m.taskList.Items()) == 0 {
		listContent = valueMuted.Render("Nothing here.")
	}
	detailContent := m.detail.View()
	if m.form != nil {
		detailContent = m.form.View()
	}
	listPane := renderPane(listContent, leftWidth, height, m.form == nil)
	detailPane := renderPane(detailContent, rightWidth, height, m.form != nil)
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane))
	return strings.Join(rows, "\n")
}

func renderPane(content string, width, height int, focused bool) string {
	style := paneStyle
	if focused {
		style = paneActiveStyle
	}
	return style.Width(max(width-2, 0)).Height(max(height-2, 0)).MaxHeight(height).Render(content)
}

func (m model) renderCalendarTab() string {
	month := m.dash.Month(m.cursor.Year(), m.cursor.Month())
	loc := m.dash.Location()
	return renderCalendar(month, task.DayKey(m.cursor, loc), m.dash.Today(), m.width)
}

func (m model) renderHelpLine() string {
	return valueMuted.Render(ui.Truncate(m.helpSummary(), max(m.width, 0)))
}

func (m model) helpSummary() string {
	switch {
	case m.form != nil:
		return "Keys: tab next field | shift+tab prev | ctrl+s save | esc cancel"
	case m.searching:
		return "Keys: enter search | esc cancel"
	case m.activeTab == tabTasks:
		return "Keys: a all | c completed | t today | / search | n new | enter edit | x done | i in progress | p pending | d delete | r refresh | q quit"
	case m.activeTab == tabCalendar:
		return "Keys: h/j/k/l move | [ ] month | . today | enter show day | q quit"
	default:
		return "Keys: 1-4 tabs | r refresh | ? help | q quit"
	}
}

func (m model) renderStatusLine() string {
	if m.loading && m.status == "" {
		return valueMuted.Render("Loading tasks...")
	}
	if strings.TrimSpace(m.status) == "" {
		return ""
	}
	style := valueMuted
	switch m.statusLevel {
	case statusError:
		style = statusErrorStyle
	case statusInfo:
		style = statusSuccessStyle
	}
	return style.Render(ui.Truncate(m.status, max(m.width, 0)))
}

func (m model) modalView() string {
	if m.modal.kind == modalHelp {
		return modalStyle.Render(helpContent())
	}
	options := []string{m.modal.confirmText, m.modal.cancelText}
	buttons := make([]string, 0, len(options))
	for i, option := range options {
		style := valueMuted
		if i == m.modal.selected {
			style = selectedStyle
		}
		buttons = append(buttons, style.Render("["+option+"]"))
	}
	return modalStyle.Render(strings.Join([]string{m.modal.message, "", strings.Join(buttons, " ")}, "\n"))
}

func helpContent() string {
	sections := []string{
		labelStyle.Render("Global"),
		"q or ctrl+c: quit",
		"1-4 / tab: switch tabs",
		"r: refresh",
		"?: toggle help",
		"",
		labelStyle.Render("Tasks"),
		"a / c / t: all, completed, today",
		"/: search",
		"esc: clear selected day",
		"n: new task, enter: edit task",
		"x / i / p: completed, in progress, pending",
		"d: delete",
		"",
		labelStyle.Render("Calendar"),
		"h/j/k/l or arrows: move day",
		"[ or ]: previous or next month",
		".: jump to today",
		"enter: show tasks due that day",
		"",
		labelStyle.Render("Help"),
		"press ? or esc to close",
	}
	return strings.Join(sections, "\n")
}
