package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amonks/taskdash/dashboard"
	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/internal/validation"
	"github.com/amonks/taskdash/task"
)

// list
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks.

Shows every task by default. --completed, --today and --date narrow the
list the same way the dashboard's filters do. --sort priority or --sort
due reorders it; the default keeps server order. --watch keeps running and
prints the list again after every background refresh.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listCompleted bool
	listToday     bool
	listDate      string
	listJSON      bool
	listWatch     bool
	listInterval  time.Duration
	listSort      string
)

// search
var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search tasks on the server",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var searchJSON bool

// stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

// calendar
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show tasks on a month calendar",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

var calendarMonth string

func init() {
	rootCmd.AddCommand(listCmd, searchCmd, statsCmd, calendarCmd)

	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "Only completed tasks")
	listCmd.Flags().BoolVar(&listToday, "today", false, "Only tasks due today")
	listCmd.Flags().StringVar(&listDate, "date", "", "Only tasks due on a day (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "Keep refreshing until interrupted")
	listCmd.Flags().DurationVar(&listInterval, "interval", 0, "Refresh interval for --watch (default from config)")
	listCmd.Flags().StringVar(&listSort, "sort", string(task.SortServer), "Sort order: "+validation.FormatChoices(task.ValidSortOrders()))
	listCmd.MarkFlagsMutuallyExclusive("completed", "today", "date")

	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")

	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default current)")
}

// listFilter maps the list flags to a filter state.
func listFilter() task.FilterState {
	switch {
	case listDate != "":
		return task.FilterState{Mode: task.ModeAll, SelectedDate: listDate}
	case listCompleted:
		return task.FilterState{Mode: task.ModeCompleted}
	case listToday:
		return task.FilterState{Mode: task.ModeToday}
	default:
		return task.FilterState{Mode: task.ModeAll}
	}
}

func runList(cmd *cobra.Command, args []string) error {
	order, err := task.ParseSortOrder(listSort)
	if err != nil {
		return err
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	filter := listFilter()
	a.dash.SetMode(filter.Mode)
	if filter.SelectedDate != "" {
		if err := a.dash.SelectDate(filter.SelectedDate); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if err := a.dash.Refresh(ctx); err != nil {
		return err
	}
	if err := printVisible(a, order); err != nil {
		return err
	}
	if !listWatch {
		return nil
	}

	interval := listInterval
	if interval <= 0 {
		if interval, err = a.cfg.PollInterval(); err != nil {
			return err
		}
	}
	return watchList(ctx, a, interval, order)
}

func printVisible(a *app, order task.SortOrder) error {
	return printTaskList(task.Sort(a.dash.Visible(), order), listJSON, a.dash.Now(), a.dash.Location())
}

// watchList reprints the list after each poll until ctx is done or the
// session is lost.
func watchList(ctx context.Context, a *app, interval time.Duration, order task.SortOrder) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		lastErr error
	)
	poller := a.dash.NewPoller(interval, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			a.logger.Warn("refresh failed", zap.Error(err))
			if dashboard.NeedsLogin(err) {
				lastErr = err
				cancel()
			}
			return
		}
		if !listJSON {
			fmt.Println(ui.Dim(fmt.Sprintf("--- %s ---", a.dash.Now().Format("15:04:05"))))
		}
		if err := printVisible(a, order); err != nil {
			lastErr = err
			cancel()
		}
	})
	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()

	mu.Lock()
	defer mu.Unlock()
	return lastErr
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Search(cmd.Context(), strings.Join(args, " ")); err != nil {
		return err
	}
	return printTaskList(a.dash.Visible(), searchJSON, a.dash.Now(), a.dash.Location())
}

type statsOutput struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"in_progress"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	Upcoming       int `json:"upcoming"`
	Today          int `json:"today"`
	CompletionRate int `json:"completion_rate"`
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return err
	}
	stats := a.dash.Stats()

	if statsJSON {
		return encodeJSONToStdout(statsOutput{
			Total:          stats.Total,
			Completed:      stats.Completed,
			InProgress:     stats.InProgress,
			Pending:        stats.Pending,
			Overdue:        stats.Overdue,
			Upcoming:       stats.Upcoming,
			Today:          stats.Today,
			CompletionRate: stats.CompletionRate,
		})
	}
	fmt.Print(formatStats(stats))
	return nil
}

func formatStats(stats task.Stats) string {
	builder := ui.NewTableBuilder([]string{"METRIC", "VALUE", "PERCENT"}, len(task.Metrics())+2)
	for _, v := range stats.Values() {
		value := fmt.Sprintf("%d / %d", v.Value, stats.Total)
		if v.Metric == task.MetricCompletionRate {
			value = fmt.Sprintf("%d%%", v.Value)
		}
		builder.AddRow(v.Metric.Label(), value, fmt.Sprintf("%d%%", v.Percent))
	}
	builder.AddRow("Due Today", fmt.Sprintf("%d / %d", stats.Today, stats.Total), fmt.Sprintf("%d%%", stats.Percent(stats.Today)))
	builder.AddRow("Total", fmt.Sprintf("%d", stats.Total))
	return builder.String()
}

var calendarMarkers = map[task.Status]string{
	task.StatusPending:    "o",
	task.StatusInProgress: "~",
	task.StatusCompleted:  "x",
}

func runCalendar(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	now, loc := a.dash.Now(), a.dash.Location()
	year, month := now.Year(), now.Month()
	if calendarMonth != "" {
		first, err := time.ParseInLocation("2006-01", strings.TrimSpace(calendarMonth), loc)
		if err != nil {
			return fmt.Errorf("invalid --month %q: expected YYYY-MM", calendarMonth)
		}
		year, month = first.Year(), first.Month()
	}

	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return err
	}
	fmt.Print(formatCalendar(a.dash.Month(year, month), a.dash.Today()))
	return nil
}

// formatCalendar draws a month as a text grid followed by the tasks due on
// each day. Today is marked "*" and days with tasks "+".
func formatCalendar(month task.Month, todayKey string) string {
	const cellWidth = 5

	var b strings.Builder
	title := month.Title()
	pad := max((7*cellWidth-len(title))/2, 0)
	b.WriteString(strings.Repeat(" ", pad) + ui.Bold(title) + "\n")
	var header strings.Builder
	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		fmt.Fprintf(&header, "%4s ", name)
	}
	b.WriteString(strings.TrimRight(header.String(), " ") + "\n")
	for _, week := range month.Weeks() {
		var line strings.Builder
		for _, day := range week {
			if day == nil {
				line.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			mark := " "
			switch {
			case day.Key == todayKey:
				mark = "*"
			case len(day.Tasks) > 0:
				mark = "+"
			}
			fmt.Fprintf(&line, "%4d%s", day.Date.Day(), mark)
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}

	var agenda []string
	for _, day := range month.Days {
		for _, t := range day.Tasks {
			marker := calendarMarkers[t.Status]
			if marker == "" {
				marker = "?"
			}
			agenda = append(agenda, fmt.Sprintf("%s  %s %s", day.Key, marker, t.Title))
		}
	}
	if len(agenda) > 0 {
		b.WriteString("\n" + strings.Join(agenda, "\n") + "\n")
	}
	return b.String()
}
