package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amonks/taskdash/activity"
	"github.com/amonks/taskdash/internal/datemath"
	"github.com/amonks/taskdash/internal/editor"
	"github.com/amonks/taskdash/internal/prompt"
	"github.com/amonks/taskdash/internal/validation"
	"github.com/amonks/taskdash/task"
)

// add
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a new task",
	Long: `Create a new task.

When running interactively with no title and no field flags, opens
$EDITOR to edit a TOML representation of the task. Use --no-edit to
skip the editor, or --edit to open it anyway.

--due accepts YYYY-MM-DD, today, tomorrow, yesterday, +N, "in N days",
"in N weeks", "in N months" and "next <weekday>".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addDue         string
	addPriority    string
	addStatus      string
	addEdit        bool
	addNoEdit      bool
)

// edit
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's title, description, or due date",
	Long: `Edit a task's title, description, or due date.

By default, opens $EDITOR when running interactively and no field flags
are provided. Use --no-edit to skip the editor, or --edit to force it.
Pass an empty --due to clear the due date.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editDue         string
	editEdit        bool
	editNoEdit      bool
)

// status
var statusCmd = &cobra.Command{
	Use:   "status <id> <pending|in-progress|completed>",
	Short: "Set a task's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Mark one or more tasks as completed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  statusShortcut(task.StatusCompleted),
}

var startCmd = &cobra.Command{
	Use:   "start <id>...",
	Short: "Mark one or more tasks as in progress",
	Args:  cobra.MinimumNArgs(1),
	RunE:  statusShortcut(task.StatusInProgress),
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>...",
	Short: "Mark one or more tasks as pending",
	Args:  cobra.MinimumNArgs(1),
	RunE:  statusShortcut(task.StatusPending),
}

// delete
var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more tasks",
	Long: `Delete one or more tasks.

Asks for confirmation for each task unless --yes is given. Without a
terminal the answers are read line by line from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

var deleteYes bool

// show
var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var showJSON bool

func init() {
	rootCmd.AddCommand(addCmd, editCmd, statusCmd, doneCmd, startCmd, reopenCmd, deleteCmd, showCmd)

	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", string(task.PriorityMedium), "Priority ("+validation.FormatChoices(task.ValidPriorities())+")")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", string(task.StatusPending), "Status ("+validation.FormatChoices(task.ValidStatuses())+")")
	addCmd.Flags().BoolVarP(&addEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	addCmd.Flags().BoolVar(&addNoEdit, "no-edit", false, "Do not open $EDITOR")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date")
	editCmd.Flags().BoolVarP(&editEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	editCmd.Flags().BoolVar(&editNoEdit, "no-edit", false, "Do not open $EDITOR")

	addTaskFlagAliases(addCmd, editCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}

	value := strings.TrimSuffix(string(input), "\n")
	value = strings.TrimSuffix(value, "\r")
	return value, nil
}

// resolveDue turns a due expression into a YYYY-MM-DD day.
func resolveDue(expr string, now time.Time, loc *time.Location) (string, error) {
	return datemath.Resolve(expr, now, loc)
}

// shouldUseEditor decides whether to open $EDITOR: --edit forces it,
// --no-edit skips it, otherwise it opens when interactive and no field
// flags were given.
func shouldUseEditor(hasFlags, forceEdit, noEdit, interactive bool) bool {
	if forceEdit {
		return true
	}
	if noEdit || hasFlags {
		return false
	}
	return interactive
}

// inputFromEditor opens the editor on data and resolves the due expression
// the user typed.
func inputFromEditor(data editor.TaskData, now time.Time, loc *time.Location) (task.Input, error) {
	parsed, err := editor.EditTask(data)
	if err != nil {
		return task.Input{}, err
	}
	due, err := resolveDue(parsed.Due, now, loc)
	if err != nil {
		return task.Input{}, err
	}
	return parsed.Input(due), nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(addDescription, os.Stdin)
		if err != nil {
			return err
		}
		addDescription = desc
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	now, loc := a.dash.Now(), a.dash.Location()

	priority, err := task.ParsePriority(addPriority)
	if err != nil {
		return err
	}
	status, err := task.ParseStatus(addStatus)
	if err != nil {
		return err
	}
	due, err := resolveDue(addDue, now, loc)
	if err != nil {
		return err
	}

	in := task.Input{
		Description: addDescription,
		DueDate:     due,
		Priority:    priority,
		Status:      status,
	}
	if len(args) > 0 {
		in.Title = args[0]
	}

	if shouldUseEditor(createFlagsGiven(cmd.Flags(), args), addEdit, addNoEdit, editor.IsInteractive()) {
		data := editor.DefaultCreateData()
		data.Title = in.Title
		data.Description = in.Description
		data.Due = in.DueDate
		data.Priority = string(in.Priority)
		data.Status = string(in.Status)

		in, err = inputFromEditor(data, now, loc)
		if err != nil {
			return err
		}
	} else if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required (use --edit to open editor)")
	}

	if err := a.dash.Add(cmd.Context(), in); err != nil {
		return err
	}

	created := newestTaskTitled(a.dash.Tasks(), strings.TrimSpace(in.Title))
	if created.ID.IsZero() {
		fmt.Printf("Created task: %s\n", in.Title)
		return nil
	}
	fmt.Printf("Created task %s: %s\n", created.ID, created.Title)
	return nil
}

// createFlagsGiven reports whether add was given a title or any field flag.
func createFlagsGiven(flags *pflag.FlagSet, args []string) bool {
	if len(args) > 0 {
		return true
	}
	for _, name := range []string{"description", "due", "priority", "status"} {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

// newestTaskTitled returns the last task in server order with the given
// title.
func newestTaskTitled(tasks []task.Task, title string) task.Task {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Title == title {
			return tasks[i]
		}
	}
	return task.Task{}
}

func runEdit(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(editDescription, os.Stdin)
		if err != nil {
			return err
		}
		editDescription = desc
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.findTask(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	now, loc := a.dash.Now(), a.dash.Location()

	in := task.InputFrom(existing, loc)
	if cmd.Flags().Changed("title") {
		in.Title = editTitle
	}
	if cmd.Flags().Changed("description") {
		in.Description = editDescription
	}
	if cmd.Flags().Changed("due") {
		if in.DueDate, err = resolveDue(editDue, now, loc); err != nil {
			return err
		}
	}

	hasFlags := cmd.Flags().Changed("title") ||
		cmd.Flags().Changed("description") ||
		cmd.Flags().Changed("due")
	if shouldUseEditor(hasFlags, editEdit, editNoEdit, editor.IsInteractive()) {
		data := editor.DataFromTask(existing, loc)
		data.Title = in.Title
		data.Description = in.Description
		data.Due = in.DueDate

		in, err = inputFromEditor(data, now, loc)
		if err != nil {
			return err
		}
	} else if !hasFlags {
		return fmt.Errorf("nothing to change (use --title, --description, --due, or --edit)")
	}

	if err := a.dash.Edit(cmd.Context(), existing.ID, in); err != nil {
		return err
	}
	fmt.Printf("Updated task %s: %s\n", existing.ID, strings.TrimSpace(in.Title))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := task.ParseStatus(args[1])
	if err != nil {
		return err
	}
	return setStatus(cmd, args[:1], status)
}

func statusShortcut(status task.Status) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args, status)
	}
}

func setStatus(cmd *cobra.Command, ids []string, status task.Status) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return err
	}
	for _, rawID := range ids {
		t, err := a.lookup(rawID)
		if err != nil {
			return err
		}
		if err := a.dash.SetStatus(cmd.Context(), t.ID, status); err != nil {
			return err
		}
		fmt.Println(activity.StatusChanged(t.Title, status))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return err
	}

	p := prompt.New()
	for _, rawID := range args {
		t, err := a.lookup(rawID)
		if err != nil {
			return err
		}
		if !deleteYes {
			ok, err := p.Confirm(fmt.Sprintf("Do you want to delete %q?", t.Title))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("Kept task %s: %s\n", t.ID, t.Title)
				continue
			}
		}
		if err := a.dash.Delete(cmd.Context(), t.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s: %s\n", t.ID, t.Title)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return err
	}

	items := make([]task.Task, 0, len(args))
	for _, rawID := range args {
		t, err := a.lookup(rawID)
		if err != nil {
			return err
		}
		items = append(items, t)
	}

	if showJSON {
		return encodeJSONToStdout(items)
	}

	now, loc := a.dash.Now(), a.dash.Location()
	for i, t := range items {
		if i > 0 {
			fmt.Println()
			fmt.Println("---")
			fmt.Println()
		}
		fmt.Print(formatTaskDetail(t, now, loc))
	}
	return nil
}
