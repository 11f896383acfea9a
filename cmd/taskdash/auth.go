package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/taskdash/dashboard"
	"github.com/amonks/taskdash/internal/prompt"
	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the todo service",
	Long: `Log in to the todo service.

Prompts for the username (unless --username is given) and the password.
The session token is stored in the state directory.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var loginUsername string

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var signupUsername string

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	signupCmd.Flags().StringVarP(&signupUsername, "username", "u", "", "Username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	return login(cmd, a, prompt.New(), loginUsername)
}

// login asks for credentials and stores the resulting session.
func login(cmd *cobra.Command, a *app, p *prompt.Prompter, username string) error {
	username, password, err := p.Credentials(username)
	if err != nil {
		return err
	}
	if err := a.dash.Login(cmd.Context(), username, password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", username)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	username, password, err := prompt.New().Credentials(signupUsername)
	if err != nil {
		return err
	}
	if err := a.dash.Signup(cmd.Context(), username, password); err != nil {
		return err
	}
	fmt.Printf("Created account %s. Run `taskdash login` to sign in.\n", username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.dash.LoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := a.dash.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.dash.LoggedIn() {
		return dashboard.ErrNotLoggedIn
	}
	current := a.dash.Session().Current()
	fmt.Print(formatWhoami(current, a.client.BaseURL(), time.Now()))
	return nil
}

func formatWhoami(current session.Token, baseURL string, now time.Time) string {
	out := fmt.Sprintf("User:    %s\nServer:  %s\n", current.Username, baseURL)
	if !current.SavedAt.IsZero() {
		out += fmt.Sprintf("Since:   %s\n", ui.FormatTimeAgo(current.SavedAt, now))
	}

	claims, err := session.ParseClaims(current.Value)
	if err != nil || claims.ExpiresAt.IsZero() {
		return out
	}
	if claims.Expired(now) {
		return out + fmt.Sprintf("Expires: expired %s\n", ui.FormatTimeAgo(claims.ExpiresAt, now))
	}
	return out + fmt.Sprintf("Expires: in %s\n", ui.FormatDurationShort(claims.ExpiresAt.Sub(now)))
}
