// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// console.go - The interactive authvault console.
//
// Command: (interactive, no subcommands)
//
// Login phase commands:
//   login               Authenticate an existing account
//   register            Create an account with an immediate password
//   help                Show available commands
//   quit                Exit
//
// Menu phase commands (standard users):
//   passwd              Change own password
//   logout              Return to the login phase
//   quit                Exit
//
// Menu phase commands (administrators, additionally):
//   list                List all accounts
//   add <user>          Create an account without a password
//   block <user>        Disable logins for an account
//   unblock <user>      Re-enable logins for an account
//   promote <user>      Grant administrator rights
//   rules <user>        Edit an account's password policy

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jeranaias/authvault/internal/auth"
	"github.com/jeranaias/authvault/internal/config"
	"github.com/jeranaias/authvault/internal/rules"
	"github.com/jeranaias/authvault/internal/util"
)

// Console drives the interactive session over an engine and the
// administration service.
type Console struct {
	cfg    *config.Config
	engine *auth.Engine
	admin  *auth.Admin
	prompt *Prompter

	// limiter throttles login attempts to blunt scripted guessing.
	// nil when throttling is disabled.
	limiter *rate.Limiter
}

// NewConsole creates a console. Close must be called before exit.
func NewConsole(cfg *config.Config, engine *auth.Engine, admin *auth.Admin) *Console {
	c := &Console{
		cfg:    cfg,
		engine: engine,
		admin:  admin,
		prompt: NewPrompter(),
	}
	if n := cfg.Security.LoginRatePerMinute; n > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), 5)
	}
	return c
}

// Close restores the terminal state.
func (c *Console) Close() {
	c.prompt.Close()
}

// Run executes the console until exit and returns the process exit
// code. A second call after a lockout keeps refusing logins; the
// attempt budget only resets with a new process.
func (c *Console) Run() int {
	if err := c.engine.EnsureAdminExists(c.bootstrapSetup); err != nil {
		if errors.Is(err, auth.ErrStartupAborted) {
			fmt.Println(WarningStyle.Render("Setup declined. Nothing to do."))
			return ExitAuthError
		}
		printError(err)
		return ExitGeneralError
	}

	fmt.Println(TitleStyle.Render("authvault"))
	fmt.Println(DimStyle.Render("Type 'help' for available commands."))

	for {
		input, err := c.prompt.ReadLine("authvault> ")
		if err != nil {
			return ExitSuccess
		}

		switch input {
		case "":
			continue
		case "help":
			c.printLoginHelp()
		case "login":
			code, done := c.login()
			if done {
				return code
			}
		case "register":
			c.register()
		case "quit", "exit":
			return ExitSuccess
		default:
			fmt.Println(DimStyle.Render("Unknown command. Type 'help' for available commands."))
		}
	}
}

func (c *Console) printLoginHelp() {
	fmt.Println(ValueStyle.Render("  login      Authenticate an existing account"))
	fmt.Println(ValueStyle.Render("  register   Create an account with an immediate password"))
	fmt.Println(ValueStyle.Render("  quit       Exit"))
}

// bootstrapSetup collects the very first administrator password.
func (c *Console) bootstrapSetup(username, desc string) (string, string, bool) {
	fmt.Println(WarningStyle.Render(fmt.Sprintf("No password is set for %q yet.", username)))
	fmt.Println(ValueStyle.Render("Choose one now to finish setup."))
	if desc != "" {
		fmt.Println(DimStyle.Render("Policy: " + desc))
	}

	password, err := c.prompt.ReadSecret("New password: ")
	if err != nil {
		return "", "", false
	}
	confirmation, err := c.prompt.ReadSecret("Confirm password: ")
	if err != nil {
		return "", "", false
	}
	return password, confirmation, true
}

// login runs one login attempt and, on success, the session menu.
// done is true when the process should exit with code.
func (c *Console) login() (code int, done bool) {
	if c.limiter != nil {
		// Blocks briefly under a guessing burst.
		_ = c.limiter.Wait(context.Background())
	}

	username, err := c.prompt.ReadLine("Username: ")
	if err != nil {
		return 0, false
	}
	password, err := c.prompt.ReadSecret("Password: ")
	if err != nil {
		return 0, false
	}

	out, err := c.engine.AttemptLogin(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrTooManyAttempts) {
			fmt.Println(ErrorStyle.Render("Too many failed attempts. Goodbye."))
			return ExitSecurityError, true
		}
		printError(err)
		return 0, false
	}

	session := out.Session
	if out.NeedsSetup {
		session, err = c.firstPassword(username)
		if err != nil {
			return 0, false
		}
	}

	printSuccess(fmt.Sprintf("Logged in as %s (%s).", session.Username, session.Role))
	return c.sessionMenu(session)
}

// firstPassword walks the first-login setup for an account that has
// no password yet.
func (c *Console) firstPassword(username string) (auth.Session, error) {
	fmt.Println(WarningStyle.Render("This account has no password yet. Choose one now."))
	if policy, err := c.engine.Policy(username); err == nil {
		if desc := policy.Describe(); desc != "" {
			fmt.Println(DimStyle.Render("Policy: " + desc))
		}
	}

	for {
		candidate, err := c.prompt.ReadSecret("New password: ")
		if err != nil {
			return auth.Session{}, err
		}
		confirmation, err := c.prompt.ReadSecret("Confirm password: ")
		if err != nil {
			return auth.Session{}, err
		}

		session, err := c.engine.SetInitialPassword(username, candidate, confirmation)
		if err != nil {
			var violation *rules.ViolationError
			if errors.As(err, &violation) {
				printError(err)
				continue
			}
			printError(err)
			return auth.Session{}, err
		}
		printSuccess("Password set.")
		return session, nil
	}
}

// register creates a new standard account from the login phase.
func (c *Console) register() {
	username, err := c.prompt.ReadLine("Username: ")
	if err != nil {
		return
	}
	password, err := c.prompt.ReadSecret("Password: ")
	if err != nil {
		return
	}
	confirmation, err := c.prompt.ReadSecret("Confirm password: ")
	if err != nil {
		return
	}

	if err := c.engine.Register(username, password, confirmation, false); err != nil {
		printError(err)
		return
	}
	printSuccess(fmt.Sprintf("Account %q created.", username))
}

// =============================================================================
// SESSION MENUS
// =============================================================================

// sessionMenu serves an authenticated session until logout or quit.
func (c *Console) sessionMenu(session auth.Session) (code int, done bool) {
	prompt := fmt.Sprintf("%s> ", session.Username)
	for {
		input, err := c.prompt.ReadLine(prompt)
		if err != nil {
			return ExitSuccess, true
		}
		cmd, arg := splitCommand(input)

		switch cmd {
		case "":
			continue
		case "help":
			c.printSessionHelp(session)
		case "passwd":
			c.changePassword(session)
		case "logout":
			fmt.Println(DimStyle.Render("Logged out."))
			return 0, false
		case "quit", "exit":
			return ExitSuccess, true
		case "list", "add", "block", "unblock", "promote", "rules":
			if !session.IsAdmin() {
				printError(auth.ErrNotAuthorized)
				continue
			}
			c.adminCommand(session, cmd, arg)
		default:
			fmt.Println(DimStyle.Render("Unknown command. Type 'help' for available commands."))
		}
	}
}

func (c *Console) printSessionHelp(session auth.Session) {
	fmt.Println(ValueStyle.Render("  passwd           Change your password"))
	if session.IsAdmin() {
		fmt.Println(ValueStyle.Render("  list             List all accounts"))
		fmt.Println(ValueStyle.Render("  add <user>       Create an account without a password"))
		fmt.Println(ValueStyle.Render("  block <user>     Disable logins for an account"))
		fmt.Println(ValueStyle.Render("  unblock <user>   Re-enable logins for an account"))
		fmt.Println(ValueStyle.Render("  promote <user>   Grant administrator rights"))
		fmt.Println(ValueStyle.Render("  rules <user>     Edit an account's password policy"))
	}
	fmt.Println(ValueStyle.Render("  logout           Return to the login screen"))
	fmt.Println(ValueStyle.Render("  quit             Exit"))
}

func (c *Console) adminCommand(session auth.Session, cmd, arg string) {
	needsArg := cmd != "list"
	if needsArg && arg == "" {
		var err error
		arg, err = c.prompt.ReadLine("Username: ")
		if err != nil {
			return
		}
	}

	var err error
	switch cmd {
	case "list":
		c.listUsers(session)
		return
	case "add":
		err = c.admin.AddUser(session, arg)
	case "block":
		err = c.admin.Block(session, arg)
	case "unblock":
		err = c.admin.Unblock(session, arg)
	case "promote":
		err = c.admin.Promote(session, arg)
	case "rules":
		err = c.editRules(session, arg)
	}
	if err != nil {
		printError(err)
		return
	}
	printSuccess(fmt.Sprintf("%s %s: done.", cmd, arg))
}

func (c *Console) listUsers(session auth.Session) {
	users, err := c.admin.ListUsers(session)
	if err != nil {
		printError(err)
		return
	}
	for _, u := range users {
		var flags []string
		if u.Admin {
			flags = append(flags, "admin")
		}
		if u.Blocked {
			flags = append(flags, "blocked")
		}
		if !u.HasPass {
			flags = append(flags, "no password")
		}
		line := LabelStyle.Render(util.TruncateRunes(u.Username, 15)) +
			ValueStyle.Render(strings.Join(flags, ", "))
		if desc := u.Rules.Describe(); desc != "" {
			line += DimStyle.Render("  " + desc)
		}
		fmt.Println(line)
	}
}

// editRules collects a password policy interactively and attaches it
// to the named account.
func (c *Console) editRules(session auth.Session, username string) error {
	var r rules.Rules

	for {
		answer, err := c.prompt.ReadLine("Minimum length (0 for none): ")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 0 {
			fmt.Println(DimStyle.Render("Enter a non-negative number."))
			continue
		}
		r.MinLength = n
		break
	}

	var err error
	if r.RequireUpper, err = c.prompt.Confirm("Require an uppercase letter?", false); err != nil {
		return err
	}
	if r.RequireLower, err = c.prompt.Confirm("Require a lowercase letter?", false); err != nil {
		return err
	}
	if r.RequireDigit, err = c.prompt.Confirm("Require a digit?", false); err != nil {
		return err
	}
	if r.RequireSpecial, err = c.prompt.Confirm("Require a special character?", false); err != nil {
		return err
	}

	return c.admin.SetRules(session, username, r)
}

// changePassword rotates the session's own password.
func (c *Console) changePassword(session auth.Session) {
	oldPassword, err := c.prompt.ReadSecret("Current password: ")
	if err != nil {
		return
	}
	newPassword, err := c.prompt.ReadSecret("New password: ")
	if err != nil {
		return
	}
	confirmation, err := c.prompt.ReadSecret("Confirm password: ")
	if err != nil {
		return
	}

	if err := c.engine.ChangePassword(session, oldPassword, newPassword, confirmation); err != nil {
		printError(err)
		return
	}
	printSuccess("Password changed.")
}

// splitCommand splits "cmd arg" into its parts.
func splitCommand(input string) (cmd, arg string) {
	parts := strings.SplitN(input, " ", 2)
	cmd = parts[0]
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}
