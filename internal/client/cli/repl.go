package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	ListOccurrences(ctx context.Context, more bool) error
	RefreshOccurrences(ctx context.Context) error
	ReportOccurrence(ctx context.Context) error
	ListVisitors(ctx context.Context, more bool) error
	AuthorizeVisitor(ctx context.Context, args []string) error
	CancelVisitor(ctx context.Context, args []string) error
	ListNotifications(ctx context.Context, more bool) error
	MarkRead(ctx context.Context, args []string) error
	MarkAllRead(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the CondoWay CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - whoami         — show the current resident
//	  - occ [more]     — list occurrences / load the next page
//	  - occrefresh     — reload the occurrence list
//	  - report         — report a new occurrence
//	  - visitors [more]— list pre-authorized visitors
//	  - authorize <id> — authorize a visitor
//	  - cancel <id>    — cancel a visit
//	  - notif [more]   — list notifications
//	  - read <id>      — mark a notification read
//	  - readall        — mark every notification read
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cw> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]
		more := len(args) > 0 && args[0] == "more"

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, occ [more], occrefresh, report, visitors [more], authorize <id>, cancel <id>, notif [more], read <id>, readall, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "occ", "occurrences":
			_ = a.ListOccurrences(ctx, more)

		case "occrefresh":
			_ = a.RefreshOccurrences(ctx)

		case "report":
			_ = a.ReportOccurrence(ctx)

		case "visitors":
			_ = a.ListVisitors(ctx, more)

		case "authorize":
			_ = a.AuthorizeVisitor(ctx, args)

		case "cancel":
			_ = a.CancelVisitor(ctx, args)

		case "notif", "notifications":
			_ = a.ListNotifications(ctx, more)

		case "read":
			_ = a.MarkRead(ctx, args)

		case "readall":
			_ = a.MarkAllRead(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
