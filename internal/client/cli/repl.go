package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	today(ctx context.Context, arg string) error
	write(ctx context.Context, arg string) error
	history(ctx context.Context) error
	sync(ctx context.Context) error
	login(ctx context.Context) error
	status(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop. It reads a line from the
// scanner, parses the first token as the command, and dispatches to methods
// on a. The loop exits on scanner EOF or when the user types "exit" or
// "quit".
//
// Commands:
//   - today [YYYY-MM-DD]  — show the entry for today (or the given date)
//   - write [YYYY-MM-DD]  — write the entry for today (or the given date)
//   - history             — list all entries, newest first
//   - sync                — push unsynced entries to the server
//   - login               — sign in with a magic link
//   - status              — connection and sync state
//   - help, exit, quit
//
// Errors from command handlers are printed and the loop continues; a broken
// command never takes the journal down.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, out io.Writer) {
	fmt.Fprintln(out, "Daybook (type 'help' for commands)")

	for {
		fmt.Fprint(out, "daybook> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var err error
		switch cmd {
		case "help":
			fmt.Fprintln(out, "Available commands: today [date], write [date], history, sync, login, status, exit")
		case "today":
			err = a.today(ctx, arg)
		case "write":
			err = a.write(ctx, arg)
		case "history":
			err = a.history(ctx)
		case "sync":
			err = a.sync(ctx)
		case "login":
			err = a.login(ctx)
		case "status":
			err = a.status(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
