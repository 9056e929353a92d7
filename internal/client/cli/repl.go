package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Users(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a. The prompt
// shows statusFn's result. Command errors are printed and the loop goes on;
// it ends on EOF or "exit"/"quit".
//
//	Not logged in: register, login, users, exit
//	Logged in:     me, users, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "ub%s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		var cmdErr error
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: me, users, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, users, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "users", "list":
			cmdErr = a.Users(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", describe(cmdErr))
		}
	}
}
