package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) error
	ChangeCredentials(ctx context.Context) error
	Unregister(ctx context.Context) error
	History(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the gophdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by handlers are translated
// with userMessage and printed; the loop keeps going. The loop exits on EOF
// or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                show available commands
//	  - register            create an account
//	  - login               authenticate
//	  - whoami              show the session state
//	  - exit | quit         leave the program
//
//	Logged in:
//	  - put <key> <value>   store a value
//	  - get <key>           print a value
//	  - del <key>           delete a value
//	  - keys [prefix]       list keys
//	  - history             show the activity log
//	  - passwd              change password and PIN
//	  - unregister          delete the account and its data
//	  - logout              log out
//
// Commands that need a session are also accepted when logged out; they fail
// with a "log in first" message, reads simply come back empty.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("gophdesk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: put, get, del, keys, history, whoami, passwd, unregister, logout, exit")
			} else {
				printlnFn("Available commands: register, login, whoami, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "put":
			if len(args) < 2 {
				printlnFn("Usage: put <key> <value>")
				continue
			}
			cmdErr = a.Put(ctx, args[0], tail(line, 2))

		case "get":
			if len(args) != 1 {
				printlnFn("Usage: get <key>")
				continue
			}
			cmdErr = a.Get(ctx, args[0])

		case "del":
			if len(args) != 1 {
				printlnFn("Usage: del <key>")
				continue
			}
			cmdErr = a.Delete(ctx, args[0])

		case "keys":
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			cmdErr = a.Keys(ctx, prefix)

		case "history":
			cmdErr = a.History(ctx)

		case "passwd":
			cmdErr = a.ChangeCredentials(ctx)

		case "unregister":
			cmdErr = a.Unregister(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(userMessage(cmdErr))
		}
	}
}

// tail returns line without its first n whitespace-separated fields,
// preserving the spacing inside the remainder.
func tail(line string, n int) string {
	s := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		idx := strings.IndexFunc(s, unicode.IsSpace)
		if idx < 0 {
			return ""
		}
		s = strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
	}
	return s
}
