package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus(ctx context.Context) string {
	st, err := a.sessions.State(ctx)
	if err != nil || !st.LoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s) ", st.Username)
}

// Root prints the banner and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to gophdesk CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}
