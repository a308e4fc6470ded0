package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophdesk/internal/activity"
	"github.com/dmitrijs2005/gophdesk/internal/config"
	"github.com/dmitrijs2005/gophdesk/internal/credentials"
	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/filex"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/scoped"
	"github.com/dmitrijs2005/gophdesk/internal/session"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
	"github.com/dmitrijs2005/gophdesk/internal/storage/memory"
	"github.com/dmitrijs2005/gophdesk/internal/storage/sqlite"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	creds    *credentials.Store
	sessions *session.Manager
	data     *scoped.Store
	history  *activity.Log
	reader   *bufio.Reader
	out      io.Writer
	closer   func() error
}

// NewApp opens the persistent medium named by c and wires the client on top
// of it, reading from stdin and writing to stdout.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := logging.New(os.Stderr, c.LogLevel)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	hasher := cryptox.NewHasher(cryptox.DefaultParams)
	a := newApp(c, db, hasher, logger, os.Stdin, os.Stdout)
	a.closer = db.Close
	return a, nil
}

func newApp(c *config.Config, db storage.Store, hasher credentials.Hasher, logger logging.Logger, in io.Reader, out io.Writer) *App {
	creds := credentials.NewStore(db, hasher, logger)
	sessions := session.NewManager(creds, memory.NewStore(), logger, session.Options{MaxAge: c.SessionMaxAge})
	data := scoped.NewStore(db, sessions)

	return &App{
		config:   c,
		logger:   logger,
		creds:    creds,
		sessions: sessions,
		data:     data,
		history:  activity.NewLog(data),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run starts the REPL and releases the database when it returns.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "error closing database", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	st, err := a.sessions.State(ctx)
	return err == nil && st.LoggedIn()
}

// record appends to the user's history. A failure is logged and otherwise
// ignored: the command itself already succeeded.
func (a *App) record(ctx context.Context, op, detail string) {
	if err := a.history.Record(ctx, op, detail); err != nil {
		a.logger.Warn(ctx, "activity not recorded", "op", op, "error", err)
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
