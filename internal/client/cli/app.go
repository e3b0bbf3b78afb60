package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/defcomm/internal/client/client"
	"github.com/dmitrijs2005/defcomm/internal/client/config"
	"github.com/dmitrijs2005/defcomm/internal/cryptox"
	"github.com/dmitrijs2005/defcomm/internal/logging"
)

type App struct {
	config *config.Config
	api    client.Client
	cipher *cryptox.Cipher
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu        sync.Mutex
	user      *client.User
	stopPolls context.CancelFunc
	groupIDs  map[int64]bool
	directory map[string]int64
	pending   int
}

func NewApp(c *config.Config, l logging.Logger) (*App, error) {
	api, err := client.NewAPIClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(c.Passphrase)
	if err != nil {
		return nil, err
	}
	return newApp(c, l, api, cipher, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, l logging.Logger, api client.Client, cipher *cryptox.Cipher, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api,
		cipher: cipher,
		logger: l,
		reader: bufio.NewReader(in),
		out:    &syncWriter{w: out},
	}
}

// syncWriter lets pollers print while the REPL is writing.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Run restores an existing session if the server still accepts it, then
// hands control to the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.stopPollers()

	a.printf("DefComm secure terminal (type 'help' for commands)\n")
	if err := a.api.Health(ctx); err != nil {
		a.printf("Warning: %s\n", describe(err))
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) current() *client.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) isLoggedIn() bool { return a.current() != nil }

func (a *App) isHQ() bool {
	u := a.current()
	return u != nil && u.IsHQ() && u.IsApproved
}

func (a *App) status() string {
	u := a.current()
	switch {
	case u == nil:
		return "offline"
	case !u.IsApproved:
		return u.Username + " [awaiting approval]"
	case u.IsHQ():
		return u.Username + " [HQ]"
	default:
		return u.Username
	}
}

// startSession records the user and starts the background pollers.
func (a *App) startSession(ctx context.Context, u *client.User) {
	a.stopPollers()

	pctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.user = u
	a.stopPolls = cancel
	a.groupIDs = nil
	a.directory = nil
	a.pending = -1
	a.mu.Unlock()

	for _, p := range a.pollers(u) {
		go p.Run(pctx)
	}
}

func (a *App) endSession() {
	a.stopPollers()
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
}

func (a *App) stopPollers() {
	a.mu.Lock()
	cancel := a.stopPolls
	a.stopPolls = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *App) expired() {
	a.stopPollers()
	a.mu.Lock()
	wasIn := a.user != nil
	a.user = nil
	a.mu.Unlock()
	if wasIn {
		a.printf("\nSession expired. Please log in again.\n")
	}
}

func (a *App) pollers(u *client.User) []*client.Poller {
	ps := []*client.Poller{
		{Name: "session", Interval: a.config.SessionInterval, Fetch: a.refreshSession},
		{Name: "groups", Interval: a.config.GroupsInterval, Fetch: a.refreshGroups},
	}
	if u.IsHQ() && u.IsApproved {
		ps = append(ps,
			&client.Poller{Name: "approvals", Interval: a.config.ApprovalsInterval, Fetch: a.refreshPending},
			&client.Poller{Name: "directory", Interval: a.config.DirectoryInterval, Fetch: a.refreshDirectory},
		)
	}
	for _, p := range ps {
		p.Logger = a.logger
		p.OnUnauthorized = a.expired
	}
	return ps
}

func (a *App) refreshSession(ctx context.Context) error {
	u, err := a.api.Check(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	prev := a.user
	a.user = u
	a.mu.Unlock()

	if prev != nil && !prev.IsApproved && u.IsApproved {
		a.printf("\nYour account has been approved by HQ. Log in again to load your permissions.\n")
	}
	return nil
}

// refreshGroups announces groups the user was added to since the last
// poll. The first poll only fills the cache.
func (a *App) refreshGroups(ctx context.Context) error {
	groups, err := a.api.ListGroups(ctx)
	if err != nil {
		return err
	}

	ids := make(map[int64]bool, len(groups))
	var fresh []string
	a.mu.Lock()
	for _, g := range groups {
		ids[g.ID] = true
		if a.groupIDs != nil && !a.groupIDs[g.ID] {
			fresh = append(fresh, g.Name)
		}
	}
	a.groupIDs = ids
	a.mu.Unlock()

	for _, name := range fresh {
		a.printf("\nYou were added to group %q\n", name)
	}
	return nil
}

func (a *App) refreshPending(ctx context.Context) error {
	pending, err := a.api.ListPending(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	changed := a.pending != len(pending)
	a.pending = len(pending)
	a.mu.Unlock()

	if changed && len(pending) > 0 {
		a.printf("\n%d operative(s) awaiting approval. Type 'pending' to review.\n", len(pending))
	}
	return nil
}

// refreshDirectory keeps the username lookup used by mkgroup and
// addmember.
func (a *App) refreshDirectory(ctx context.Context) error {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	dir := make(map[string]int64, len(users))
	for _, u := range users {
		dir[u.Username] = u.ID
	}
	a.mu.Lock()
	a.directory = dir
	a.mu.Unlock()
	return nil
}
