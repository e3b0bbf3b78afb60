package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isHQ() bool

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error

	Groups(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error

	Pending(ctx context.Context, args []string) error
	Approve(ctx context.Context, args []string) error
	Reject(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	SetRole(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
	MakeGroup(ctx context.Context, args []string) error
	RenameGroup(ctx context.Context, args []string) error
	DeleteGroup(ctx context.Context, args []string) error
	AddMember(ctx context.Context, args []string) error
	RemoveMember(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Recent(ctx context.Context, args []string) error
}

type command struct {
	usage string
	auth  bool
	hq    bool
	run   func(execIface, context.Context, []string) error
}

var commands = map[string]command{
	"register": {usage: "register [hq]", run: execIface.Register},
	"login":    {usage: "login", run: execIface.Login},
	"logout":   {usage: "logout", auth: true, run: execIface.Logout},
	"whoami":   {usage: "whoami", auth: true, run: execIface.WhoAmI},

	"groups": {usage: "groups", auth: true, run: execIface.Groups},
	"read":   {usage: "read <group> [page]", auth: true, run: execIface.Read},
	"send":   {usage: "send <group> <text>", auth: true, run: execIface.Send},
	"watch":  {usage: "watch <group>", auth: true, run: execIface.Watch},

	"pending":   {usage: "pending", auth: true, hq: true, run: execIface.Pending},
	"approve":   {usage: "approve <user>", auth: true, hq: true, run: execIface.Approve},
	"reject":    {usage: "reject <user>", auth: true, hq: true, run: execIface.Reject},
	"users":     {usage: "users", auth: true, hq: true, run: execIface.Users},
	"setrole":   {usage: "setrole <user> <user|hq>", auth: true, hq: true, run: execIface.SetRole},
	"deluser":   {usage: "deluser <user>", auth: true, hq: true, run: execIface.DeleteUser},
	"mkgroup":   {usage: "mkgroup <name> [members...]", auth: true, hq: true, run: execIface.MakeGroup},
	"rename":    {usage: "rename <group> <name>", auth: true, hq: true, run: execIface.RenameGroup},
	"rmgroup":   {usage: "rmgroup <group>", auth: true, hq: true, run: execIface.DeleteGroup},
	"addmember": {usage: "addmember <group> <user>", auth: true, hq: true, run: execIface.AddMember},
	"rmmember":  {usage: "rmmember <group> <user>", auth: true, hq: true, run: execIface.RemoveMember},
	"stats":     {usage: "stats", auth: true, hq: true, run: execIface.Stats},
	"recent":    {usage: "recent [limit]", auth: true, hq: true, run: execIface.Recent},
}

var helpOrder = []string{
	"register", "login", "logout", "whoami",
	"groups", "read", "send", "watch",
	"pending", "approve", "reject", "users", "setrole", "deluser",
	"mkgroup", "rename", "rmgroup", "addmember", "rmmember", "stats", "recent",
}

// runREPL reads commands until EOF, "exit" or "quit". Command errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("defcomm (%s) > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printlnFn(help(a))
			continue
		}

		cmd, ok := commands[name]
		switch {
		case !ok:
			printlnFn("Unknown command:", name)
		case cmd.auth && !a.isLoggedIn():
			printlnFn("Please log in first.")
		case cmd.hq && !a.isHQ():
			printlnFn("Not authorized to access this command.")
		default:
			if err := cmd.run(a, ctx, args); err != nil {
				printlnFn("Error:", describe(err))
			}
		}
	}
}

func help(a execIface) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, name := range helpOrder {
		cmd := commands[name]
		if cmd.auth && !a.isLoggedIn() {
			continue
		}
		if cmd.hq && !a.isHQ() {
			continue
		}
		b.WriteString("\n  " + cmd.usage)
	}
	b.WriteString("\n  exit")
	return b.String()
}
