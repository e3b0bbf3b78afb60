package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/client/client"
)

// resolveUser accepts a numeric id or a username from the directory.
func (a *App) resolveUser(ctx context.Context, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return id, nil
	}

	lookup := func() (int64, bool) {
		a.mu.Lock()
		defer a.mu.Unlock()
		id, ok := a.directory[ref]
		return id, ok
	}
	if id, ok := lookup(); ok {
		return id, nil
	}
	if err := a.refreshDirectory(ctx); err != nil {
		return 0, err
	}
	if id, ok := lookup(); ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown user %q", ref)
}

func (a *App) printUsers(users []client.User) {
	if len(users) == 0 {
		a.printf("None.\n")
		return
	}
	for _, u := range users {
		a.printf("[%d] %-20s role=%-4s status=%s\n", u.ID, u.Username, u.Role, u.Status)
	}
}

func (a *App) Pending(ctx context.Context, _ []string) error {
	users, err := a.api.ListPending(ctx)
	if err != nil {
		return err
	}
	a.printUsers(users)
	return nil
}

func (a *App) Users(ctx context.Context, _ []string) error {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	a.printUsers(users)
	return nil
}

func (a *App) userAction(ctx context.Context, args []string, usage string, fn func(context.Context, int64) (*client.User, error)) error {
	if len(args) != 1 {
		return usageError(usage)
	}
	id, err := a.resolveUser(ctx, args[0])
	if err != nil {
		return err
	}
	u, err := fn(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s is now %s.\n", u.Username, u.Status)
	return nil
}

func (a *App) Approve(ctx context.Context, args []string) error {
	return a.userAction(ctx, args, "approve <user>", a.api.ApproveUser)
}

func (a *App) Reject(ctx context.Context, args []string) error {
	return a.userAction(ctx, args, "reject <user>", a.api.RejectUser)
}

func (a *App) SetRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("setrole <user> <user|hq>")
	}
	id, err := a.resolveUser(ctx, args[0])
	if err != nil {
		return err
	}
	role := args[1]
	u, err := a.api.UpdateUser(ctx, id, client.UserUpdate{Role: &role})
	if err != nil {
		return err
	}
	a.printf("%s now has role %s.\n", u.Username, u.Role)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("deluser <user>")
	}
	id, err := a.resolveUser(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	a.printf("User deleted.\n")
	return nil
}

func (a *App) printGroup(g *client.Group) {
	names := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		names = append(names, m.Username)
	}
	a.printf("[%d] %s: %s\n", g.ID, g.Name, strings.Join(names, ", "))
}

func (a *App) MakeGroup(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("mkgroup <name> [members...]")
	}
	members := make([]int64, 0, len(args)-1)
	for _, ref := range args[1:] {
		id, err := a.resolveUser(ctx, ref)
		if err != nil {
			return err
		}
		members = append(members, id)
	}

	g, err := a.api.CreateGroup(ctx, args[0], members)
	if err != nil {
		return err
	}
	a.printGroup(g)
	return nil
}

func (a *App) RenameGroup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("rename <group> <name>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	g, err := a.api.RenameGroup(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.printGroup(g)
	return nil
}

func (a *App) DeleteGroup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("rmgroup <group>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.api.DeleteGroup(ctx, id); err != nil {
		return err
	}
	a.printf("Group deleted.\n")
	return nil
}

func (a *App) memberAction(ctx context.Context, args []string, usage string, fn func(context.Context, int64, int64) (*client.Group, error)) error {
	if len(args) != 2 {
		return usageError(usage)
	}
	groupID, err := parseID(args[0])
	if err != nil {
		return err
	}
	userID, err := a.resolveUser(ctx, args[1])
	if err != nil {
		return err
	}
	g, err := fn(ctx, groupID, userID)
	if err != nil {
		return err
	}
	a.printGroup(g)
	return nil
}

func (a *App) AddMember(ctx context.Context, args []string) error {
	return a.memberAction(ctx, args, "addmember <group> <user>", a.api.AddMember)
}

func (a *App) RemoveMember(ctx context.Context, args []string) error {
	return a.memberAction(ctx, args, "rmmember <group> <user>", a.api.RemoveMember)
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	s, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Users: %d total, %d approved, %d pending\n", s.TotalUsers, s.ApprovedUsers, s.PendingUsers)
	a.printf("Groups: %d\nMessages: %d\n", s.TotalGroups, s.TotalMessages)
	return nil
}

// Recent lists message metadata. HQ never receives message contents here.
func (a *App) Recent(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError("recent [limit]")
		}
		limit = n
	}
	msgs, err := a.api.RecentMessages(ctx, limit)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.printf("No messages.\n")
		return nil
	}
	for _, m := range msgs {
		sender := m.SenderName
		if sender == "" {
			sender = "[deleted]"
		}
		a.printf("%s  #%d %s -> %s\n", stamp(m.Timestamp), m.ID, sender, m.GroupName)
	}
	return nil
}
