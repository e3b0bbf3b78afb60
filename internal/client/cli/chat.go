package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/client/client"
)

func (a *App) Groups(ctx context.Context, _ []string) error {
	groups, err := a.api.ListGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		a.printf("You are not a member of any group yet.\n")
		return nil
	}
	for _, g := range groups {
		names := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			names = append(names, m.Username)
		}
		a.printf("[%d] %s (%d members: %s)\n", g.ID, g.Name, len(g.Members), strings.Join(names, ", "))
	}
	return nil
}

func (a *App) printMessage(m client.Message) {
	a.printf("%s  %s: %s\n", stamp(m.Timestamp), m.SenderName(), a.cipher.Display(m.EncryptedText))
}

// Read shows one page of a group's history, oldest first. Without a page
// argument the last page is shown.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("read <group> [page]")
	}
	groupID, err := parseID(args[0])
	if err != nil {
		return err
	}

	page := 0
	if len(args) > 1 {
		page, err = strconv.Atoi(args[1])
		if err != nil || page < 1 {
			return usageError("read <group> [page]")
		}
	}

	p, err := a.api.ListMessages(ctx, groupID, page, 0)
	if err != nil {
		return err
	}
	if page == 0 && p.Pagination.Pages > 1 {
		p, err = a.api.ListMessages(ctx, groupID, int(p.Pagination.Pages), p.Pagination.Limit)
		if err != nil {
			return err
		}
	}

	if len(p.Messages) == 0 {
		a.printf("No messages.\n")
		return nil
	}
	for _, m := range p.Messages {
		a.printMessage(m)
	}
	a.printf("-- page %d of %d (%d messages) --\n", p.Pagination.Page, p.Pagination.Pages, p.Pagination.Total)
	return nil
}

func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("send <group> <text>")
	}
	groupID, err := parseID(args[0])
	if err != nil {
		return err
	}

	enc, err := a.cipher.Encrypt(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if _, err := a.api.SendMessage(ctx, groupID, enc); err != nil {
		return err
	}
	a.printf("Sent.\n")
	return nil
}

// Watch follows a group at the chat interval until Enter is pressed.
func (a *App) Watch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("watch <group>")
	}
	groupID, err := parseID(args[0])
	if err != nil {
		return err
	}

	// Membership is checked up front so a bad id fails immediately.
	first, err := a.api.ListMessages(ctx, groupID, 1, 1)
	if err != nil {
		return err
	}

	w := &chatWatch{app: a, groupID: groupID, seen: make(map[int64]bool), nextPage: 1}
	if first.Pagination.Total > 0 {
		w.nextPage = int((first.Pagination.Total-1)/watchPageSize) + 1
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	p := &client.Poller{
		Name:           "chat",
		Interval:       a.config.ChatInterval,
		Fetch:          w.fetch,
		Logger:         a.logger,
		OnUnauthorized: a.expired,
	}
	go func() {
		p.Run(wctx)
		close(done)
	}()

	a.printf("Watching group %d. Press Enter to stop.\n", groupID)
	_, _ = readLine(a.reader)
	cancel()
	<-done
	return nil
}

const watchPageSize = 100

// chatWatch prints each message once. It starts from the last page so only
// recent history is shown, and advances as pages fill up.
type chatWatch struct {
	app      *App
	groupID  int64
	seen     map[int64]bool
	nextPage int
}

func (w *chatWatch) fetch(ctx context.Context) error {
	for {
		p, err := w.app.api.ListMessages(ctx, w.groupID, w.nextPage, watchPageSize)
		if err != nil {
			return err
		}
		for _, m := range p.Messages {
			if w.seen[m.ID] {
				continue
			}
			w.seen[m.ID] = true
			w.app.printMessage(m)
		}
		if len(p.Messages) < watchPageSize || int64(w.nextPage) >= p.Pagination.Pages {
			return nil
		}
		w.nextPage++
	}
}
