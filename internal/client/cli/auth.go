package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/defcomm/internal/client/client"
)

// Indirections over the interactive input helpers so tests can swap them.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errBadCredentials = errors.New("invalid username or password")

func (a *App) credentials() (string, string, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// Register creates an account. "register hq" requests the HQ role, which
// still needs approval by an existing HQ operator.
func (a *App) Register(ctx context.Context, args []string) error {
	role := ""
	if len(args) > 0 {
		role = args[0]
	}

	username, password, err := a.credentials()
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, username, password, role)
	if err != nil {
		return err
	}

	a.startSession(ctx, u)
	a.printf("Registered %s. Your account is awaiting HQ approval.\n", u.Username)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	username, password, err := a.credentials()
	if err != nil {
		return err
	}

	u, err := a.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errBadCredentials
		}
		return err
	}

	a.startSession(ctx, u)
	if !u.IsApproved {
		a.printf("Welcome, %s. Your account is awaiting HQ approval.\n", u.Username)
		return nil
	}
	a.printf("Welcome, %s.\n", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.endSession()
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out.\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	u, err := a.api.Check(ctx)
	if err != nil {
		return err
	}
	a.printf("%s (id %d) role=%s status=%s\n", u.Username, u.ID, u.Role, u.Status)
	return nil
}
