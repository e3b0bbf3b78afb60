package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/client/client"
)

// describe renders err for the operator.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized. Please log in."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Try again later."
	case errors.As(err, &apiErr):
		if len(apiErr.Fields) == 0 {
			return apiErr.Message
		}
		msgs := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			msgs = append(msgs, f.Message)
		}
		return apiErr.Message + ": " + strings.Join(msgs, "; ")
	default:
		return err.Error()
	}
}

var errUsage = errors.New("usage")

func usageError(usage string) error {
	return fmt.Errorf("%w: %s", errUsage, usage)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
