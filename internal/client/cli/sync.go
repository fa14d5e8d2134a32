package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/common"
)

func (a *App) sync(ctx context.Context) error {
	summary, err := a.journal.PushUnsynced(ctx)
	if err != nil {
		if errors.Is(err, common.ErrIdentityRequired) {
			fmt.Fprintln(a.out, "Sign in first: 'login'.")
			return nil
		}
		if errors.Is(err, common.ErrTransport) {
			fmt.Fprintln(a.out, "Server unreachable; entries stay queued.")
			return nil
		}
		return err
	}

	if summary.Pushed == 0 && summary.Skipped == 0 && summary.Rejected == 0 {
		fmt.Fprintln(a.out, "Nothing to sync.")
		return nil
	}

	fmt.Fprintf(a.out, "Synced: %d pushed, %d already up to date, %d rejected.\n",
		summary.Pushed, summary.Skipped, summary.Rejected)
	return nil
}

// trySync is the opportunistic catch-up pass run at startup; failures are
// silent since the next explicit sync will retry.
func (a *App) trySync(ctx context.Context) {
	_, _ = a.journal.PushUnsynced(ctx)
}

func (a *App) status(ctx context.Context) error {
	signedIn, err := a.journal.SignedIn(ctx)
	if err != nil {
		return err
	}

	online := a.journal.Online(ctx)

	state := "offline"
	if online {
		state = "online"
	}
	account := "signed out"
	if signedIn {
		account = "signed in"
	}
	fmt.Fprintf(a.out, "Server: %s. Account: %s.\n", state, account)

	views, err := a.journal.History(ctx)
	if err != nil {
		return err
	}
	unsynced := 0
	for _, v := range views {
		if !v.Synced {
			unsynced++
		}
	}
	fmt.Fprintf(a.out, "Entries: %d total, %d awaiting sync.\n", len(views), unsynced)
	return nil
}
