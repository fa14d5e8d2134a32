package cli

import (
	"context"
	"fmt"
)

// login walks the magic-link flow: request a link for an email address,
// then exchange the token the user received out-of-band for an access
// token. After signing in, queued entries are pushed right away.
func (a *App) login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.journal.RequestSignIn(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Check your inbox for a sign-in link.")

	token, err := getSimpleText(a.reader, "Paste the sign-in token", a.out)
	if err != nil {
		return err
	}

	if err := a.journal.CompleteSignIn(ctx, token); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed in.")

	return a.sync(ctx)
}
