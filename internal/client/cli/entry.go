package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook-app/daybook/internal/client/services"
	"github.com/daybook-app/daybook/internal/journal"
)

// resolveDate parses an optional YYYY-MM-DD argument, defaulting to today.
func resolveDate(arg string) (journal.Date, error) {
	if arg == "" {
		return journal.DateOf(time.Now()), nil
	}
	return journal.ParseDate(arg)
}

func printField(out func(format string, a ...any), label string, value *string) {
	if value == nil || *value == "" {
		out("  %-10s —\n", label)
		return
	}
	out("  %-10s %s\n", label, *value)
}

func (a *App) printView(view *services.EntryView) {
	out := func(format string, args ...any) { fmt.Fprintf(a.out, format, args...) }

	marker := "unsynced"
	if view.Synced {
		marker = "synced"
	}
	out("%s (%s)\n", view.Date, marker)
	printField(out, "person:", view.Person)
	printField(out, "grace:", view.Grace)
	printField(out, "gratitude:", view.Gratitude)
}

func (a *App) today(ctx context.Context, arg string) error {
	date, err := resolveDate(arg)
	if err != nil {
		return err
	}

	view, err := a.journal.Open(ctx, date)
	if err != nil {
		return err
	}
	if view == nil {
		fmt.Fprintf(a.out, "%s — no entry yet. Use 'write' to start one.\n", date)
	} else {
		a.printView(view)
	}

	fb, err := a.journal.Flashbacks(ctx, date)
	if err != nil {
		return err
	}
	if fb.WeekAgo != nil {
		fmt.Fprintf(a.out, "A week ago (%s): %s\n", fb.WeekAgo.Date, fb.WeekAgo.Snippet)
	}
	if fb.YearAgo != nil {
		fmt.Fprintf(a.out, "A year ago (%s): %s\n", fb.YearAgo.Date, fb.YearAgo.Snippet)
	}
	return nil
}

// optionalField turns an input line into a journal field: empty input means
// the field is absent for the day.
func optionalField(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) write(ctx context.Context, arg string) error {
	date, err := resolveDate(arg)
	if err != nil {
		return err
	}

	person, err := getSimpleText(a.reader, "Who did you connect with today?", a.out)
	if err != nil {
		return err
	}
	grace, err := getSimpleText(a.reader, "What grace did you notice?", a.out)
	if err != nil {
		return err
	}
	gratitude, err := getSimpleText(a.reader, "What are you grateful for?", a.out)
	if err != nil {
		return err
	}

	view, err := a.journal.Save(ctx, date, services.Fields{
		Person:    optionalField(person),
		Grace:     optionalField(grace),
		Gratitude: optionalField(gratitude),
	})
	if err != nil {
		return err
	}

	if view.Synced {
		fmt.Fprintf(a.out, "Saved %s and synced.\n", date)
	} else {
		fmt.Fprintf(a.out, "Saved %s locally; will sync when online.\n", date)
	}

	count, err := a.journal.SaveCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 && count%10 == 0 {
		fmt.Fprintf(a.out, "That's %d entries saved. Try 'history' to look back.\n", count)
	}
	return nil
}

func (a *App) history(ctx context.Context) error {
	views, err := a.journal.History(ctx)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No entries yet.")
		return nil
	}

	for i := range views {
		a.printView(&views[i])
	}
	return nil
}
