package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/paging"
)

// ListOccurrences prints the occurrence list. With more=true the next page
// is appended first.
func (a *App) ListOccurrences(ctx context.Context, more bool) error {
	if a.occurrences == nil {
		fmt.Println("Not logged in")
		return nil
	}

	var err error
	if more {
		err = a.occurrences.LoadMore(ctx)
	} else if a.occurrences.Snapshot().CurrentPage == 0 {
		err = a.occurrences.LoadFirst(ctx)
	}
	if err != nil {
		fmt.Printf("Failed to load occurrences: %s\n", err.Error())
		return err
	}

	printOccurrences(a.occurrences.Snapshot())
	return nil
}

// RefreshOccurrences reloads the list from the first page.
func (a *App) RefreshOccurrences(ctx context.Context) error {
	if a.occurrences == nil {
		fmt.Println("Not logged in")
		return nil
	}
	if err := a.occurrences.Refresh(ctx); err != nil {
		fmt.Printf("Failed to refresh occurrences: %s\n", err.Error())
		return err
	}
	printOccurrences(a.occurrences.Snapshot())
	return nil
}

// ReportOccurrence interactively collects a new occurrence and submits it.
func (a *App) ReportOccurrence(ctx context.Context) error {
	if a.occurrences == nil {
		fmt.Println("Not logged in")
		return nil
	}

	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location (optional)", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.occurrences.Report(ctx, models.Occurrence{
		Title:       title,
		Category:    category,
		Location:    location,
		Description: description,
	})
	if err != nil {
		fmt.Printf("Failed to report occurrence: %s\n", err.Error())
		return err
	}

	fmt.Printf("Occurrence #%d registered\n", created.ID)
	return nil
}

func printOccurrences(snap paging.Snapshot[models.Occurrence]) {
	if len(snap.Items) == 0 {
		fmt.Println("No occurrences")
		return
	}
	for _, o := range snap.Items {
		fmt.Printf("#%d [%s] %s (%s)\n", o.ID, o.Status, o.Title, o.Category)
	}
	if snap.HasMore {
		fmt.Printf("(%d of %d, type 'occ more' for the next page)\n", len(snap.Items), snap.TotalCount)
	}
}
