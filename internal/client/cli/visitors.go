package cli

import (
	"context"
	"fmt"
	"strconv"
)

// ListVisitors prints the visitor list. With more=true the next page is
// appended first.
func (a *App) ListVisitors(ctx context.Context, more bool) error {
	if a.visitors == nil {
		fmt.Println("Not logged in")
		return nil
	}

	var err error
	if more {
		err = a.visitors.LoadMore(ctx)
	} else if a.visitors.Snapshot().CurrentPage == 0 {
		err = a.visitors.LoadFirst(ctx)
	}
	if err != nil {
		fmt.Printf("Failed to load visitors: %s\n", err.Error())
		return err
	}

	snap := a.visitors.Snapshot()
	if len(snap.Items) == 0 {
		fmt.Println("No visitors")
		return nil
	}
	for _, v := range snap.Items {
		fmt.Printf("#%d [%s] %s, expected %s %s\n", v.ID, v.Status, v.Name, v.ExpectedDate, v.ExpectedTime)
	}
	if snap.HasMore {
		fmt.Println("(type 'visitors more' for the next page)")
	}
	return nil
}

// AuthorizeVisitor authorizes the visitor named by args[0].
func (a *App) AuthorizeVisitor(ctx context.Context, args []string) error {
	return a.visitorAction(ctx, args, "authorize", func(ctx context.Context, id int64) error {
		return a.visitors.Authorize(ctx, id)
	})
}

// CancelVisitor cancels the visit named by args[0].
func (a *App) CancelVisitor(ctx context.Context, args []string) error {
	return a.visitorAction(ctx, args, "cancel", func(ctx context.Context, id int64) error {
		return a.visitors.Cancel(ctx, id)
	})
}

func (a *App) visitorAction(ctx context.Context, args []string, verb string, fn func(context.Context, int64) error) error {
	if a.visitors == nil {
		fmt.Println("Not logged in")
		return nil
	}
	if len(args) == 0 {
		fmt.Printf("Usage: %s <id>\n", verb)
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid visitor id: %s\n", args[0])
		return nil
	}
	if err := fn(ctx, id); err != nil {
		fmt.Printf("Failed to %s visitor %d: %s\n", verb, id, err.Error())
		return err
	}
	fmt.Println("Done")
	return nil
}
