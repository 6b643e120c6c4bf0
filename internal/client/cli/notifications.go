package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/condoway/client-go/internal/client/models"
)

// ListNotifications prints the notification feed. With more=true the next
// page is appended first; otherwise the feed is refreshed (subject to the
// controller's cache window).
func (a *App) ListNotifications(ctx context.Context, more bool) error {
	if a.notifications == nil {
		fmt.Println("Not logged in")
		return nil
	}

	var err error
	if more {
		err = a.notifications.LoadMore(ctx)
	} else {
		err = a.notifications.Refresh(ctx, false)
	}
	if err != nil {
		fmt.Printf("Failed to load notifications: %s\n", err.Error())
		return err
	}

	snap := a.notifications.Snapshot()
	if len(snap.Items) == 0 {
		fmt.Println("No notifications")
		return nil
	}
	for _, n := range snap.Items {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s #%d [%s] %s\n", marker, n.ID, n.Type, renderSpans(n))
	}
	if unread := a.notifications.UnreadCount(); unread > 0 {
		fmt.Printf("(%d unread)\n", unread)
	}
	if snap.HasMore {
		fmt.Println("(type 'notif more' for the next page)")
	}
	return nil
}

// MarkRead marks the notification named by args[0] as read.
func (a *App) MarkRead(ctx context.Context, args []string) error {
	if a.notifications == nil {
		fmt.Println("Not logged in")
		return nil
	}
	if len(args) == 0 {
		fmt.Println("Usage: read <id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid notification id: %s\n", args[0])
		return nil
	}
	a.notifications.MarkAsRead(ctx, id)
	return nil
}

// MarkAllRead marks every loaded notification as read.
func (a *App) MarkAllRead(ctx context.Context) error {
	if a.notifications == nil {
		fmt.Println("Not logged in")
		return nil
	}
	a.notifications.MarkAllAsRead(ctx)
	fmt.Println("All notifications marked as read")
	return nil
}

// renderSpans renders the formatted message with terminal emphasis, falling
// back to the plain message when no formatting applies.
func renderSpans(n models.Notification) string {
	if len(n.Formatted) == 0 {
		return n.Message
	}
	var b strings.Builder
	for _, s := range n.Formatted {
		if s.Bold {
			b.WriteString("\033[1m")
			b.WriteString(s.Text)
			b.WriteString("\033[0m")
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
