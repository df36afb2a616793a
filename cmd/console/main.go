package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/console"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/config"
)

const usage = `usage: console <command> [args]

commands:
  login <email>          sign in and persist the session
  logout                 revoke the session
  profile                show the signed-in user
  nav                    show the navigation menu for your role
  notifications [page]   list notifications, one page at a time
  watch                  poll the unread count until interrupted
  alerts [status]        list alerts, optionally filtered by status
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens, err := console.NewFileTokenStore(cfg.Console.TokenPath)
	if err != nil {
		log.Fatalf("failed to open token store: %v", err)
	}
	client := console.NewClient(cfg.Console.APIBaseURL, tokens, 15*time.Second)
	session := console.NewSession(client, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, session, os.Args[2:])
	case "logout":
		err = session.Logout(ctx)
	case "profile":
		err = runProfile(ctx, session)
	case "nav":
		err = runNav(ctx, client)
	case "notifications":
		err = runNotifications(ctx, client, os.Args[2:])
	case "watch":
		err = runWatch(ctx, client, cfg.Console.PollInterval)
	case "alerts":
		err = runAlerts(ctx, client, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runLogin(ctx context.Context, session *console.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("login takes exactly one email argument")
	}

	fmt.Fprint(os.Stderr, "password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	profile, err := session.Login(ctx, args[0], string(password))
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s %s (%s)\n", profile.FirstName, profile.LastName, profile.Role)
	return nil
}

func runProfile(ctx context.Context, session *console.Session) error {
	profile, err := session.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-12s %s\n", "id", profile.ID)
	fmt.Printf("%-12s %s\n", "email", profile.Email)
	fmt.Printf("%-12s %s %s\n", "name", profile.FirstName, profile.LastName)
	fmt.Printf("%-12s %s\n", "role", profile.Role)
	if profile.Department != nil {
		fmt.Printf("%-12s %s\n", "department", *profile.Department)
	}
	return nil
}

func runNav(ctx context.Context, client *console.Client) error {
	entries, err := client.Navigation(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%-20s %s\n", entry.Route, entry.Label)
	}
	return nil
}

func runNotifications(ctx context.Context, client *console.Client, args []string) error {
	pager := console.NewPager()
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad page %q", args[0])
		}
		pager.SetPage(page)
	}

	items, pagination, err := client.Notifications(ctx, pager.Page(), pager.Size(), nil)
	if err != nil {
		return err
	}
	pager.Apply(pagination)

	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s [%s] %-10s %s\n", marker, n.CreatedAt.Format("2006-01-02 15:04"), n.Type, n.Title)
	}
	if pagination != nil {
		fmt.Printf("page %d/%d (%d total), pages %v\n", pager.Page(), pagination.TotalPages, pager.Total(), pager.Window())
	}
	return nil
}

func runWatch(ctx context.Context, client *console.Client, interval time.Duration) error {
	poller := console.NewUnreadPoller(client, interval, func(count int) {
		fmt.Printf("%s unread: %d\n", time.Now().Format("15:04:05"), count)
	}, nil)
	poller.OnError(func(err error) {
		fmt.Printf("%s unread: unavailable (%v), retrying\n", time.Now().Format("15:04:05"), err)
	})

	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

func runAlerts(ctx context.Context, client *console.Client, args []string) error {
	status := ""
	if len(args) > 0 {
		status = args[0]
	}

	alerts, pagination, err := client.Alerts(ctx, 1, models.DefaultPageSize, status, "")
	if err != nil {
		return err
	}
	for _, alert := range alerts {
		fmt.Printf("%-36s %-12s %-10s %-15s %s\n", alert.ID, alert.Status, alert.Severity, alert.Camera, alert.OccurredAt.Format(time.RFC3339))
	}
	if pagination != nil {
		fmt.Printf("page %d/%d (%d total)\n", pagination.Page, pagination.TotalPages, pagination.Total)
	}
	return nil
}
