// Package main is the moderator terminal client: login-gated triage of a
// room's questions with an optimistic local list over the realtime feed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/perguntas-ebd/backend/internal/client"
	"github.com/perguntas-ebd/backend/internal/clientstate"
	"github.com/perguntas-ebd/backend/internal/feed"
	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/moderators"
	"github.com/perguntas-ebd/backend/internal/rooms"
)

type monitor struct {
	api     *client.API
	baseURL string
	state   *clientstate.Store
	profile *moderators.Profile

	feed    *feed.Feed
	mutator *feed.Mutator
	epoch   uint64
	sub     *client.Subscription

	in *bufio.Scanner
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "backend base URL")
	key := flag.String("key", os.Getenv("MODERATOR_SECRET"), "moderator perimeter key")
	flag.Parse()

	state, err := clientstate.DefaultStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "state dir:", err)
		os.Exit(1)
	}

	api := client.NewAPI(*serverURL)
	api.SetPerimeterKey(*key)

	m := &monitor{
		api:     api,
		baseURL: *serverURL,
		state:   state,
		feed:    feed.New(),
		in:      bufio.NewScanner(os.Stdin),
	}
	m.mutator = feed.NewMutator(m.feed, api)

	if err := m.run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (m *monitor) run() error {
	ctx := context.Background()

	if err := m.restoreOrLogin(ctx); err != nil {
		return err
	}
	if err := m.activate(ctx, m.profile.AssignedRoom); err != nil {
		return err
	}
	defer func() {
		if m.sub != nil {
			m.sub.Close()
		}
	}()

	fmt.Printf("logged in as %s", m.profile.DisplayName)
	if m.profile.IsAdmin {
		fmt.Print(" (admin)")
	}
	fmt.Println()
	m.render()
	m.help()

	for {
		fmt.Print("> ")
		if !m.in.Scan() {
			return nil
		}
		line := strings.TrimSpace(m.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "list", "l":
			m.render()
		case "highlight":
			m.setStatus(ctx, args, models.StatusHighlighted)
		case "unhighlight", "reopen":
			m.setStatus(ctx, args, models.StatusPending)
		case "resolve":
			m.setStatus(ctx, args, models.StatusAnswered)
		case "delete":
			m.delete(ctx, args)
		case "room":
			m.switchRoom(ctx, args)
		case "logout":
			if err := m.state.ClearSession(); err != nil {
				fmt.Println("clear session:", err)
			}
			fmt.Println("logged out")
			return nil
		case "quit", "q":
			return nil
		case "help", "h":
			m.help()
		default:
			fmt.Println("unknown command; try help")
		}
	}
}

// restoreOrLogin revalidates a persisted session, discarding it silently
// when stale, and falls back to the login prompt.
func (m *monitor) restoreOrLogin(ctx context.Context) error {
	if sess, err := m.state.LoadSession(); err == nil {
		m.api.SetCredential(sess.Credential)
		profile, err := m.api.ValidateSession(ctx)
		if err == nil {
			m.profile = profile
			return nil
		}
		if errors.Is(err, client.ErrPerimeter) {
			return err
		}
		_ = m.state.ClearSession()
		m.api.SetCredential("")
	}
	return m.login(ctx)
}

func (m *monitor) login(ctx context.Context) error {
	for {
		fmt.Print("credential: ")
		if !m.in.Scan() {
			return fmt.Errorf("login aborted")
		}
		input := m.in.Text()
		credential, profile, err := m.api.Login(ctx, input)
		if err != nil {
			if errors.Is(err, client.ErrPerimeter) {
				return err
			}
			// inline error; the loop keeps the user editing
			fmt.Println("login failed:", err)
			continue
		}
		m.api.SetCredential(credential)
		m.profile = profile
		if err := m.state.SaveSession(&clientstate.Session{
			Credential:   credential,
			DisplayName:  profile.DisplayName,
			AssignedRoom: profile.AssignedRoom,
			IsAdmin:      profile.IsAdmin,
		}); err != nil {
			fmt.Println("warning: session not persisted:", err)
		}
		return nil
	}
}

// activate switches the feed to a room: tear down the previous
// subscription first, then bulk fetch and resubscribe under a new epoch.
func (m *monitor) activate(ctx context.Context, room string) error {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.epoch = m.feed.Activate(room)

	list, err := m.api.ListQuestions(ctx, room)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	m.feed.SetInitial(m.epoch, list)

	sub, err := client.Subscribe(m.baseURL, room, m.feed, m.epoch, false)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	m.sub = sub
	return nil
}

func (m *monitor) switchRoom(ctx context.Context, args []string) {
	if !m.profile.IsAdmin {
		// non-admin sessions are pinned to their assigned room
		fmt.Printf("room is fixed: %s\n", roomLabel(m.profile.AssignedRoom))
		return
	}
	if len(args) != 1 || !rooms.IsValid(args[0]) {
		fmt.Println("usage: room <id>; rooms:")
		for _, r := range rooms.All() {
			fmt.Printf("  %-18s %s\n", r.ID, r.Label)
		}
		return
	}
	if err := m.activate(ctx, args[0]); err != nil {
		fmt.Println(err)
		return
	}
	m.render()
}

func (m *monitor) setStatus(ctx context.Context, args []string, status models.Status) {
	q, ok := m.pick(args)
	if !ok {
		return
	}
	if err := m.mutator.SetStatus(ctx, q.ID, status); err != nil {
		// the optimistic change was rolled back; transient error only
		fmt.Println("update failed, list restored:", err)
		return
	}
	m.render()
}

func (m *monitor) delete(ctx context.Context, args []string) {
	q, ok := m.pick(args)
	if !ok {
		return
	}
	fmt.Printf("delete %q? [y/N] ", truncate(q.Text, 40))
	if !m.in.Scan() || strings.ToLower(strings.TrimSpace(m.in.Text())) != "y" {
		fmt.Println("cancelled")
		return
	}
	if err := m.mutator.Delete(ctx, q.ID); err != nil {
		fmt.Println("delete failed, list restored:", err)
		return
	}
	m.render()
}

// pick resolves a numeric argument against the rendered (sorted) order.
func (m *monitor) pick(args []string) (models.Question, bool) {
	sorted := m.feed.Sorted()
	if len(args) != 1 {
		fmt.Println("usage: <command> <number>")
		return models.Question{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(sorted) {
		fmt.Printf("pick a number between 1 and %d\n", len(sorted))
		return models.Question{}, false
	}
	return sorted[n-1], true
}

func (m *monitor) render() {
	indicator := "offline"
	if m.feed.Connected() {
		indicator = "live"
	}
	fmt.Printf("\n%s — %s\n", roomLabel(m.feed.Room()), indicator)

	sorted := m.feed.Sorted()
	if len(sorted) == 0 {
		fmt.Println("  no questions in this room")
		return
	}
	for i, q := range sorted {
		fmt.Printf("  %2d %s %s  (%s)\n", i+1, marker(q.Status), q.Text, age(q.CreatedAt))
	}
}

func (m *monitor) help() {
	fmt.Println(`commands:
  list                 show the room's questions
  highlight <n>        pin a question on top
  unhighlight <n>      back to pending
  resolve <n>          mark answered
  reopen <n>           answered back to pending
  delete <n>           remove permanently (asks for confirmation)
  room <id>            switch room (admin only)
  logout               clear the saved session and exit
  quit`)
}

func marker(s models.Status) string {
	switch s {
	case models.StatusHighlighted:
		return "[*]"
	case models.StatusAnswered:
		return "[x]"
	default:
		return "[ ]"
	}
}

func roomLabel(id string) string {
	if r, ok := rooms.Get(id); ok {
		return r.Label
	}
	return id
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
