// Package main is the anonymous student terminal client: pick a room,
// submit questions, and watch the room's live feed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/perguntas-ebd/backend/internal/client"
	"github.com/perguntas-ebd/backend/internal/clientstate"
	"github.com/perguntas-ebd/backend/internal/feed"
	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/rooms"
)

type ask struct {
	api     *client.API
	baseURL string
	state   *clientstate.Store

	feed  *feed.Feed
	epoch uint64
	sub   *client.Subscription

	draft string
	in    *bufio.Scanner
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "backend base URL")
	flag.Parse()

	state, err := clientstate.DefaultStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "state dir:", err)
		os.Exit(1)
	}

	a := &ask{
		api:     client.NewAPI(*serverURL),
		baseURL: *serverURL,
		state:   state,
		feed:    feed.New(),
		in:      bufio.NewScanner(os.Stdin),
	}
	if err := a.run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *ask) run() error {
	ctx := context.Background()

	room, err := a.state.LoadSelectedRoom()
	if err != nil || !rooms.IsValid(room) {
		room = a.chooseRoom(ctx)
		if room == "" {
			return nil
		}
	}
	if err := a.activate(ctx, room); err != nil {
		return err
	}
	defer func() {
		if a.sub != nil {
			a.sub.Close()
		}
	}()

	fmt.Printf("room: %s — type your question, /help for commands\n", roomLabel(room))

	for {
		fmt.Print("> ")
		if !a.in.Scan() {
			return nil
		}
		line := a.in.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" && a.draft != "":
			a.submit(ctx, a.draft)
		case trimmed == "":
			continue
		case trimmed == "/quit" || trimmed == "/q":
			return nil
		case trimmed == "/list" || trimmed == "/l":
			a.render()
		case trimmed == "/room":
			if room := a.chooseRoom(ctx); room != "" {
				if err := a.activate(ctx, room); err != nil {
					fmt.Println(err)
					continue
				}
				a.render()
			}
		case trimmed == "/help" || trimmed == "/h":
			a.help()
		case strings.HasPrefix(trimmed, "/"):
			fmt.Println("unknown command; /help")
		default:
			a.submit(ctx, trimmed)
		}
	}
}

// submit validates locally first; nothing invalid reaches the wire. On a
// remote failure the draft survives: an empty line retries it.
func (a *ask) submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len([]rune(text)) > models.MaxQuestionLength {
		fmt.Printf("question is over %d characters, shorten it\n", models.MaxQuestionLength)
		a.draft = text
		return
	}
	if _, err := a.api.Submit(ctx, a.feed.Room(), text); err != nil {
		a.draft = text
		fmt.Println("submission failed:", err)
		fmt.Println("your question was kept — press enter to retry, or type to rewrite")
		return
	}
	a.draft = ""
	fmt.Println("question sent — it shows up anonymously")
}

func (a *ask) chooseRoom(ctx context.Context) string {
	infos, err := a.api.Rooms(ctx)
	if err != nil {
		// fall back to the compiled registry when the server is unreachable
		fmt.Println("room list unavailable:", err)
		for _, r := range rooms.All() {
			fmt.Printf("  %-18s %s\n", r.ID, r.Label)
		}
	} else {
		for _, r := range infos {
			fmt.Printf("  %-18s %s (%d questions)\n", r.ID, r.Label, r.Questions)
		}
	}
	for {
		fmt.Print("room id: ")
		if !a.in.Scan() {
			return ""
		}
		id := strings.TrimSpace(a.in.Text())
		if id == "" {
			return ""
		}
		if !rooms.IsValid(id) {
			fmt.Println("unknown room")
			continue
		}
		if err := a.state.SaveSelectedRoom(id); err != nil {
			fmt.Println("warning: selection not persisted:", err)
		}
		return id
	}
}

func (a *ask) activate(ctx context.Context, room string) error {
	if a.sub != nil {
		a.sub.Close()
		a.sub = nil
	}
	a.epoch = a.feed.Activate(room)

	list, err := a.api.ListQuestions(ctx, room)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	a.feed.SetInitial(a.epoch, list)

	// the student feed consumes delete events so moderator deletes vanish
	sub, err := client.Subscribe(a.baseURL, room, a.feed, a.epoch, true)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	a.sub = sub
	return nil
}

func (a *ask) render() {
	sorted := a.feed.Sorted()
	fmt.Printf("\n%s — %d questions\n", roomLabel(a.feed.Room()), len(sorted))
	if len(sorted) == 0 {
		fmt.Println("  no questions yet, be the first")
		return
	}
	for _, q := range sorted {
		fmt.Printf("  %s %s  (%s)\n", marker(q.Status), q.Text, age(q.CreatedAt))
	}
}

func (a *ask) help() {
	fmt.Println(`type a question and press enter to submit it anonymously
  /list   show this room's questions
  /room   pick another room
  /quit`)
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
