// Command chat is a terminal front-end over the session controller: it
// loads persisted history, sends turns to the backend, and renders replies
// with their emotion hints.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/emochi/emochi/internal/client"
	"github.com/emochi/emochi/internal/config"
	"github.com/emochi/emochi/internal/model/chat"
	"github.com/emochi/emochi/internal/session"
	"github.com/emochi/emochi/internal/store"
)

func main() {
	log.SetFlags(0)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env file, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	baseURL := flag.String("base-url", cfg.Client.BaseURL, "backend base URL")
	chatID := flag.String("chat", cfg.Client.ChatID, "chat identifier")
	chatsDir := flag.String("chats-dir", cfg.Store.ClientDir, "local history directory")
	flag.Parse()

	chatStore, err := store.New(*chatsDir)
	if err != nil {
		log.Fatalf("failed to open chat store: %v", err)
	}

	ctrl := session.New(*chatID, client.NewHTTPClient(*baseURL), chatStore)

	printed := 0
	lastError := ""
	ctrl.Subscribe(func(s session.Snapshot) {
		for _, m := range s.Messages[printed:] {
			printMessage(m)
		}
		printed = len(s.Messages)

		if s.LastError != "" && s.LastError != lastError {
			fmt.Println(s.LastError)
		}
		lastError = s.LastError
	})

	ctx := context.Background()
	ctrl.Initialize(ctx)

	fmt.Printf("Emochi chat %q against %s — /model <name> to switch, /quit to exit\n", *chatID, *baseURL)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/model "):
			model := strings.TrimSpace(strings.TrimPrefix(line, "/model "))
			if ctrl.SetModel(ctx, model) {
				fmt.Printf("model set to %s\n", model)
			} else {
				fmt.Println("failed to set model")
			}
		case strings.HasPrefix(line, "/tags "):
			tags := splitTags(strings.TrimPrefix(line, "/tags "))
			if ctrl.SetSettings(ctx, chat.SettingsRequest{Tags: tags}) {
				fmt.Printf("tags set to %s\n", strings.Join(tags, ", "))
			} else {
				fmt.Println("failed to set tags")
			}
		default:
			ctrl.SendMessage(ctx, line)
		}
	}
}

func printMessage(m chat.Message) {
	switch m.Role {
	case chat.RoleUser:
		fmt.Printf("you: %s\n", m.Content)
	case chat.RoleAssistant:
		fmt.Printf("bot: %s\n", m.Content)
		if h := m.EmotionHint; h != nil && h.Primary != "" {
			fmt.Printf("     [%s %d%%]\n", h.Primary, h.Intensity)
		}
	}
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
