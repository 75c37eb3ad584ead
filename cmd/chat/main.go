package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/detekoi/iron-golem/client"
	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

func main() {
	app := &cli.App{
		Name:  "iron-golem",
		Usage: "Terminal chat client for the Iron Golem server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the chat server",
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "edition",
				Aliases: []string{"e"},
				Usage:   "Game edition (java or bedrock)",
				Value:   models.EditionJava,
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Resume an existing session by id",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sessions",
				Usage: "List saved sessions",
				Action: func(c *cli.Context) error {
					return listSessions(c.Context, c.String("server"))
				},
			},
		},
		Action: func(c *cli.Context) error {
			return runChat(c.Context, c.String("server"), c.String("edition"), c.String("session"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func listSessions(ctx context.Context, server string) error {
	api := client.NewAPI(server)
	infos, err := api.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %-30s  %d messages  %s\n",
			info.ID, info.Name, info.MessageCount, info.LastUpdated.Format("2006-01-02 15:04"))
	}
	return nil
}

func runChat(ctx context.Context, server, edition, sessionID string) error {
	api := client.NewAPI(server)
	manager := client.NewSessionManager(api, edition, logger.New("chat"))
	manager.OnEvent = printEvent

	if sessionID != "" {
		if err := manager.LoadSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		replay(manager.Session().Messages)
	} else {
		if err := manager.StartSession(ctx, ""); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
	}

	fmt.Printf("Connected to %s (%s edition). Type a question, or /quit to exit.\n", server, edition)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}
		if err := manager.Send(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println()
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// printEvent renders stream events as they arrive. Text fragments print
// inline so the answer appears token by token.
func printEvent(event models.StreamEvent) {
	switch event.Type {
	case models.EventText:
		fmt.Print(event.Content)
	case models.EventRecipe:
		if event.Recipe != nil {
			fmt.Printf("\n\n%s", renderRecipe(event.Recipe))
		}
	case models.EventError:
		fmt.Fprintf(os.Stderr, "\nstream error: %s\n", event.Content)
	}
}

// renderRecipe draws the 3x3 crafting grid as text.
func renderRecipe(recipe *models.CraftingRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %dx %s\n", recipe.OutputAmount, recipe.OutputItem)
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			slot := recipe.Slots[row*3+col]
			if slot == "air" || slot == "" {
				slot = "."
			}
			cells[col] = fmt.Sprintf("%-12s", slot)
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(cells, " "))
	}
	return b.String()
}

func replay(msgs []models.ChatMessage) {
	for _, msg := range msgs {
		prefix := "you"
		if msg.Role == models.RoleModel {
			prefix = "golem"
		}
		fmt.Printf("[%s] %s\n", prefix, msg.Text())
	}
}
