// EduMentor CLI - Command line client for EduMentorAI
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/EyadAmgad/EduMentorAI/clients/go/edumentor"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("EDUMENTOR_URL")
	client := edumentor.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "register":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: edumentor register <name> [email]")
			os.Exit(1)
		}
		email := ""
		if len(os.Args) > 3 {
			email = os.Args[3]
		}
		resp, err := client.Register(os.Args[2], email)
		exitOnError(err)
		fmt.Printf("Registered as: %s\n", resp.ID)
		fmt.Println("API key stored; keep it safe, it is shown only once.")

	case "sessions":
		resp, err := client.ListSessions(20, 0)
		exitOnError(err)
		for _, s := range resp.Sessions {
			fmt.Printf("  %s  %s (%d msgs, active %s)\n",
				s.ID, s.Title, s.MessageCount, s.LastActiveAt.Format("2006-01-02 15:04"))
		}

	case "read":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: edumentor read <session_id>")
			os.Exit(1)
		}
		resp, err := client.GetMessages(os.Args[2], 50, 0)
		exitOnError(err)
		for _, msg := range resp.Messages {
			ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s: %s\n", ts, msg.Role, msg.Content)
		}

	case "search":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: edumentor search <query>")
			os.Exit(1)
		}
		resp, err := client.Search(os.Args[2], 20)
		exitOnError(err)
		for _, r := range resp.Results {
			fmt.Printf("[%s] %s\n", r.Role, r.Content)
		}

	case "chat":
		sessionID := ""
		if len(os.Args) > 2 {
			sessionID = os.Args[2]
		}
		chat(client, sessionID)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

// chat runs the interactive loop. One exchange at a time: input is read,
// the answer streams in with live re-rendering, then input resumes.
func chat(client *edumentor.Client, sessionID string) {
	session := edumentor.NewSession()
	if sessionID != "" {
		session = edumentor.Resume(sessionID)
	}

	indicator := edumentor.NewIndicator(func(s edumentor.IndicatorState) {
		if s == edumentor.StateWaiting {
			fmt.Print("thinking...\r")
		}
	})
	renderer := edumentor.NewRenderer()

	fmt.Println("EduMentor chat. Empty line or Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}

		// Terminals cannot repaint scrollback, so print only the growth of
		// the rendered output on each update.
		shown := 0
		dispatcher := edumentor.NewDispatcher(session, indicator, renderer, func(output string) {
			if len(output) > shown {
				fmt.Print(output[shown:])
				shown = len(output)
			} else if len(output) < shown {
				// A re-render shrank the output (wrap changes); reprint it.
				fmt.Print("\n" + output)
				shown = len(output)
			}
		})

		if err := client.Send(context.Background(), session, dispatcher, message); err != nil {
			fmt.Fprintf(os.Stderr, "\n(%v)\n", err)
		}
		fmt.Println()
	}

	if session.Known() {
		fmt.Printf("Session: %s (resume with: edumentor chat %s)\n", session.ID(), session.ID())
	}
}

func usage() {
	fmt.Println(`EduMentor CLI - AI study assistant

Usage: edumentor <command> [options]

Commands:
  register <name> [email]  Register and store an API key
  chat [session_id]        Interactive chat (new or resumed session)
  sessions                 List your chat sessions
  read <session_id>        Print a session's messages
  search <query>           Search your messages
  health                   Check server health

Environment:
  EDUMENTOR_URL            Server URL (default http://localhost:8080)
  EDUMENTOR_CONFIG         Credential directory (default ~/.edumentor)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
