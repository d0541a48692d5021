// LAN chat CLI - command line client for the LAN chat server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nandeesh-nh/lan-chat/clients/go/lanchat"
	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("LANCHAT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := lanchat.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "register":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat register <username>")
			os.Exit(1)
		}
		user, err := client.Register(os.Args[2], readPassword())
		exitOnError(err)
		fmt.Printf("Registered: %s\n", user.Username)

	case "login":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat login <username>")
			os.Exit(1)
		}
		user, err := client.Login(os.Args[2], readPassword())
		exitOnError(err)
		fmt.Printf("Logged in as %s\n", user.Username)

	case "logout":
		exitOnError(client.Logout())
		fmt.Println("Logged out")

	case "users":
		users, err := client.Users()
		exitOnError(err)
		for _, u := range users {
			fmt.Println(" ", u)
		}

	case "read":
		requireLogin(client)
		msgs, err := client.Messages()
		exitOnError(err)
		conv := chatlog.Broadcast()
		if len(os.Args) > 2 {
			conv = chatlog.Private(os.Args[2])
		}
		for _, msg := range chatlog.Visible(msgs, client.Username, conv) {
			printMessage(msg)
		}
		exitOnError(client.MarkDelivered(conv.Peer()))

	case "send":
		requireLogin(client)
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat send <message> [user]")
			os.Exit(1)
		}
		target := ""
		if len(os.Args) > 3 {
			target = os.Args[3]
		}
		msg, err := client.Send(os.Args[2], target)
		exitOnError(err)
		fmt.Printf("Sent #%d\n", msg.ID)

	case "edit":
		requireLogin(client)
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat edit <id> <message>")
			os.Exit(1)
		}
		var id uint64
		_, err := fmt.Sscanf(os.Args[2], "%d", &id)
		exitOnError(err)
		msg, err := client.Edit(id, os.Args[3])
		exitOnError(err)
		fmt.Printf("Edited #%d\n", msg.ID)

	case "delete":
		requireLogin(client)
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat delete <id>")
			os.Exit(1)
		}
		var id uint64
		_, err := fmt.Sscanf(os.Args[2], "%d", &id)
		exitOnError(err)
		exitOnError(client.Delete(id))
		fmt.Printf("Deleted #%d\n", id)

	case "upload":
		requireLogin(client)
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat upload <path> [user]")
			os.Exit(1)
		}
		target := ""
		if len(os.Args) > 3 {
			target = os.Args[3]
		}
		result, err := client.Upload(os.Args[2], target)
		exitOnError(err)
		fmt.Printf("Uploaded as %s\n", result.Filename)

	case "download":
		requireLogin(client)
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: lanchat download <stored-name> [dir]")
			os.Exit(1)
		}
		dir := "."
		if len(os.Args) > 3 {
			dir = os.Args[3]
		}
		dest, err := client.Download(os.Args[2], dir)
		exitOnError(err)
		fmt.Printf("Saved to %s\n", dest)

	case "watch":
		requireLogin(client)
		watch(client)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

// watch follows the active conversation until interrupted, switching
// to a private chat when a peer is given as the third argument.
func watch(client *lanchat.Client) {
	poller := lanchat.NewPoller(client)
	if len(os.Args) > 2 {
		peer := os.Args[2]
		poller.Session.OpenTab(peer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go poller.Run(ctx)

	rendered := make(map[uint64]string)
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-poller.Updates():
			if !u.Connected {
				fmt.Fprintln(os.Stderr, "(disconnected, retrying...)")
				continue
			}
			for _, msg := range changedMessages(rendered, u.Messages) {
				printMessage(msg)
			}
		}
	}
}

// changedMessages returns the messages not yet rendered, plus any whose
// body or edited flag changed since they were last printed, and records
// the new rendered state.
func changedMessages(rendered map[uint64]string, msgs []models.Message) []models.Message {
	var out []models.Message
	for _, msg := range msgs {
		state := fmt.Sprintf("%t\x00%s", msg.Edited, msg.Body)
		if rendered[msg.ID] == state {
			continue
		}
		rendered[msg.ID] = state
		out = append(out, msg)
	}
	return out
}

func printMessage(msg models.Message) {
	ts := msg.Timestamp.Local().Format("15:04:05")
	switch msg.Kind {
	case models.KindSystem:
		fmt.Printf("[%s] * %s\n", ts, msg.Body)
	case models.KindFile:
		fmt.Printf("[%s] %s: %s (%s, %d bytes)\n", ts, msg.Sender, msg.Body, msg.StoredName, msg.FileSize)
	default:
		edited := ""
		if msg.Edited {
			edited = " (edited)"
		}
		fmt.Printf("[%s] #%d %s: %s%s\n", ts, msg.ID, msg.Sender, msg.Body, edited)
	}
}

func readPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	exitOnError(err)
	return string(pw)
}

func requireLogin(client *lanchat.Client) {
	if client.Username == "" {
		fmt.Fprintln(os.Stderr, "Not logged in. Run: lanchat login <username>")
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`LAN chat CLI

Usage: lanchat <command> [options]

Commands:
  register <username>          Create an account (prompts for password)
  login <username>             Log in and save the session
  logout                       Log out and clear the session
  users                        List online users
  read [user]                  Read the broadcast or a private chat
  send <message> [user]        Send a broadcast or private message
  edit <id> <message>          Edit one of your messages
  delete <id>                  Delete one of your messages
  upload <path> [user]         Share a file
  download <stored-name> [dir] Fetch a shared file
  watch [user]                 Follow a conversation live

Environment:
  LANCHAT_URL      Server URL (default: http://localhost:8080)
  LANCHAT_CONFIG   Config directory (default: ~/.lanchat)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
