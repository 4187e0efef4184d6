package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atinyakov/catalog/internal/client"
	"github.com/atinyakov/catalog/internal/models"
)

var (
	version   string
	buildDate string
)

func printComments(comments []models.Comment) {
	for _, c := range comments {
		fmt.Printf("[%s] %s: %s\n", c.CreatedAt.Local().Format(time.DateTime), c.Author, c.Text)
	}
}

// repl watches the item in the background and posts every line typed as a
// comment by author.
func repl(ctx context.Context, p *client.Poller, author string) {
	go p.Run(ctx, printComments)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("comment> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "exit":
			fmt.Println("Bye")
			return
		}
		if _, err := p.PostComment(ctx, author, text); err != nil {
			fmt.Println("post error:", err)
		}
	}
}

// main parses command-line flags and dispatches to the watch, post or shell
// commands.
func main() {
	var (
		cmd      string
		baseURL  string
		itemID   string
		author   string
		text     string
		interval time.Duration
		showVer  bool
	)

	flag.StringVar(&cmd, "cmd", "watch", "command: watch | post | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&itemID, "item", "", "item id")
	flag.StringVar(&author, "author", "", "comment author for post and shell")
	flag.StringVar(&text, "text", "", "comment text for post")
	flag.DurationVar(&interval, "interval", client.DefaultInterval, "polling interval")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Catalog Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}
	if itemID == "" {
		log.Fatal("please provide -item=<id>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &client.Poller{
		Client:   &http.Client{Timeout: 10 * time.Second},
		BaseURL:  baseURL,
		ItemID:   itemID,
		Interval: interval,
	}

	switch cmd {
	case "watch":
		p.Run(ctx, printComments)
	case "post":
		if author == "" || text == "" {
			log.Fatal("please provide -author and -text")
		}
		c, err := p.PostComment(ctx, author, text)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("comment added:", c.ID)
	case "shell":
		if author == "" {
			log.Fatal("please provide -author")
		}
		repl(ctx, p, author)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
