package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/six7/six7-node/pkg/api"
	"github.com/six7/six7-node/pkg/chat"
	"github.com/six7/six7-node/pkg/fabric"
)

const bootstrapTimeout = 30 * time.Second

var (
	name      = flag.String("name", "anon", "Display name")
	room      = flag.String("room", "lobby", "Room to join")
	port      = flag.Int("port", 0, "Port to listen on (0 = random)")
	bootstrap = flag.String("bootstrap", "", "Bootstrap peer: <address>/<identity_hex>")
	public    = flag.Bool("public", false, "Bootstrap from the public network")
	debug     = flag.Bool("debug", false, "Enable debug logging")
	apiAddr   = flag.String("api", "", "Status API listen address (e.g. :8080, empty = disabled)")
)

func main() {
	flag.Parse()

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	ctx := context.Background()

	node, err := fabric.New(ctx, fabric.Config{Port: *port, Logger: log})
	if err != nil {
		log.Error().Err(err).Msg("failed to start node")
		os.Exit(1)
	}
	defer node.Close()

	displayAddr := node.LocalAddr()
	if addrs := node.RoutableAddresses(); len(addrs) > 0 {
		displayAddr = addrs[0]
	}
	printBanner(*name, *room, displayAddr, node.Identity())

	runBootstrap(ctx, node, log)

	topic := "chat/" + *room
	if err := node.Subscribe(ctx, topic); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to subscribe to room")
		os.Exit(1)
	}
	fmt.Printf("\nSubscribed to room: %s\n", *room)

	client := chat.NewClient(node, chat.Config{Name: *name, Room: *room}, os.Stdout, log)
	go client.RunPubSub()
	go client.RunDirect()

	if *apiAddr != "" {
		server := api.NewServer(node, client.Peers(), *room, log)
		if err := server.Start(*apiAddr); err != nil {
			log.Error().Err(err).Msg("failed to start status API")
			os.Exit(1)
		}
		defer server.Stop()
	}

	client.PrintHelp()
	client.RunCommands(readLines())
}

func runBootstrap(ctx context.Context, node fabric.Node, log zerolog.Logger) {
	switch {
	case *public:
		fmt.Println("\nBootstrapping from the public network...")
		bctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
		if err := node.BootstrapPublic(bctx); err != nil {
			fmt.Fprintf(os.Stderr, "Bootstrap failed: %v\n", err)
		} else {
			fmt.Println("Bootstrap successful!")
		}
	case *bootstrap != "":
		target, err := fabric.ParseBootstrap(*bootstrap)
		if err != nil {
			log.Error().Err(err).Msg("invalid bootstrap string")
			os.Exit(1)
		}
		fmt.Printf("\nBootstrapping from %s...\n", target.Addrs[0])
		bctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
		if err := node.Bootstrap(bctx, target.Identity, target.Addrs); err != nil {
			fmt.Fprintf(os.Stderr, "Bootstrap failed: %v\n", err)
		} else {
			fmt.Println("Bootstrap successful!")
		}
	default:
		fmt.Println("\nNo bootstrap peer specified. This node is the first in the network.")
		fmt.Println("Others can connect using the bootstrap string above.")
	}
}

func printBanner(name, room, displayAddr, identity string) {
	fmt.Println()
	fmt.Println("six7")
	fmt.Println()
	fmt.Printf("Nickname : %s\n", name)
	fmt.Printf("Room     : %s\n", room)
	fmt.Printf("Address  : %s\n", displayAddr)
	fmt.Println()
	fmt.Println("Your Identity (for DMs):")
	fmt.Println(identity)
	fmt.Println()
	fmt.Println("Bootstrap string (copy this line):")
	fmt.Printf("%s/%s\n", displayAddr, identity)
}

// readLines bridges interactive input into the dispatcher's channel.
// Readline gives history and editing; when it cannot initialize (no tty)
// plain stdin scanning is used instead.
func readLines() <-chan string {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".six7_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return chat.Lines(os.Stdin)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer rl.Close()
		for {
			line, err := rl.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					return
				}
				continue
			}
			out <- line
		}
	}()
	return out
}
