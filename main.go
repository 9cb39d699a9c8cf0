package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"canvasboard/internal/connector"
	"canvasboard/internal/engine"
	netsync "canvasboard/internal/net"
	"canvasboard/internal/presence"
	"canvasboard/internal/state"
	"canvasboard/internal/ui"
)

const customURLScheme = "canvasboard://"

func main() {
	args := os.Args
	switch {
	case len(args) > 1 && args[1] == "discover":
		runDiscover()
	case len(args) > 1 && strings.HasPrefix(args[1], customURLScheme):
		runClient(args[1])
	default:
		runHost()
	}
}

// runDiscover prints every board session found on the LAN.
func runDiscover() {
	found := false
	err := netsync.Browse(func(addr string) {
		found = true
		fmt.Printf("%s%s\n", customURLScheme, addr)
	})
	if err != nil {
		log.Fatalf("discovery failed: %v", err)
	}
	if !found {
		fmt.Println("no sessions found")
	}
}

func runHost() {
	log.Println("Starting as HOST")

	doc := state.NewDocument()
	sel := presence.NewChannel()
	eng := engine.New(doc, sel, nil)
	board := ui.NewBoardWidget(eng)

	host := netsync.NewHost(doc)
	host.OnApplied = board.RefreshFromRemote
	if err := host.Start(netsync.DefaultPort); err != nil {
		log.Fatalf("failed to start host: %v", err)
	}
	defer host.Close()

	mdnsServer, err := netsync.Advertise(netsync.DefaultPort)
	if err != nil {
		log.Printf("[HOST] mDNS advertise failed: %v", err)
	} else {
		defer mdnsServer.Shutdown()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	connector.StartReconciler(ctx, doc, engine.ReconcileInterval)

	shareLink := ""
	if ip, err := netsync.OutgoingIP(); err == nil {
		shareLink = fmt.Sprintf("%s%s:%d", customURLScheme, ip, netsync.DefaultPort)
		log.Printf("[HOST] share link: %s", shareLink)
	}

	ui.RunApp(shareLink, board)
}

func runClient(link string) {
	log.Println("Starting as CLIENT")

	doc := state.NewDocument()
	sel := presence.NewChannel()
	eng := engine.New(doc, sel, nil)
	board := ui.NewBoardWidget(eng)

	addr := strings.TrimPrefix(link, customURLScheme)
	addr = strings.TrimSuffix(addr, "/")

	go func() {
		if _, err := netsync.Dial(context.Background(), addr, doc, board.RefreshFromRemote); err != nil {
			log.Printf("[SYNC] connection failed: %v", err)
			board.SetStatus(fmt.Sprintf("Connection failed: %v", err))
			return
		}
		board.SetStatus("Connected to " + addr)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	connector.StartReconciler(ctx, doc, engine.ReconcileInterval)

	ui.RunApp("", board)
}
