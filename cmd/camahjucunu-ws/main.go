/*
Camahjucunu-ws opens a WebSocket session against a configured exchange URL,
sends the JSON request given as its one argument, prints the response whose
"id" matches the request's own top-level "id" (a generated frame id is used
when the request has none), then shuts the session down gracefully.

Usage:

	camahjucunu-ws [flags] REQUEST_JSON

The flags are:

	-c, --config FILE
		Load defaults from the given TOML config file.

	-u, --url URL
		WebSocket URL to connect to (ws:// or wss://). Overrides the config
		file's ws.url.
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/cuwacunu/camahjucunu/internal/config"
	"github.com/cuwacunu/camahjucunu/internal/version"
	"github.com/cuwacunu/camahjucunu/internal/wsclient"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of camahjucunu-ws and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load defaults from the given TOML config file.")
	flagURL     = pflag.StringP("url", "u", "", "WebSocket URL to connect to.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("camahjucunu-ws v%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	url := cfg.WS.URL
	if pflag.Lookup("url").Changed {
		url = *flagURL
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "--url (or ws.url in the config file) is required")
		os.Exit(1)
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: camahjucunu-ws [flags] REQUEST_JSON")
		os.Exit(1)
	}
	requestJSON := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := wsclient.NewManager()
	sessionID, err := m.Init(url, cfg.WS.ConnectTimeout, cfg.WS.ReceiveBufferSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	// Responses correlate on the request JSON's top-level "id", so reuse it
	// as the frame id when the caller supplied one; otherwise let the manager
	// generate one (the exchange will then answer with id "NULL").
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal([]byte(requestJSON), &probe)

	frameID, err := m.WriteText(sessionID, []byte(requestJSON), probe.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	var frame wsclient.IncomingFrame
	var ok bool
	go func() {
		frame, ok, err = m.AwaitAndRetrieve(sessionID, frameID, cfg.WS.AwaitTimeout)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "await response: %v\n", err)
	} else if !ok {
		fmt.Fprintln(os.Stderr, "no response received within timeout")
	} else {
		fmt.Println(string(frame.Data))
	}

	if err := m.Finalize(sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "finalize: %v\n", err)
		os.Exit(1)
	}
}
