// Command server runs the HTTP API consumed by the review UI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
	defer a.Close()

	listen := a.Config.ListenAddr
	if *addr != "" {
		listen = *addr
	}

	r := server.NewRouter(a)
	a.Log.Info("listening", "addr", listen)
	if err := r.Run(listen); err != nil {
		a.Log.Fatal("server stopped", "error", err)
	}
}
