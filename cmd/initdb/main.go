// Command initdb creates the knowledge map database and its schema.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hepworth/owlmap/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "initdb:", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("database initialised", "path", a.Config.DatabasePath)
}
