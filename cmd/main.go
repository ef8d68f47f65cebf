package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/afsarctg/minerdiag"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", os.Getenv("MINERDIAG_CONFIG"), "path to YAML config file")
	flag.Parse()

	// Optional .env next to the binary; absence is fine.
	_ = godotenv.Load()

	cfg, err := minerdiag.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	diag := minerdiag.New(cfg)

	s := server.NewMCPServer("sn13-diagnostics", version)
	diag.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
