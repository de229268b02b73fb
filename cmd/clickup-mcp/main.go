// clickup-mcp: ClickUp task MCP server
//
// Exposes a ClickUp workspace's tasks to MCP clients: paginated search,
// single-task lookup, and CSV export with normalized phone numbers.
//
// Usage:
//
//	clickup-mcp serve [flags]   # Start MCP server (stdio transport)
//	clickup-mcp version         # Print the version
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/config"
	cuserver "github.com/HendryAvila/clickup-mcp/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				os.Exit(0)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("clickup-mcp v%s\n", cuserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args, os.Getenv)
	if err != nil {
		return err
	}

	logger, err := cuserver.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Path != "" {
		logger.Info("config file loaded", zap.String("path", cfg.Path))
	}

	s, err := cuserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// ServeStdio handles SIGINT/SIGTERM itself.
	return server.ServeStdio(s)
}

func printUsage() {
	writeUsage(os.Stderr)
}

func writeUsage(w io.Writer) {
	fmt.Fprintf(w, `clickup-mcp v%s: ClickUp task MCP server

Usage:
  clickup-mcp serve [flags]   Start the MCP server (stdio transport)
  clickup-mcp version         Print the version

Serve flags:
%s
Environment:
  %s (required), %s, %s,
  %s, %s, %s, %s, %s

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "clickup": {
        "command": "clickup-mcp",
        "args": ["serve"],
        "env": {"%s": "pk_..."}
      }
    }
  }
`, cuserver.Version,
		config.NewFlags("serve").FlagSet().FlagUsages(),
		config.EnvAPIToken, config.EnvTeamID, config.EnvBaseURL,
		config.EnvCharacterLimit, config.EnvMaxLimit, config.EnvDefaultLimit, config.EnvLogLevel, config.EnvTimeout,
		config.EnvAPIToken,
	)
}
