package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/app"
	"github.com/brightreply/scout/internal/common"
)

// configPaths allows multiple -config flags; later files override earlier
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: scout [flags] <command> [command flags]

Commands:
  scan         Run a scan job over one or more URLs
  import       Import a finished scan job into the knowledge base
  import-file  Import a local file (pdf, md, txt) into the knowledge base
  search       Search the knowledge base
  render       Render a knowledge item's markdown as HTML
  analytics    Print knowledge base analytics
  serve        Run the background maintenance scheduler
  version      Print version information

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var configFiles configPaths
	flag.Var(&configFiles, "config", "Configuration file path (repeatable, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	showVersion := flag.Bool("version", false, "Print version information")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("Scout version %s\n", common.GetFullVersion())
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if args[0] == "version" {
		fmt.Printf("Scout version %s\n", common.GetFullVersion())
		return
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("scout.toml"); err == nil {
			configFiles = append(configFiles, "scout.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	if err := runCommand(ctx, application, args[0], args[1:]); err != nil {
		logger.Error().Str("command", args[0]).Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, application *app.App, command string, args []string) error {
	switch command {
	case "scan":
		return runScan(ctx, application, args)
	case "import":
		return runImport(ctx, application, args)
	case "import-file":
		return runImportFile(ctx, application, args)
	case "search":
		return runSearch(ctx, application, args)
	case "render":
		return runRender(ctx, application, args)
	case "analytics":
		return runAnalytics(ctx, application)
	case "serve":
		return runServe(ctx, application)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
