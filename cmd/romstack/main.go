// Package main provides the romstack command line interface.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/di"
	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/logger"
)

// version is shown by the version subcommand; override at build time
// with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

// run dispatches the subcommand and returns the process exit code.
// main wraps it so deferred teardowns fire before the exit.
func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 2
	}

	command := os.Args[1]
	args := os.Args[2:]

	// organize carries its mode between the command and the flags.
	var mode string
	if command == "organize" {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			fmt.Fprintln(os.Stderr, "organize needs a mode: genre or letter")
			printUsage()
			return 2
		}
		mode = args[0]
		args = args[1:]
	}

	switch command {
	case "version":
		fmt.Printf("romstack v%s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	}

	app, err := newApp(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "romstack: %v\n", err)
		return errors.ExitCode(err)
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "scan":
		err = runScan(ctx, app)
	case "organize":
		switch mode {
		case "genre":
			err = runOrganizeGenre(ctx, app)
		case "letter":
			err = runOrganizeLetter(ctx, app)
		default:
			fmt.Fprintf(os.Stderr, "unknown organize mode %q\n", mode)
			printUsage()
			return 2
		}
	case "rename":
		err = runRename(ctx, app)
	case "search":
		err = runSearch(ctx, app)
	case "watch":
		err = runWatch(ctx, app)
	case "history":
		err = runHistory(ctx, app)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printUsage()
		return 2
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			app.log.Warn("interrupted", "command", command)
			return 1
		}
		app.log.WithError(err).Error("command failed", "command", command)
		return errors.ExitCode(err)
	}
	return 0
}

// app carries what every subcommand needs: the parsed config, the
// logger, the DI container services are pulled from, and the
// positional arguments left after flag parsing.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	injector *do.RootScope
	args     []string
	stdin    *bufio.Reader
}

func newApp(args []string) (*app, error) {
	cfg, rest, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		Format:    cfg.App.LogFormat,
		AddSource: cfg.App.LogLevel == "debug",
	})
	slog.SetDefault(log.Logger)

	return &app{
		cfg:      cfg,
		log:      log,
		injector: di.NewContainer(cfg, log),
		args:     rest,
		stdin:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *app) close() {
	di.Shutdown(a.injector, a.log)
}

// collectionRoot resolves the directory a subcommand operates on: the
// -root flag when given, the first positional argument otherwise, and
// finally the working directory. The resolved path is written back to
// the shared config so providers see it too.
func (a *app) collectionRoot() (string, error) {
	if a.cfg.Library.Root != "" {
		return a.cfg.Library.Root, nil
	}

	if len(a.args) > 0 {
		abs, err := filepath.Abs(a.args[0])
		if err != nil {
			return "", errors.Wrapf(err, errors.CodeValidation, "resolve path %s", a.args[0])
		}
		a.cfg.Library.Root = abs
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "resolve working directory")
	}
	a.cfg.Library.Root = wd
	return wd, nil
}

func printUsage() {
	fmt.Println("romstack - ROM collection organizer")
	fmt.Println("\nUsage:")
	fmt.Println("  romstack <command> [flags] [path]")
	fmt.Println("\nCommands:")
	fmt.Println("  scan              Fingerprint the collection and record duplicates")
	fmt.Println("  organize genre    Copy ROMs into one folder per genre (needs a gamelist XML)")
	fmt.Println("  organize letter   Copy ROMs into A-Z folders for flash carts")
	fmt.Println("  rename            Preview or apply naming-convention renames")
	fmt.Println("  search <query>    Search the indexed collection")
	fmt.Println("  watch             Watch the collection and reorganize when it changes")
	fmt.Println("  history           Show recorded scans and match runs")
	fmt.Println("  version           Print version")
	fmt.Println("\nCommon flags:")
	fmt.Println("  -root <dir>       Collection root (default: current directory)")
	fmt.Println("  -out <dir>        Output directory (default: organized_roms)")
	fmt.Println("  -catalog <file>   Gamelist XML (default: pick from -catalog-dir)")
	fmt.Println("  -workers <n>      Matching workers, 0 = auto")
	fmt.Println("  -yes              Never prompt; take defaults")
	fmt.Println("\nRun 'romstack <command> -h' for every flag. Flags may also be set")
	fmt.Println("through ROMSTACK_* environment variables or a .env file.")
}
