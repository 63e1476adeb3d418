// Command freedumpctl exercises a pooledalloc.Allocator backed by a
// simulated host allocator: a repl for poking buckets by hand, a bench
// subcommand for a concurrent producer/consumer stress run, and a stats
// subcommand for snapshotting bucket occupancy to disk.
//
// This binary is a demonstrator and diagnostic tool, not part of the
// library: dump and freelist stay dependency-free, and the library
// packages (including pooledalloc, whose only third-party import is
// zerolog) stay non-interactive, matching spec.md §6's "no CLI" for the
// library itself.
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

const usage = `freedumpctl <command> [options]

Commands:
  repl     interactively recycle/deposit/drain against a live freelist
  bench    run a concurrent producer/consumer stress pass
  stats    snapshot bucket occupancy to a JSON file

Global options:
  -c, --config     path to a JSON-with-comments config file
  -b, --buckets    number of freelist buckets (1-64) [default: 16]
  -v, --verbose    enable debug logging
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return 2
	}

	cmd := args[0]
	rest := args[1:]

	flagSet := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	configPath := flagSet.StringP("config", "c", "", "path to config file")
	buckets := flagSet.IntP("buckets", "b", 0, "number of freelist buckets")
	verbose := flagSet.BoolP("verbose", "v", false, "enable debug logging")
	statsOut := flagSet.String("stats-out", "", "path to write stats snapshot")

	if err := flagSet.Parse(rest); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	cfg, err := loadConfigFile(DefaultConfig(), *configPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if *buckets > 0 {
		cfg.Buckets = *buckets
	}
	if *verbose {
		cfg.Verbose = true
	}
	if *statsOut != "" {
		cfg.StatsOut = *statsOut
	}
	if cfg.Buckets < 1 || cfg.Buckets > 64 {
		fmt.Fprintln(errOut, "error: --buckets must be in [1, 64]")
		return 2
	}

	switch cmd {
	case "repl":
		return cmdRepl(cfg, out, errOut)
	case "bench":
		return cmdBench(cfg, out, errOut, flagSet.Args())
	case "stats":
		return cmdStats(cfg, out, errOut)
	case "-h", "--help", "help":
		fmt.Fprint(out, usage)
		return 0
	default:
		fmt.Fprintf(errOut, "error: unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}
