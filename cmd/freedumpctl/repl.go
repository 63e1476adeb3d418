package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/ringvault/freedump/freelist"
)

const replHelp = `Commands:
  deposit <size>   alloc from the simulated host, deposit it in bucket <size>
  recycle <size>   recycle an address from bucket <size>
  occupancy        print per-bucket occupancy
  clear            drain every bucket back to the simulated host
  help             show this text
  quit             exit
`

// cmdRepl lets an operator poke a live freelist.FreeList by hand, for
// manual exploration of bucket occupancy and the error kinds from
// spec.md §7 (size_not_power_of_two, bucket_unavailable, bucket_empty,
// bucket_full).
func cmdRepl(cfg Config, out, errOut io.Writer) int {
	host := newSimHost()
	fl := freelist.New(cfg.Buckets)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprint(out, replHelp)

	for {
		input, err := line.Prompt("freedump> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return 0
			}
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			fmt.Fprint(out, replHelp)

		case "deposit":
			size, ok := parseSize(fields, out)
			if !ok {
				continue
			}
			addr := host.alloc(1, size)
			if err := fl.Deposit(addr, size); err != nil {
				fmt.Fprintln(out, "deposit failed:", err)
				continue
			}
			fmt.Fprintf(out, "deposited 0x%x in bucket for size %d\n", addr, size)

		case "recycle":
			size, ok := parseSize(fields, out)
			if !ok {
				continue
			}
			addr, err := fl.Recycle(size)
			if err != nil {
				fmt.Fprintln(out, "recycle failed:", err)
				continue
			}
			fmt.Fprintf(out, "recycled 0x%x\n", addr)

		case "occupancy":
			for i, n := range fl.Occupancy() {
				fmt.Fprintf(out, "bucket %2d (size %6d): %d\n", i, 1<<uint(i), n)
			}

		case "clear":
			freed := 0
			fl.Drain(func(addr uintptr, log2Size uint) {
				host.free(addr)
				freed++
			})
			fmt.Fprintf(out, "cleared, %d address(es) returned to host\n", freed)

		case "quit", "exit":
			return 0

		default:
			fmt.Fprintf(out, "unknown command %q, try 'help'\n", fields[0])
		}
	}
}

func parseSize(fields []string, out io.Writer) (uintptr, bool) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "usage:", fields[0], "<size>")
		return 0, false
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintln(out, "invalid size:", fields[1])
		return 0, false
	}
	return uintptr(n), true
}
