package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lc3vm/vm"
)

// interactiveOrigin is the fixed starting PC for `-i`/`--interactive` mode.
const interactiveOrigin = 0x3000

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fileFlag  string
		debugFlag string
		interact  bool
	)

	cmd := &cobra.Command{
		Use:   "lc3vm",
		Short: "A virtual machine for the LC-3 instruction set architecture",
		Long: "lc3vm runs LC-3 object files, serves a local single-step debug\n" +
			"channel over them, or accepts instructions interactively.\n" +
			"Exactly one of --file, --debug, --interactive may be given.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case fileFlag != "":
				return runFile(fileFlag)
			case debugFlag != "":
				return runDebug(debugFlag)
			case interact:
				return runInteractive()
			default:
				return cmd.Help()
			}
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "load an object file and run it to HALT")
	cmd.Flags().StringVarP(&debugFlag, "debug", "d", "", "load an object file and serve the single-step debug channel")
	cmd.Flags().BoolVarP(&interact, "interactive", "i", false, "start with PC=0x3000 and accept instructions interactively")
	cmd.MarkFlagsMutuallyExclusive("file", "debug", "interactive")

	return cmd
}

// withRawTerminal puts stdin into non-canonical, no-echo mode for the
// duration of fn and restores it on every exit path, including a panic
// propagating out of fn. This is required for `-f` and `-d` so that
// character-granular TRAP I/O behaves correctly.
func withRawTerminal(fn func() error) error {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		// Piped/non-tty stdin (common under test harnesses): nothing to
		// restore, just run.
		return fn()
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("lc3vm: enter raw terminal mode: %w", err)
	}
	defer func() {
		if rerr := term.Restore(fd, old); rerr != nil {
			// Failing to restore terminal mode is logged, not fatal.
			fmt.Fprintln(os.Stderr, "lc3vm: restore terminal mode:", rerr)
		}
	}()

	return fn()
}

func runFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lc3vm: open %s: %w", path, err)
	}
	defer f.Close()

	return withRawTerminal(func() error {
		machine := vm.New(0, os.Stdin, os.Stdout)

		origin, err := vm.LoadImage(machine.Memory(), f)
		if err != nil {
			return err
		}
		machine.Registers().Write(vm.RPC, origin)

		return machine.RunToHalt()
	})
}

func runDebug(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lc3vm: open %s: %w", path, err)
	}
	defer f.Close()

	return withRawTerminal(func() error {
		machine := vm.New(0, os.Stdin, os.Stdout)

		origin, err := vm.LoadImage(machine.Memory(), f)
		if err != nil {
			return err
		}
		machine.Registers().Write(vm.RPC, origin)

		channel, err := vm.NewDebugChannel(machine)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := channel.Serve(); err != nil && !errors.Is(err, vm.ErrHalt) {
			return err
		}
		return machine.Flush()
	})
}

func runInteractive() error {
	machine := vm.New(interactiveOrigin, os.Stdin, os.Stdout)
	defer machine.Flush()
	return machine.RunInteractive(os.Stdout)
}
