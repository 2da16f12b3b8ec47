// Command w1mem reads, writes and locks pages of 1-Wire EPROM and EEPROM
// chips on a simulated bus.
//
// Usage:
//
//	w1mem --state bus.cbor scan
//	w1mem --state bus.cbor --address 2d-0000000001a2 write 0 48656c6c6f
//	w1mem --config w1mem.yaml dump backup.w1img
//	w1mem --config w1mem.yaml shell
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	state      string
	pin        string
	address    string
	logLevel   string
	lockCheck  bool
	noVerify   bool
}

// load reads the config file and applies the flags that were set.
func (o *rootOptions) load(cmd *cobra.Command) (*Config, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("state") {
		cfg.Sim.State = o.state
	}
	if flags.Changed("pin") {
		cfg.ProgramPin = o.pin
	}
	if flags.Changed("address") {
		cfg.Address = o.address
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("lock-check") {
		cfg.LockCheck = o.lockCheck
	}
	if flags.Changed("no-verify") {
		cfg.Verify = !o.noVerify
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var (
		opts rootOptions
		a    *app
	)

	root := &cobra.Command{
		Use:           "w1mem",
		Short:         "1-Wire EPROM/EEPROM page tool",
		Long:          "Read, write, lock, dump and program DS2502, DS2505, DS2430, DS2431 and DS2433 memory chips",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err = newApp(cfg, out, errOut)
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.save()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&opts.state, "state", "", "simulated bus state file (CBOR)")
	pf.StringVar(&opts.pin, "pin", "", "GPIO gating the EPROM programming pulse")
	pf.StringVar(&opts.address, "address", "", "device address to bind instead of searching")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&opts.lockCheck, "lock-check", false, "refuse writes to locked pages")
	pf.BoolVar(&opts.noVerify, "no-verify", false, "skip read-back after program")

	pageArg := func(args []string) (int, error) {
		return parsePage(args[0])
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "scan",
			Short: "List every device on the bus",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.scan(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the bound device",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.info(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "read <page>",
			Short: "Hex dump one page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := pageArg(args)
				if err != nil {
					return err
				}
				return a.read(cmd.Context(), page)
			},
		},
		&cobra.Command{
			Use:   "write <page> <hex>",
			Short: "Write up to 32 bytes of hex to a page",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := pageArg(args)
				if err != nil {
					return err
				}
				return a.write(cmd.Context(), page, args[1])
			},
		},
		&cobra.Command{
			Use:   "lock <page>",
			Short: "Write-protect a page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := pageArg(args)
				if err != nil {
					return err
				}
				return a.lock(cmd.Context(), page)
			},
		},
		&cobra.Command{
			Use:   "locked <page>",
			Short: "Report whether a page is write-protected",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := pageArg(args)
				if err != nil {
					return err
				}
				return a.locked(cmd.Context(), page)
			},
		},
		&cobra.Command{
			Use:   "dump [file]",
			Short: "Save every page to a page image (stdout by default)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return a.dump(cmd.Context(), path)
			},
		},
		&cobra.Command{
			Use:   "program <file>",
			Short: "Write the pages of a page image (- for stdin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.program(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive session on the bus",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.shell(cmd.Context())
			},
		},
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
