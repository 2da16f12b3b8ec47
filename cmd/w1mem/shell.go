package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// shell runs an interactive command loop against the bound device. The bus
// state is saved after every command that changes it.
func (a *app) shell(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "w1mem> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	prev := a.out
	a.out = rl.Stdout()
	defer func() { a.out = prev }()

	a.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			return nil
		}

		if err := a.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
	}
}

// dispatch runs one shell command.
func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	needPage := func() (int, error) {
		if len(args) < 1 {
			return 0, fmt.Errorf("usage: %s <page>", cmd)
		}
		return parsePage(args[0])
	}

	switch cmd {
	case "help", "?":
		a.printHelp()
		return nil

	case "scan", "s":
		return a.scan(ctx)

	case "info", "i":
		return a.info(ctx)

	case "search":
		a.bound = false
		a.cfg.Address = ""
		return a.info(ctx)

	case "read", "r":
		page, err := needPage()
		if err != nil {
			return err
		}
		return a.read(ctx, page)

	case "write", "w":
		if len(args) < 2 {
			return fmt.Errorf("usage: write <page> <hex>")
		}
		page, err := parsePage(args[0])
		if err != nil {
			return err
		}
		if err := a.write(ctx, page, strings.Join(args[1:], "")); err != nil {
			return err
		}
		return a.save()

	case "lock":
		page, err := needPage()
		if err != nil {
			return err
		}
		if err := a.lock(ctx, page); err != nil {
			return err
		}
		return a.save()

	case "locked", "l":
		page, err := needPage()
		if err != nil {
			return err
		}
		return a.locked(ctx, page)

	case "dump", "d":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return a.dump(ctx, path)

	case "program", "p":
		if len(args) < 1 {
			return fmt.Errorf("usage: program <file>")
		}
		if err := a.program(ctx, args[0]); err != nil {
			return err
		}
		return a.save()

	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

func (a *app) printHelp() {
	fmt.Fprintln(a.out, `Commands:
  scan, s               list devices on the bus
  info, i               show the bound device
  search                bind the first supported device
  read, r <page>        hex dump a page
  write, w <page> <hex> write up to 32 bytes
  lock <page>           write-protect a page
  locked, l <page>      query a page's write protection
  dump, d [file]        save all pages
  program, p <file>     write a page image
  help, ?               this text
  quit, exit, q         leave`)
}
