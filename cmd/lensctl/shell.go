package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/lens/internal/registry"
	"github.com/dekarrin/lens/lens"
)

// commandReader is the subset of input.DirectCommandReader/
// InteractiveCommandReader the shell needs.
type commandReader interface {
	ReadCommand() (string, error)
	Close() error
}

// shell is the REPL's mutable state: which named lens is currently selected
// and the settings Get/Put calls should run under.
type shell struct {
	lensName string
	settings lens.Settings
}

func (sh *shell) run(r commandReader, startCommands []string) error {
	for _, cmd := range startCommands {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if !sh.dispatch(cmd) {
			return nil
		}
	}

	for {
		line, err := r.ReadCommand()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !sh.dispatch(line) {
			return nil
		}
	}
}

// dispatch runs one shell command, returning false if the shell should
// exit.
func (sh *shell) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return false
	case "help":
		sh.printHelp()
	case "lenses":
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
	case "lens":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: lens NAME")
			return true
		}
		if _, err := registry.Lookup(fields[1]); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return true
		}
		sh.lensName = fields[1]
	case "trace":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: trace on|off")
			return true
		}
		if fields[1] == "on" {
			sh.settings.SetTraceWriter(os.Stderr)
		} else {
			sh.settings.SetTraceWriter(nil)
		}
	case "get":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: get FILE")
			return true
		}
		sh.cmdGet(fields[1])
	case "put":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: put FILE [OUTFILE]")
			return true
		}
		out := ""
		if len(fields) >= 3 {
			out = fields[2]
		}
		sh.cmdPut(fields[1], out)
	default:
		fmt.Fprintf(os.Stderr, "unrecognized command %q; type \"help\" for the command list\n", fields[0])
	}
	return true
}

func (sh *shell) printHelp() {
	fmt.Println(`commands:
  lenses             list the available named lenses
  lens NAME          select the named lens for subsequent get/put
  get FILE           GET the lens's model out of FILE and print it
  put FILE [OUT]     GET FILE, then PUT it straight back (round-trip check),
                      writing to OUT or stdout
  trace on|off       toggle the GET/PUT debug tracer
  help               show this text
  quit               exit the shell`)
}

func (sh *shell) cmdGet(path string) {
	entry, err := registry.Lookup(sh.lensName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}

	var model any
	lens.WithSettings(sh.settings, func() {
		model, err = lens.Get(entry.Build(), string(text))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}
	fmt.Printf("%#v\n", model)
}

func (sh *shell) cmdPut(path, outPath string) {
	entry, err := registry.Lookup(sh.lensName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}

	var model any
	var out string
	lens.WithSettings(sh.settings, func() {
		l := entry.Build()
		model, err = lens.Get(l, string(text))
		if err != nil {
			return
		}
		out, err = lens.Put(l, model, lens.WithOriginal(string(text)))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return
	}

	if outPath == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	}
}
