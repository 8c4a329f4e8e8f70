/*
Lensctl is an interactive shell for exercising the lens library's named
example lenses against real files.

Usage:

	lensctl [flags]

The flags are:

	-v, --version
		Give the current version of lens and then exit.

	-l, --lens NAME
		Select the named lens to use (see the "lenses" command for the
		available set). Defaults to the config file's default_lens, or
		"netiface" if that is also unset.

	-d, --direct
		Force reading commands directly from stdin instead of going through
		GNU readline where possible.

	-c, --command COMMANDS
		Immediately run the given shell command(s) at start. Can be multiple
		commands separated by the ";" character.

	-t, --trace
		Enable the lens debug tracer, writing GET/PUT entry/exit trace lines
		to stderr.

Once started, type "help" for the list of shell commands. To exit, type
"quit".
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/dekarrin/lens/internal/input"
	"github.com/dekarrin/lens/internal/registry"
	"github.com/dekarrin/lens/internal/version"
	"github.com/dekarrin/lens/lens"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the shell.
	ExitInitError

	// ExitShellError indicates an unsuccessful program execution due to a
	// problem that occurred while the shell was running.
	ExitShellError
)

// fileConfig is the shape of ~/.lensctl.toml, loaded via BurntSushi/toml
// before flags are applied, mirroring the teacher's structured
// TOML-driven configuration.
type fileConfig struct {
	DefaultLens       string `toml:"default_lens"`
	CheckConsumption  *bool  `toml:"check_consumption"`
	MaxRecursionDepth int    `toml:"max_recursion_depth"`
}

func loadFileConfig() fileConfig {
	var cfg fileConfig
	home, err := os.UserHomeDir()
	if err != nil {
		return cfg
	}
	path := filepath.Join(home, ".lensctl.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not read %s: %v\n", path, err)
	}
	return cfg
}

var (
	returnCode    int     = ExitSuccess
	flagVersion   *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagLens      *string = pflag.StringP("lens", "l", "", "The named example lens to use")
	flagDirect    *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	flagCommand   *string = pflag.StringP("command", "c", "", "Execute the given shell commands immediately at start")
	flagTrace     *bool   = pflag.BoolP("trace", "t", false, "Enable the lens debug tracer to stderr")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	fileCfg := loadFileConfig()

	sh := &shell{lensName: fileCfg.DefaultLens}
	if sh.lensName == "" {
		sh.lensName = "netiface"
	}
	if *flagLens != "" {
		sh.lensName = *flagLens
	}
	if _, err := registry.Lookup(sh.lensName); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}

	settings := lens.DefaultSettings()
	if fileCfg.CheckConsumption != nil {
		settings.CheckConsumption = *fileCfg.CheckConsumption
	}
	if fileCfg.MaxRecursionDepth > 0 {
		settings.MaxRecursionDepth = fileCfg.MaxRecursionDepth
	}
	if *flagTrace {
		settings.SetTraceWriter(os.Stderr)
	}
	sh.settings = settings

	var startCommands []string
	if *flagCommand != "" {
		startCommands = strings.Split(*flagCommand, ";")
	}

	useReadline := !*flagDirect
	var reader commandReader
	if useReadline {
		icr, err := input.NewInteractiveReader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			returnCode = ExitInitError
			return
		}
		icr.SetPrompt(fmt.Sprintf("lens(%s)> ", sh.lensName))
		reader = icr
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	if err := sh.run(reader, startCommands); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitShellError
	}
}
