package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	xterm "golang.org/x/term"
	"pkt.systems/pslog"

	"github.com/kk-code-lab/spage/internal/app"
	"github.com/kk-code-lab/spage/internal/config"
	"github.com/kk-code-lab/spage/internal/logx"
)

var (
	errNoInput    = errors.New("no input: pass files, use --command, or pipe data to stdin")
	errStdinTwice = errors.New(`"-" names stdin and may be given only once`)
)

var stdinIsTerminal = func() bool {
	return xterm.IsTerminal(int(os.Stdin.Fd()))
}

type rootOptions struct {
	configPath   string
	commands     []string
	title        string
	progressFile string
	progressFD   int
}

func runPager(cmd *cobra.Command, opts rootOptions, args []string) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, closer, err := logx.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)

	pager, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := addInputs(pager, opts, args); err != nil {
		return err
	}
	if pager.Files() == 0 {
		return errNoInput
	}
	if err := addProgress(pager, opts); err != nil {
		return err
	}
	logger.Info("spage starting", "files", pager.Files(), "mode", string(cfg.InterfaceMode))
	return pager.Run(ctx)
}

// addInputs adds stdin, the commands and the file arguments, in that
// order. A "-" argument names stdin explicitly and may appear once.
func addInputs(pager *app.Pager, opts rootOptions, args []string) error {
	stdinUsed := false
	for _, arg := range args {
		if arg != "-" {
			continue
		}
		if stdinUsed {
			return errStdinTwice
		}
		stdinUsed = true
	}
	if !stdinUsed && !stdinIsTerminal() {
		pager.AddOutputStream(os.Stdin, opts.title)
	}

	for _, line := range opts.commands {
		argv := app.SplitCommand(line)
		if len(argv) == 0 {
			return fmt.Errorf("--command: empty command")
		}
		if _, err := pager.AddSubprocess(argv[0], argv[1:], strings.TrimSpace(line)); err != nil {
			return err
		}
	}

	for _, arg := range args {
		if arg == "-" {
			pager.AddOutputStream(os.Stdin, opts.title)
			continue
		}
		if _, err := pager.AddOutputFile(arg); err != nil {
			return err
		}
	}
	return nil
}

func addProgress(pager *app.Pager, opts rootOptions) error {
	switch {
	case opts.progressFile != "" && opts.progressFD >= 0:
		return fmt.Errorf("--progress-file and --progress-fd are exclusive")
	case opts.progressFile != "":
		f, err := os.Open(opts.progressFile)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		pager.SetProgressStream(f)
	case opts.progressFD >= 0:
		f := os.NewFile(uintptr(opts.progressFD), "progress")
		if f == nil {
			return fmt.Errorf("progress: invalid descriptor %d", opts.progressFD)
		}
		pager.SetProgressStream(f)
	}
	return nil
}
