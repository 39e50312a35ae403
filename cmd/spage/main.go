package main

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	// Set UTF-8 as fallback encoding for terminals with a legacy charset.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("spage failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	root := &cobra.Command{
		Use:   "spage [flags] [file...]",
		Short: "Page live output of files, pipes and commands",
		Long: `spage shows one or more growing inputs in a scrollable, searchable
terminal view. Input comes from files, from stdin when it is not a terminal,
and from commands started with --command, whose stderr is shown as a
separate error view (toggle with e).`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPager(cmd, opts, args)
		},
	}

	flags := root.Flags()
	flags.StringArrayVarP(&opts.commands, "command", "e", nil, "run a command and page its output (repeatable)")
	flags.StringVar(&opts.title, "title", "stdin", "title of the stdin input")
	flags.StringVar(&opts.progressFile, "progress-file", "", "read progress updates from a file or FIFO")
	flags.IntVar(&opts.progressFD, "progress-fd", -1, "read progress updates from an inherited file descriptor")
	flags.String("mode", "", "interface mode: full_screen, direct, hybrid or delayed")
	flags.Bool("scroll-past-eof", false, "allow scrolling past the last line")
	flags.Int("read-ahead", 0, "lines to lay out beyond the screen")
	flags.BoolP("follow", "f", false, "keep the view on the end of growing inputs")
	flags.String("wrap", "", "line wrapping: none, char or word")
	flags.BoolP("line-numbers", "N", false, "show line numbers")
	flags.Duration("refresh-interval", 0, "minimum time between redraws for new data")
	flags.String("history", "", "prompt history database path")

	persistent := root.PersistentFlags()
	persistent.StringVarP(&opts.configPath, "config", "c", "", "config file (default: user config dir)")
	persistent.String("log-file", "", "write diagnostics to this file")
	persistent.String("log-level", "", "log level: trace, debug, info, warn or error")

	root.AddCommand(newConfigCmd(&opts.configPath))
	return root
}
