package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/23skdu/longbow-memprep/internal/compare"
	"github.com/23skdu/longbow-memprep/internal/config"
	"github.com/23skdu/longbow-memprep/internal/inputgen"
	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/23skdu/longbow-memprep/internal/memfile"
	"github.com/23skdu/longbow-memprep/internal/metrics"
	"github.com/23skdu/longbow-memprep/internal/pipeline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type app struct {
	fs  afero.Fs
	cfg config.Config

	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
}

func newApp(fs afero.Fs) *app {
	return &app{fs: fs, cfg: config.Default()}
}

// execute runs the command tree and then flushes the metrics textfile,
// whether or not the command failed.
func (a *app) execute(args []string, stdout, stderr io.Writer) error {
	root := a.rootCmd()
	root.SetArgs(args)
	if stdout != nil {
		root.SetOut(stdout)
	}
	if stderr != nil {
		root.SetErr(stderr)
	}
	runErr := root.Execute()

	path := a.cfg.MetricsFile
	if path == "" {
		path = a.metricsFile
	}
	if err := metrics.WriteTextfile(path); err != nil {
		if runErr == nil {
			return err
		}
		logger.Log.Error("metrics textfile not written", "error", err)
	}
	return runErr
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "memprep",
		Short:         "Prepare and check Q4.12 memory images for the BiLSTM pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "console or json")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here on exit")

	root.AddCommand(
		a.prepareCmd(),
		a.convertCmd(),
		a.reshapeCmd(),
		a.cleanCmd(),
		a.inputsCmd(),
		a.compareCmd(),
		a.decodeCmd(),
	)
	return root
}

// setup layers the config file under explicit flags and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.fs, a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.LogFormat = a.logFormat
	}
	if a.metricsFile != "" {
		a.cfg.MetricsFile = a.metricsFile
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(a.cfg.LogLevel, a.cfg.LogFormat)
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (a *app) prepareCmd() *cobra.Command {
	var noGuard bool
	cmd := &cobra.Command{
		Use:   "prepare [dir]",
		Short: "Convert every .txt in a directory and pack the BiLSTM weight files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if len(args) == 1 {
				cfg.Dir = args[0]
			}
			if noGuard {
				cfg.Guard = false
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sum, err := pipeline.New(a.fs, cfg).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d, reshaped %d, cleaned %d, already processed %d, skipped lines %d\n",
				sum.Converted, sum.Reshaped, sum.Cleaned, sum.GuardSkipped, sum.LinesSkipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noGuard, "no-guard", false, "rewrite files even if a previous run already packed them")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.txt> [output.mem]",
		Short: "Quantize one real per line into hex words",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			out := strings.TrimSuffix(in, ".txt") + ".mem"
			if len(args) == 2 {
				out = args[1]
			}
			res, err := memfile.NewConverter(a.fs, a.cfg.Format).ConvertFile(in, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %s -> %s (%d words, %d skipped, %d wrapped)\n",
				in, out, res.Written, res.Skipped, res.Wrapped)
			return nil
		},
	}
}

func (a *app) reshapeCmd() *cobra.Command {
	var group int
	cmd := &cobra.Command{
		Use:   "reshape <file.mem>...",
		Short: "Pack consecutive rows of a .mem file into one, in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if group < 1 {
				return fmt.Errorf("invalid --group %d (must be positive)", group)
			}
			for _, path := range args {
				n, err := memfile.ReshapeFile(a.fs, path, group)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed and reduced %s (%d-row concat, %d rows)\n", path, group, n)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&group, "group", "g", 2, "rows per packed row")
	return cmd
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <file.mem>...",
		Short: "Trim rows and drop blank lines, in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				n, err := memfile.CleanFile(a.fs, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %s (%d rows)\n", path, n)
			}
			return nil
		},
	}
}

func (a *app) inputsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inputs [input.txt] [output.mem]",
		Short: "Encode a comma/whitespace separated blob as a clamped input vector",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := "test_inputs_difficult.txt", "input_memory_difficult.mem"
			if len(args) > 0 {
				in = args[0]
			}
			if len(args) > 1 {
				out = args[1]
			}
			st, err := inputgen.NewGenerator(a.fs, a.cfg.Format).GenerateFile(in, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d words to %s (%d clamped)\n", st.Tokens, out, st.Clamped)
			return nil
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	var (
		maxRows       int
		allowMismatch bool
	)
	cmd := &cobra.Command{
		Use:   "compare [reference] [produced]",
		Short: "Report per-axis absolute error and RMSE between two x,y,z row files",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refPath, gotPath := "test_outputs_difficult.txt", "test_labels_difficult.txt"
			if len(args) > 0 {
				refPath = args[0]
			}
			if len(args) > 1 {
				gotPath = args[1]
			}
			if !cmd.Flags().Changed("max-rows") {
				maxRows = a.cfg.MaxCompareRows
			}
			if maxRows < 1 {
				return fmt.Errorf("invalid --max-rows %d (must be positive)", maxRows)
			}

			ref, err := compare.LoadVectors(a.fs, refPath, maxRows)
			if err != nil {
				return err
			}
			got, err := compare.LoadVectors(a.fs, gotPath, maxRows)
			if err != nil {
				return err
			}
			rep, err := compare.Compare(ref, got, allowMismatch || a.cfg.AllowMismatch)
			if err != nil {
				return err
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&maxRows, "max-rows", 100, "rows read from each file")
	cmd.Flags().BoolVar(&allowMismatch, "allow-mismatch", false, "compare the common prefix when row counts differ")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file.mem>",
		Short: "Print the real values held in a .mem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := memfile.DecodeFile(a.fs, args[0], a.cfg.Format)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, row := range rows {
				for i, v := range row {
					if i > 0 {
						fmt.Fprint(w, " ")
					}
					fmt.Fprintf(w, "%.12g", v)
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
}
