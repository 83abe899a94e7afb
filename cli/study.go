package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/render"
)

// StudyOptions holds flags for the study command.
type StudyOptions struct {
	*RootOptions
	Zoom     int
	PlotOnly bool
	ASCII    bool
	Format   string // "text" | "json"
	PDFPath  string
	PNGPath  string
}

// NewStudyCommand creates the study command.
func NewStudyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StudyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "study <expr>",
		Short: "Study a function of x and print the results",
		Long: `Run the full study of a function of x, or only plot it with --plot-only.

Example:
  funcstudy study "x**3 - 3*x"
  funcstudy study "1/x" --format json
  funcstudy study "sin(x)/x" --zoom 20 --pdf .
  funcstudy study "ln(x)" --plot-only --ascii`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.Zoom, "zoom", "z", 0, "half-width of the plot window, 1 to 50 (default from config)")
	cmd.Flags().BoolVar(&opts.PlotOnly, "plot-only", false, "skip the study and only sample the function")
	cmd.Flags().BoolVar(&opts.ASCII, "ascii", false, "draw the plot in the terminal")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json)")
	cmd.Flags().StringVar(&opts.PDFPath, "pdf", "", "write the study PDF to this file or directory")
	cmd.Flags().StringVar(&opts.PNGPath, "png", "", "write the plot PNG to this file")

	return cmd
}

func runStudy(opts *StudyOptions, expr string, out io.Writer) error {
	if opts.Format != "text" && opts.Format != "json" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be text or json", opts.Format))
	}
	if opts.PlotOnly && opts.PDFPath != "" {
		return NewExitError(ExitCommandError, "--pdf needs the full study, drop --plot-only")
	}
	zoom := opts.Zoom
	if zoom == 0 {
		zoom = opts.Config.Study.DefaultZoom
	}
	req := funcstudy.Request{
		Expr:  expr,
		Zoom:  zoom,
		Study: !opts.PlotOnly,
		Plot:  opts.PlotOnly,
	}
	slog.Debug("running study", "expr", expr, "zoom", zoom, "study", req.Study, "plot", req.Plot)
	res := funcstudy.Run(req, funcstudy.Pipeline{Options: opts.Config.Study.Options()})
	if res.Empty() {
		return NewExitError(ExitFailure, "missing expression")
	}

	doc, err := render.NewDocument(res, render.DocumentOptions{PDF: opts.PDFPath != ""})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render", err)
	}
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	} else if res.Err == nil {
		if err := writeText(out, res, opts.ASCII); err != nil {
			return WrapExitError(ExitFailure, "failed to draw plot", err)
		}
	}
	if res.Err != nil {
		return WrapExitError(ExitFailure, "study failed", res.Err)
	}

	if opts.PDFPath != "" {
		path := opts.PDFPath
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, render.PDFFileName)
		}
		if err := os.WriteFile(path, doc.Study.PDF, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write PDF", err)
		}
		slog.Info("PDF written", "path", path)
	}
	if opts.PNGPath != "" {
		png, err := render.Plot(gridOf(res), "f(x) = "+res.Function.String())
		if err != nil {
			return WrapExitError(ExitFailure, "failed to plot", err)
		}
		if err := os.WriteFile(opts.PNGPath, png, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write PNG", err)
		}
		slog.Info("PNG written", "path", opts.PNGPath)
	}
	return nil
}

func writeText(out io.Writer, res *funcstudy.Result, ascii bool) error {
	if r := res.Study; r != nil {
		fmt.Fprint(out, render.SummaryText(r))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Variation table")
		fmt.Fprint(out, render.VariationTable(r.Variation))
	}
	if g := gridOf(res); g != nil {
		if res.Study != nil {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "f(x) = %s on [-%d, %d]: %d of %d samples defined\n",
			res.Function.String(), g.Zoom, g.Zoom, g.Defined(), len(g.X))
		if ascii {
			plot, err := render.ASCIIPlot(g, 72, 20)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, plot)
		}
	}
	return nil
}

// gridOf returns the sampled curve of either action.
func gridOf(res *funcstudy.Result) *funcstudy.Grid {
	if res.Plot != nil {
		return res.Plot
	}
	if res.Study != nil {
		return res.Study.Grid
	}
	return nil
}
