// Command hillfit prints the power-law (S-system) approximation of
// Hill-type kinetic rate laws around their reference operating points.
//
// With no reaction file it runs on the built-in Brännmark et al. (2013)
// reactions v29 and v33:
//
//	hillfit approx
//	hillfit show --latex
//	hillfit approx --reactions laws.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/sysbiogo/hillfit"
)

type rootOptions struct {
	Verbose   bool
	Reactions string
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hillfit:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hillfit",
		Short: "Power-law approximation of Hill-type kinetics",
		Long: `hillfit fits a power-law (S-system) monomial k' * x^p * y^q to each
Hill-type rate law at its reference operating point. Exponents are the
elasticities (logarithmic sensitivities) of the rate; the rate constant is
back-solved so the monomial reproduces the rate exactly at that point.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: "15:04:05",
				}),
			))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.Reactions, "reactions", "", "YAML reaction file (default: built-in Brännmark v29/v33)")

	cmd.AddCommand(newApproxCmd(opts))
	cmd.AddCommand(newShowCmd(opts))

	return cmd
}

func newApproxCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "approx",
		Short: "Fit and print power-law exponents and rate constants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			laws, err := loadLaws(opts.Reactions)
			if err != nil {
				return err
			}
			return runApprox(cmd.OutOrStdout(), laws)
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var latex bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the symbolic rate laws and their partial derivatives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			laws, err := loadLaws(opts.Reactions)
			if err != nil {
				return err
			}
			return runShow(cmd.OutOrStdout(), laws, latex)
		},
	}
	cmd.Flags().BoolVar(&latex, "latex", false, "render expressions as LaTeX")
	return cmd
}

func loadLaws(path string) ([]hillfit.RateLaw, error) {
	if path == "" {
		slog.Debug("using built-in Brännmark reactions")
		return hillfit.Brannmark(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	laws, err := hillfit.LoadReactions(f)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded reaction file", "path", path, "reactions", len(laws))
	return laws, nil
}

// runApprox fits every law and prints one labeled block per value:
// exponents for all reactions first, then the back-solved rate constants,
// each as a label line, the value, and a blank line.
func runApprox(w io.Writer, laws []hillfit.RateLaw) error {
	fits := make([]*hillfit.PowerLaw, 0, len(laws))
	for _, law := range laws {
		pl, err := hillfit.Fit(law)
		if err != nil {
			return err
		}
		slog.Debug("fitted reaction", "name", pl.Name, "k", pl.K)
		fits = append(fits, pl)
	}
	for _, pl := range fits {
		for i, t := range pl.Terms {
			printBlock(w, hillfit.ExponentLabel(pl.Name, i), formatFloat(t.Exponent))
		}
	}
	for _, pl := range fits {
		printBlock(w, hillfit.ConstantLabel(pl.Name), formatFloat(pl.K))
	}
	return nil
}

// runShow prints each symbolic rate law and its partials with respect to
// the fitted variables, before any numeric substitution.
func runShow(w io.Writer, laws []hillfit.RateLaw, latex bool) error {
	render := hillfit.String
	if latex {
		render = hillfit.LaTeX
	}
	for _, law := range laws {
		fmt.Fprintf(w, "v%s = %s\n", law.Name, render(law.Rate))
		for _, name := range law.Vars {
			fmt.Fprintf(w, "dv%s/d%s = %s\n", law.Name, name, render(hillfit.Diff(law.Rate, name)))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printBlock(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s =\n%s\n\n", label, value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
