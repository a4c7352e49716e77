package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"setupwizard/internal/response"
	"setupwizard/internal/util/jsonutil"
)

func newExtractCmd(env *Env) *cobra.Command {
	var (
		strict      bool
		diagnostics bool
	)
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Run the response pipeline over a saved completion and print the configuration",
		Long: `extract reads a raw model completion (use - for stdin), recovers the JSON
configuration from it exactly as generate does, and prints the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(env.In, args[0])
			if err != nil {
				return &UsageError{Err: err}
			}
			p := response.DefaultPolicy()
			p.Strict = strict
			res, err := response.Pipeline(string(raw), p)
			if diagnostics {
				fmt.Fprintf(env.Err, "strategy: %s, repaired: %t, outcome: %s\n", res.Candidate.Strategy, res.Candidate.Repaired, res.Outcome)
				for _, d := range res.Diagnostics {
					fmt.Fprintln(env.Err, d.String())
				}
			}
			if err != nil {
				return err
			}
			out, err := jsonutil.MarshalNoEscapeIndent(res.Config, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.Out, string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of filling gaps with defaults")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print extraction details to stderr")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
