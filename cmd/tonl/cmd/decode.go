package cmd

import (
	"github.com/KimNorgaard/go-tonl"
	"github.com/spf13/cobra"
)

func newDecodeCmd(st *state) *cobra.Command {
	var (
		to           string
		output       string
		strict       bool
		maxInputSize int
		maxDepth     int
	)
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Convert TONL to JSON or YAML",
		Long: `Convert a TONL document to JSON (the default) or YAML.

Malformed lines are skipped unless --strict is given; run with --verbose
to see what was repaired.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := st.profile.Decode
			fs := cmd.Flags()
			if !fs.Changed("to") && p.To != "" {
				to = p.To
			}
			if !fs.Changed("strict") && p.Strict {
				strict = true
			}
			if !fs.Changed("max-input-size") && p.MaxInputSize > 0 {
				maxInputSize = p.MaxInputSize
			}
			if !fs.Changed("max-depth") && p.MaxDepth > 0 {
				maxDepth = p.MaxDepth
			}

			name := firstArg(args)
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			opts := []tonl.Option{
				tonl.Logger(st.logger),
				tonl.MaxInputSize(maxInputSize),
				tonl.MaxDepth(maxDepth),
			}
			if strict {
				opts = append(opts, tonl.Strict())
			}
			v, err := tonl.Parse(data, opts...)
			if err != nil {
				return err
			}
			out, err := encodeTarget(v, to)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject input instead of repairing it")
	cmd.Flags().IntVar(&maxInputSize, "max-input-size", 10<<20, "largest accepted document in bytes")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 100, "deepest accepted nesting")
	return cmd
}
