package cmd

import (
	"github.com/KimNorgaard/go-tonl"
	"github.com/KimNorgaard/go-tonl/internal/token"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// encodeFlags are the flags shared by the commands that produce TONL.
type encodeFlags struct {
	from      string
	delimiter string
	indent    int
	typeHints bool
	smart     bool
	pretty    bool
	threshold float64
}

func (f *encodeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.from, "from", "", "input format: json or yaml (default: by extension, else json)")
	fs.StringVarP(&f.delimiter, "delimiter", "d", ",", `field delimiter: ",", "|", ";" or "\t"/"tab"`)
	fs.IntVar(&f.indent, "indent", 2, "spaces per nesting level")
	fs.BoolVar(&f.typeHints, "type-hints", false, "annotate table columns with type hints")
	fs.BoolVar(&f.smart, "smart", false, "pick the delimiter that needs the least quoting")
	fs.BoolVar(&f.pretty, "pretty", false, "put a space after each delimiter")
	fs.Float64Var(&f.threshold, "semi-uniform-threshold", 0.6, "share of objects that must carry the common keys for a table")
}

// resolve merges the profile under the flags the user set explicitly.
func (f *encodeFlags) resolve(fs *pflag.FlagSet, p EncodeProfile) {
	if !fs.Changed("from") && p.From != "" {
		f.from = p.From
	}
	if !fs.Changed("delimiter") && p.Delimiter != "" {
		f.delimiter = p.Delimiter
	}
	if !fs.Changed("indent") && p.Indent > 0 {
		f.indent = p.Indent
	}
	if !fs.Changed("type-hints") && p.TypeHints {
		f.typeHints = true
	}
	if !fs.Changed("smart") && p.Smart {
		f.smart = true
	}
	if !fs.Changed("pretty") && p.Pretty {
		f.pretty = true
	}
	if !fs.Changed("semi-uniform-threshold") && p.SemiUniformThreshold > 0 {
		f.threshold = p.SemiUniformThreshold
	}
}

// options translates the flags into codec options. With --smart the
// delimiter is left to the encoder unless it was given explicitly.
func (f *encodeFlags) options(fs *pflag.FlagSet, p EncodeProfile) ([]tonl.Option, error) {
	opts := []tonl.Option{
		tonl.Indent(f.indent),
		tonl.SemiUniformThreshold(f.threshold),
	}
	if !f.smart || fs.Changed("delimiter") || p.Delimiter != "" {
		d, err := token.ParseDelimiter(f.delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tonl.Delimiter(d))
	}
	if !f.smart || fs.Changed("type-hints") || p.TypeHints {
		opts = append(opts, tonl.TypeHints(f.typeHints))
	}
	if f.pretty {
		opts = append(opts, tonl.PrettyDelimiters())
	}
	return opts, nil
}

func (f *encodeFlags) marshal(v any, opts []tonl.Option) ([]byte, error) {
	if f.smart {
		return tonl.MarshalSmart(v, opts...)
	}
	return tonl.Marshal(v, opts...)
}

func newEncodeCmd(st *state) *cobra.Command {
	var (
		flags  encodeFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert JSON or YAML to TONL",
		Long: `Convert a JSON or YAML document to TONL.

Without a file argument the document is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := firstArg(args)
			flags.resolve(cmd.Flags(), st.profile.Encode)

			format, err := sourceFormat(flags.from, name)
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			v, err := decodeSource(data, format)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd.Flags(), st.profile.Encode)
			if err != nil {
				return err
			}
			out, err := flags.marshal(v, opts)
			if err != nil {
				return err
			}
			st.logger.Debug("encoded document", "input", displayName(name), "format", format, "in_bytes", len(data), "out_bytes", len(out))
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
