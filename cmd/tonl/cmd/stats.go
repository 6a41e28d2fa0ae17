package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/KimNorgaard/go-tonl"
	"github.com/spf13/cobra"
)

func newStatsCmd(st *state) *cobra.Command {
	var flags encodeFlags
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Compare the size of a document as JSON and as TONL",
		Args:  cobra.MaximumNArgs(1),
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
			compact, err := json.Marshal(v)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd.Flags(), st.profile.Encode)
			if err != nil {
				return err
			}
			encoded, err := flags.marshal(v, opts)
			if err != nil {
				return err
			}
			smart, err := tonl.MarshalSmart(v)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "format\tbytes\tvs JSON\t")
			for _, row := range []struct {
				name string
				n    int
			}{
				{"json", len(compact)},
				{"tonl", len(encoded)},
				{"tonl (smart)", len(smart)},
			} {
				fmt.Fprintf(tw, "%s\t%d\t%s\t\n", row.name, row.n, ratio(row.n, len(compact)))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func ratio(n, base int) string {
	if base == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(base))
}
