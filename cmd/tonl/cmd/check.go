package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/KimNorgaard/go-tonl"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var errMismatch = errors.New("round trip changed the document")

func newCheckCmd(st *state) *cobra.Command {
	var flags encodeFlags
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Verify that a document survives a TONL round trip",
		Long: `Encode a JSON or YAML document to TONL, decode it again and compare the
two trees. Differences are printed as a character diff of their JSON
renderings.`,
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
			encoded, err := flags.marshal(v, opts)
			if err != nil {
				return err
			}
			back, err := tonl.Parse(encoded, tonl.Strict(), tonl.Logger(st.logger))
			if err != nil {
				return fmt.Errorf("decoding our own output: %w", err)
			}

			want, err := canonicalJSON(v)
			if err != nil {
				return err
			}
			got, err := canonicalJSON(back)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if want == got {
				fmt.Fprintf(w, "%s %s (%d bytes of TONL)\n", paint(w, st.noColor, color.FgGreen).Sprint("ok"), displayName(name), len(encoded))
				return nil
			}
			printDiff(w, st.noColor, want, got)
			return errMismatch
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// canonicalJSON renders v as indented JSON with numbers normalised to
// float64, the precision both sides of the round trip share.
func canonicalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var norm any
	if err := json.Unmarshal(b, &norm); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(norm); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func printDiff(w io.Writer, noColor bool, want, got string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	diffs = dmp.DiffCleanupSemantic(diffs)

	del := paint(w, noColor, color.FgRed)
	ins := paint(w, noColor, color.FgGreen)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprint(w, del.Sprint(prefixLines("-", d.Text)))
		case diffmatchpatch.DiffInsert:
			fmt.Fprint(w, ins.Sprint(prefixLines("+", d.Text)))
		case diffmatchpatch.DiffEqual:
			fmt.Fprint(w, prefixLines(" ", d.Text))
		}
	}
}

func prefixLines(prefix, text string) string {
	var b bytes.Buffer
	for _, line := range bytes.SplitAfter([]byte(text), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		b.WriteString(prefix)
		b.Write(line)
	}
	return b.String()
}
