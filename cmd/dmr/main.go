// Command dmr is a small CLI frontend over this module's codecs, in the
// spirit of a worked example rather than a production tool: convert
// between the binary/text/JSON/base64/CBOR encodings, check a document
// for well-formedness, or resolve its expression templates against the
// process environment.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmrmodel/dmr/b64"
	"github.com/dmrmodel/dmr/binary"
	"github.com/dmrmodel/dmr/cbor"
	"github.com/dmrmodel/dmr/dmrtext"
	"github.com/dmrmodel/dmr/expr"
	"github.com/dmrmodel/dmr/jsontext"
	"github.com/dmrmodel/dmr/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dmr: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dmr",
		Short:         "Inspect and convert dynamic model representation documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newValidateCmd(), newResolveCmd())
	return root
}

// dialect names a wire format this command can read or write.
type dialect string

const (
	dialectBinary dialect = "binary"
	dialectText   dialect = "text"
	dialectJSON   dialect = "json"
	dialectB64    dialect = "base64"
	dialectCBOR   dialect = "cbor"
)

func readValue(d dialect, r io.Reader) (*value.Value, error) {
	switch d {
	case dialectBinary:
		return binary.Decode(r)
	case dialectText:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return dmrtext.Parse(string(src))
	case dialectJSON:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return jsontext.Parse(string(src))
	case dialectB64:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return b64.DecodeValue(strings.TrimSpace(string(src)))
	case dialectCBOR:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return cbor.Unmarshal(src)
	default:
		return nil, fmt.Errorf("unknown input format %q", d)
	}
}

func writeValue(d dialect, w io.Writer, v *value.Value, pretty bool) error {
	switch d {
	case dialectBinary:
		return binary.Encode(w, v)
	case dialectText:
		_, err := io.WriteString(w, dmrtext.Write(v, pretty)+"\n")
		return err
	case dialectJSON:
		_, err := io.WriteString(w, jsontext.Write(v, pretty)+"\n")
		return err
	case dialectB64:
		s, err := b64.EncodeValue(v)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s+"\n")
		return err
	case dialectCBOR:
		b, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q", d)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newConvertCmd() *cobra.Command {
	var from, to, in, out string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a document between binary, text, json, base64, and cbor",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(in)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer r.Close()

			v, err := readValue(dialect(from), r)
			if err != nil {
				return fmt.Errorf("reading %s: %w", from, err)
			}

			w, err := openOutput(out)
			if err != nil {
				return fmt.Errorf("opening output: %w", err)
			}
			defer w.Close()

			if err := writeValue(dialect(to), w, v, pretty); err != nil {
				return fmt.Errorf("writing %s: %w", to, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(dialectText), "input format: binary, text, json, base64, cbor")
	cmd.Flags().StringVar(&to, "to", string(dialectJSON), "output format: binary, text, json, base64, cbor")
	cmd.Flags().StringVar(&in, "in", "-", "input file, or - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, or - for stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print text/json output")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var from, in string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a document is well-formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(in)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer r.Close()

			if _, err := readValue(dialect(from), r); err != nil {
				return fmt.Errorf("invalid %s document: %w", from, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(dialectText), "input format: binary, text, json, base64, cbor")
	cmd.Flags().StringVar(&in, "in", "-", "input file, or - for stdin")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var from, to, in, out string
	var pretty bool
	var assignments []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Replace every expression template with its resolved value",
		Long: "Resolves every EXPRESSION node against the process environment, " +
			"optionally overlaid with --set name=value pairs checked first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(assignments)
			if err != nil {
				return err
			}

			r, err := openInput(in)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer r.Close()

			v, err := readValue(dialect(from), r)
			if err != nil {
				return fmt.Errorf("reading %s: %w", from, err)
			}

			resolved, err := v.Resolve(func(template string) (string, error) {
				return expr.Resolve(template, env)
			})
			if err != nil {
				return fmt.Errorf("resolving: %w", err)
			}

			w, err := openOutput(out)
			if err != nil {
				return fmt.Errorf("opening output: %w", err)
			}
			defer w.Close()

			if err := writeValue(dialect(to), w, resolved, pretty); err != nil {
				return fmt.Errorf("writing %s: %w", to, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(dialectText), "input format: binary, text, json, base64, cbor")
	cmd.Flags().StringVar(&to, "to", string(dialectText), "output format: binary, text, json, base64, cbor")
	cmd.Flags().StringVar(&in, "in", "-", "input file, or - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, or - for stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print text/json output")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "name=value, checked before the process environment; may repeat")
	return cmd
}

// buildEnvironment chains explicit --set assignments ahead of the OS
// environment, the same precedence order expr.Chain documents.
func buildEnvironment(assignments []string) (expr.Environment, error) {
	props := make(expr.Properties, len(assignments))
	for _, a := range assignments {
		name, val, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expecting name=value", a)
		}
		props[name] = val
	}
	return expr.Chain{props, expr.OSEnvironment{}}, nil
}
