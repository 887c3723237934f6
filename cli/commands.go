package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mnehpets/jsonreq/demo"
	"github.com/mnehpets/jsonreq/jsonrpc"
	"github.com/mnehpets/jsonreq/wire"
)

const formatTable = "table"

func methodArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return demo.Method
}

func newDescribeCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "describe [METHOD]",
		Short: "Print the help document of a callable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.request(methodArg(args))
			if err != nil {
				return err
			}
			format := output
			if format == "" {
				format = a.cfg.Output.Format
			}
			if strings.EqualFold(format, formatTable) {
				return writeHelpTable(a.stdout, r.Help())
			}
			return a.write(format, r.Help())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: json, yaml, cbor or table")
	return cmd
}

func newCallCommand(a *app) *cobra.Command {
	var (
		method   string
		input    string
		output   string
		file     string
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "call [PARAMS]",
		Short: "Invoke a callable with a JSON array or object of parameters",
		Long: `Invoke a callable. PARAMS is a JSON array (positional) or object (named).
Without PARAMS the bundle is read from --file, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.request(method)
			if err != nil {
				return err
			}
			inName, outName := input, output
			if inName == "" {
				inName = a.cfg.Input.Format
			}
			if outName == "" {
				outName = a.cfg.Output.Format
			}
			inFormat, err := wire.ParseFormat(inName)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) > 0 {
				data = []byte(args[0])
			} else if data, err = a.readInput(file); err != nil {
				return err
			}
			params, err := wire.Decode(inFormat, data)
			if err != nil {
				return err
			}

			if validate {
				if err := r.ValidateParams(params); err != nil {
					return err
				}
			}
			result, err := r.Invoke(cmd.Context(), params)
			if err != nil {
				return err
			}
			a.log.Debug().Str("method", method).Int("y", a.y.Load()).Msg("call complete")
			return a.write(outName, result)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&method, "method", "m", demo.Method, "callable to invoke")
	f.StringVarP(&input, "input", "i", "", "input format: json, yaml or cbor")
	f.StringVarP(&output, "output", "o", "", "output format: json, yaml or cbor")
	f.StringVarP(&file, "file", "f", "", "read PARAMS from file (- for stdin)")
	f.BoolVar(&validate, "validate", false, "validate PARAMS against the callable's schema first")
	return cmd
}

func newSchemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [METHOD]",
		Short: "Print the JSON Schema of a callable's named parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.request(methodArg(args))
			if err != nil {
				return err
			}
			return a.write(string(wire.JSON), r.Schema())
		},
	}
}

func newRPCCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rpc [FILE]",
		Short: "Handle a JSON-RPC 2.0 request or batch read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			body, err := a.readInput(file)
			if err != nil {
				return err
			}
			out, err := a.endpoint.Handle(cmd.Context(), body)
			if err != nil {
				return err
			}
			if out == nil {
				return nil
			}
			_, err = fmt.Fprintf(a.stdout, "%s\n", out)
			return err
		},
	}
}

// readInput reads file, or stdin when file is "" or "-".
func (a *app) readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(file)
}

func (a *app) write(format string, v any) error {
	f, err := wire.ParseFormat(format)
	if err != nil {
		return err
	}
	out, err := wire.Encode(f, v)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

func writeHelpTable(w io.Writer, h jsonrpc.Help) error {
	type row struct {
		name string
		p    jsonrpc.ParamHelp
	}
	rows := make([]row, 0, len(h.Params))
	for name, p := range h.Params {
		rows = append(rows, row{name, p})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].p.Index < rows[j].p.Index })

	if _, err := fmt.Fprintf(w, "%s\n\n", h.Description); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Index", "Name", "Type", "Description"})
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{fmt.Sprint(r.p.Index), r.name, r.p.TypeExample, r.p.Description})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
