// Package cli implements the chisel command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/chisel"
	"github.com/reoring/chisel/codec"
	"github.com/reoring/chisel/i18n"
	"github.com/reoring/chisel/jsonschema"
	"github.com/reoring/chisel/mapping"
	"github.com/reoring/chisel/schema/yamldef"
	"github.com/reoring/chisel/typedesc"
)

const (
	flagDefs    = "defs"
	flagType    = "type"
	flagVerbose = "verbose"
	flagLang    = "lang"
	flagLenient = "lenient"
)

var errNoType = errors.New("--type is required")

// globals are the persistent flags shared by every sub-command.
type globals struct {
	defs    string
	typ     string
	verbose int
	lang    string
	lenient bool
}

// New returns the root command.
func New() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:   "chisel [sub-command]",
		Short: "Convert documents through type descriptors",
		Long: `chisel hydrates JSON and YAML documents into declared types and
extracts them back into plain documents. Types are declared in a YAML
definitions file and named with type expressions such as "List[Pet]".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(*cobra.Command, []string) {
			i18n.SetLanguage(g.lang)
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.defs, flagDefs, "", "YAML file declaring records, enums, named tuples and typed dicts")
	pf.StringVarP(&g.typ, flagType, "t", "", `type expression, for example "List[Pet]"`)
	pf.CountVarP(&g.verbose, flagVerbose, "v", "log strategy builds to stderr (repeat for more detail)")
	pf.StringVar(&g.lang, flagLang, "en", "language of issue messages (en, ja)")
	pf.BoolVar(&g.lenient, flagLenient, false, "pass values of unsupported types through unchanged")

	cmd.AddCommand(newConvert(g))
	cmd.AddCommand(newValidate(g))
	cmd.AddCommand(newSchema(g))
	return cmd
}

// session is what a sub-command works against once flags are resolved.
type session struct {
	defs *yamldef.Defs
	typ  *typedesc.Type
	reg  *chisel.Registry
	opts []chisel.Option
}

func (g *globals) logger(cmd *cobra.Command) logr.Logger {
	w := cmd.ErrOrStderr()
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(w, prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: g.verbose})
}

func (g *globals) open(cmd *cobra.Command, extra ...chisel.RegistryOption) (*session, error) {
	if g.typ == "" {
		return nil, errNoType
	}
	var data []byte
	if g.defs != "" {
		b, err := os.ReadFile(g.defs)
		if err != nil {
			return nil, err
		}
		data = b
	}
	defs, err := yamldef.Load(data)
	if err != nil {
		return nil, err
	}
	t, err := defs.Parse(g.typ)
	if err != nil {
		return nil, err
	}
	ropts := append([]chisel.RegistryOption{
		chisel.WithSchemas(defs.Schemas),
		chisel.WithLogger(g.logger(cmd)),
	}, extra...)
	reg := chisel.NewRegistry(ropts...)
	s := &session{defs: defs, typ: t, reg: reg, opts: []chisel.Option{chisel.WithRegistry(reg)}}
	if g.lenient {
		s.opts = append(s.opts, chisel.Lenient())
	}
	return s, nil
}

// input reads path, or stdin when path is empty or "-".
func input(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// formatOf picks the input codec: the explicit format, else the file
// extension, else JSON.
func formatOf(format, path string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// decoder returns the input codec. With uniqueKeys, JSON objects that
// repeat a key are rejected.
func decoder(format, path string, uniqueKeys bool) (codec.Codec, error) {
	name := formatOf(format, path)
	if uniqueKeys && name == "json" {
		return codec.JSON(codec.RejectDuplicateKeys()), nil
	}
	return codec.ByName(name)
}

func reportIssues(w io.Writer, err error) error {
	iss, ok := chisel.AsIssues(err)
	if !ok {
		return err
	}
	for _, it := range iss {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
	}
	return fmt.Errorf("%d issue(s)", len(iss))
}

func newConvert(g *globals) *cobra.Command {
	var in, from, to, mappingFile string
	var nullAbsent, uniqueKeys bool
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Hydrate a document into --type and write its plain form",
		Example: `  chisel convert --defs pets.yaml --type 'List[Pet]' --in pets.yaml --to json
  cat pet.json | chisel convert --defs pets.yaml -t Pet --mapping legacy.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var extra []chisel.RegistryOption
			if nullAbsent {
				extra = append(extra, chisel.WithExtractPolicy(chisel.ExtractAbsentAsNull))
			}
			s, err := g.open(cmd, extra...)
			if err != nil {
				return err
			}
			dec, err := decoder(from, in, uniqueKeys)
			if err != nil {
				return err
			}
			enc, err := codec.ByName(to)
			if err != nil {
				return err
			}
			data, err := input(cmd, in)
			if err != nil {
				return err
			}
			hopts := s.opts
			if mappingFile != "" {
				mdoc, err := os.ReadFile(mappingFile)
				if err != nil {
					return err
				}
				m, err := mapping.LoadYAML(mdoc)
				if err != nil {
					return err
				}
				hopts = append(hopts[:len(hopts):len(hopts)], chisel.WithMapping(m))
			}
			v, err := chisel.Decode(dec, data, s.typ, hopts...)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			plain, err := chisel.ExtractAs(v, s.typ, s.opts...)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			out, err := enc.Encode(plain)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in, "in", "i", "-", "input file, - for stdin")
	f.StringVar(&from, "from", "", "input format: json or yaml (default: by file extension)")
	f.StringVar(&to, "to", "json", "output format: json, yaml or canonical-json")
	f.StringVar(&mappingFile, "mapping", "", "YAML key mapping applied to the input before hydration")
	f.BoolVar(&nullAbsent, "null-absent", false, "write absent record properties as null instead of omitting them")
	f.BoolVar(&uniqueKeys, "unique-keys", false, "reject JSON objects that repeat a key")
	return cmd
}

func newValidate(g *globals) *cobra.Command {
	var in, from string
	var uniqueKeys bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a document hydrates into --type",
		Long: `validate hydrates the input and prints one line per issue:
the JSON Pointer path, the issue code and the message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			dec, err := decoder(from, in, uniqueKeys)
			if err != nil {
				return err
			}
			data, err := input(cmd, in)
			if err != nil {
				return err
			}
			if _, err := chisel.Decode(dec, data, s.typ, s.opts...); err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&from, "from", "", "input format: json or yaml (default: by file extension)")
	cmd.Flags().BoolVar(&uniqueKeys, "unique-keys", false, "reject JSON objects that repeat a key")
	return cmd
}

func newSchema(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the plain form of --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			js, err := jsonschema.Generate(s.typ, s.defs.Schemas)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(js, "", "  ")
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
}

func write(w io.Writer, b []byte) error {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	_, err := w.Write(b)
	return err
}
