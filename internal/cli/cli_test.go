package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/chisel/internal/cli"
)

const petDefs = `
records:
  Pet:
    fields:
      - {name: name, type: str}
      - {name: age, type: int, default: 1}
      - {name: tags, type: "List[str]", default: []}
      - {name: label, type: str, hydrate: false}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.New()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestConvert_FillsDefaults(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	out, _, err := run(t, `[{"name":"Rex"},{"name":"Tom","age":4,"tags":["cat"]}]`,
		"convert", "--defs", defs, "--type", "List[Pet]", "--to", "canonical-json")
	require.NoError(t, err)
	assert.Equal(t, `[{"age":1,"name":"Rex","tags":[]},{"age":4,"name":"Tom","tags":["cat"]}]`+"\n", out)
}

func TestConvert_NullAbsent(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	out, _, err := run(t, `{"name":"Rex"}`,
		"convert", "--defs", defs, "-t", "Pet", "--to", "canonical-json", "--null-absent")
	require.NoError(t, err)
	assert.Equal(t, `{"age":1,"label":null,"name":"Rex","tags":[]}`+"\n", out)
}

func TestConvert_YAMLWithMapping(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	m := writeFile(t, "mapping.yaml", "rules:\n  - {to: name, from: full_name}\n  - {rest: true}\n")
	in := writeFile(t, "pet.yaml", "full_name: Rex\nage: 3\n")
	out, _, err := run(t, "", "convert", "--defs", defs, "-t", "Pet", "--in", in, "--mapping", m, "--to", "canonical-json")
	require.NoError(t, err)
	assert.Equal(t, `{"age":3,"name":"Rex","tags":[]}`+"\n", out)
}

func TestValidate(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)

	out, _, err := run(t, `[{"name":"Rex"}]`, "validate", "--defs", defs, "-t", "List[Pet]")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, errOut, err := run(t, `[{"name":"Rex"},{"age":"old"}]`, "validate", "--defs", defs, "-t", "List[Pet]")
	require.Error(t, err)
	assert.Contains(t, errOut, "/1/")
}

func TestValidate_RequiredProperty(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	_, errOut, err := run(t, `{"age":2}`, "validate", "--defs", defs, "-t", "Pet")
	require.Error(t, err)
	assert.Contains(t, errOut, "/name\trequired\t")
}

func TestSchema(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	out, _, err := run(t, "", "schema", "--defs", defs, "-t", "List[Pet]")
	require.NoError(t, err)
	assert.Contains(t, out, `"#/$defs/Pet"`)
	assert.Contains(t, out, `"required"`)
}

func TestErrors(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	cases := map[string][]string{
		"missing type":   {"convert", "--defs", defs},
		"unknown type":   {"convert", "--defs", defs, "-t", "Cat"},
		"unknown format": {"convert", "--defs", defs, "-t", "Pet", "--to", "toml"},
		"missing defs":   {"schema", "--defs", filepath.Join(t.TempDir(), "nope.yaml"), "-t", "Pet"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, `{"name":"Rex"}`, args...)
			assert.Error(t, err)
		})
	}
}

func TestVerboseLogsBuilds(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	_, errOut, err := run(t, `{"name":"Rex"}`, "convert", "--defs", defs, "-t", "Pet", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "built strategy")
}

func TestValidate_UniqueKeys(t *testing.T) {
	defs := writeFile(t, "defs.yaml", petDefs)
	doc := `{"name":"Rex","name":"Tom"}`

	_, _, err := run(t, doc, "validate", "--defs", defs, "-t", "Pet")
	require.NoError(t, err)

	_, _, err = run(t, doc, "validate", "--defs", defs, "-t", "Pet", "--unique-keys")
	assert.ErrorContains(t, err, "duplicate key")
}
