package wire

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// batchSchema constrains batch files before any message is decoded, so a
// malformed file is rejected whole instead of failing mid-batch.
const batchSchema = `
#Message: {
	msg: "added" | "changed" | "removed" | "replaced"
	id:  string & !=""
	fields?: {...}
	cleared?: [...string]
	replace?: null | {...}
}

reset?: bool
messages: [...#Message]
`

// SchemaError describes one schema violation in a batch file.
type SchemaError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// SchemaErrors aggregates every violation found in one file.
type SchemaErrors []SchemaError

// Error implements the error interface.
func (e SchemaErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "batch schema: " + strings.Join(msgs, "; ")
}

// ValidateBatch checks batch file contents against the batch schema.
// All violations are collected, not just the first.
func ValidateBatch(data []byte, format Format) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(batchSchema, cue.Filename("batch_schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile batch schema: %w", err)
	}

	var value cue.Value
	switch format {
	case FormatYAML:
		file, err := cueyaml.Extract("batch.yaml", data)
		if err != nil {
			return fmt.Errorf("parse batch YAML: %w", err)
		}
		value = ctx.BuildFile(file)
	default:
		expr, err := cuejson.Extract("batch.json", data)
		if err != nil {
			return fmt.Errorf("parse batch JSON: %w", err)
		}
		value = ctx.BuildExpr(expr)
	}
	if err := value.Err(); err != nil {
		return fmt.Errorf("build batch value: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return collectSchemaErrors(err)
	}
	return nil
}

// collectSchemaErrors converts CUE's error list into SchemaErrors.
func collectSchemaErrors(err error) SchemaErrors {
	var out SchemaErrors
	for _, e := range cueerrors.Errors(err) {
		path := strings.Join(e.Path(), ".")
		format, args := e.Msg()
		out = append(out, SchemaError{
			Path:    path,
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(out) == 0 {
		out = append(out, SchemaError{Message: err.Error()})
	}
	return out
}
