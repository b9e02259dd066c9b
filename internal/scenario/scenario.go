// Package scenario runs scripted sequences of scope and table operations
// against a Registry. Scenarios are written in TOML or YAML and drive the
// props CLI's run command.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	props "github.com/goliatone/go-props"
)

// Op names a scenario step.
type Op string

const (
	OpEnter  Op = "enter"
	OpExit   Op = "exit"
	OpSet    Op = "set"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
	OpLoad   Op = "load"
	OpExpect Op = "expect"
	OpDepth  Op = "depth"
	OpEval   Op = "eval"
	OpFork   Op = "fork"
)

// Scenario is a named list of steps run on one path of a fresh registry
// seeded from Anchor.
type Scenario struct {
	Name      string            `toml:"name" yaml:"name"`
	Anchor    map[string]string `toml:"anchor,omitempty" yaml:"anchor,omitempty"`
	Underflow string            `toml:"underflow,omitempty" yaml:"underflow,omitempty"`
	Steps     []Step            `toml:"steps" yaml:"steps"`
}

// Step is one operation. Which fields apply depends on Op:
//
//	enter   Label
//	exit    Error (expect an underflow)
//	set     Key, Value
//	remove  Key
//	load    Text (properties format)
//	expect  Key, Value or Absent
//	depth   Depth
//	eval    Expr, Value (compared with fmt.Sprint of the result)
//	fork    Label, Steps (run on a forked path in a goroutine, awaited)
type Step struct {
	Op     Op     `toml:"op" yaml:"op"`
	Key    string `toml:"key,omitempty" yaml:"key,omitempty"`
	Value  string `toml:"value,omitempty" yaml:"value,omitempty"`
	Absent bool   `toml:"absent,omitempty" yaml:"absent,omitempty"`
	Label  string `toml:"label,omitempty" yaml:"label,omitempty"`
	Text   string `toml:"text,omitempty" yaml:"text,omitempty"`
	Expr   string `toml:"expr,omitempty" yaml:"expr,omitempty"`
	Depth  int    `toml:"depth,omitempty" yaml:"depth,omitempty"`
	Error  bool   `toml:"error,omitempty" yaml:"error,omitempty"`
	Steps  []Step `toml:"steps,omitempty" yaml:"steps,omitempty"`
}

// Format selects the scenario encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("scenario: unsupported file extension %q", filepath.Ext(path))
	}
}

// Parse decodes a scenario from r.
func Parse(r io.Reader, format Format) (*Scenario, error) {
	var out Scenario
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&out); err != nil {
			return nil, fmt.Errorf("scenario: parse toml: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("scenario: empty document")
			}
			return nil, fmt.Errorf("scenario: parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("scenario: unknown format %q", format)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadFile reads and validates the scenario at path.
func LoadFile(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := Parse(f, format)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ValidationError lists every problem found in a scenario.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "scenario: invalid: " + strings.Join(e.Issues, "; ")
}

// Validate checks every step has the fields its Op needs.
func (s *Scenario) Validate() error {
	var errs ValidationError
	if _, err := props.ParseUnderflowPolicy(s.Underflow); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	validateSteps(s.Steps, "", &errs)
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func validateSteps(steps []Step, prefix string, errs *ValidationError) {
	for i, step := range steps {
		at := stepLabel(prefix, i)
		switch step.Op {
		case OpEnter, OpExit, OpClear, OpDepth:
		case OpSet, OpRemove:
			if step.Key == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: %s requires key", at, step.Op))
			}
		case OpExpect:
			if step.Key == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: expect requires key", at))
			}
			if step.Absent && step.Value != "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: expect cannot set both value and absent", at))
			}
		case OpLoad:
			if step.Text == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: load requires text", at))
			}
		case OpEval:
			if step.Expr == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: eval requires expr", at))
			}
		case OpFork:
			validateSteps(step.Steps, at, errs)
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: unknown op %q", at, step.Op))
		}
		if step.Op != OpFork && len(step.Steps) > 0 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("step %s: only fork takes nested steps", at))
		}
	}
}

func stepLabel(prefix string, index int) string {
	if prefix == "" {
		return fmt.Sprint(index + 1)
	}
	return fmt.Sprintf("%s.%d", prefix, index+1)
}
