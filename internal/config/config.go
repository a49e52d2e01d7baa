// Package config loads bladec.yaml.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	blade "github.com/dangdungcntt/go-blade-compiler"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "bladec.yaml"

// ExpressionPlaceholder is replaced by the argument text in declared directives.
const ExpressionPlaceholder = "{expression}"

const schemaURL = "bladec.schema.json"

const schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "views": {"type": "string", "minLength": 1},
    "cache": {"type": "string", "minLength": 1},
    "base_path": {"type": "string"},
    "compiled_extension": {"type": "string", "pattern": "^\\.?[A-Za-z0-9]+$"},
    "short_open_tags": {"type": "boolean"},
    "echo_format": {"type": "string", "pattern": "%s"},
    "double_encoding": {"type": "boolean"},
    "tags": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "raw": {"$ref": "#/$defs/pair"},
        "content": {"$ref": "#/$defs/pair"},
        "escaped": {"$ref": "#/$defs/pair"}
      }
    },
    "directives": {
      "type": "object",
      "propertyNames": {"pattern": "^\\w+(::\\w+)?$"},
      "additionalProperties": {"type": "string"}
    },
    "components": {"$ref": "#/$defs/aliases"},
    "includes": {"$ref": "#/$defs/aliases"},
    "server": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "addr": {"type": "string"}
      }
    },
    "log_level": {"enum": ["debug", "info", "warn", "error"]}
  },
  "$defs": {
    "pair": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 2,
      "maxItems": 2
    },
    "aliases": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["path"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "alias": {"type": "string"}
        }
      }
    }
  }
}`

// Alias maps a component or include view onto a directive name.
type Alias struct {
	Path  string `yaml:"path"`
	Alias string `yaml:"alias"`
}

// Tags overrides echo delimiters; each entry is an open/close pair.
type Tags struct {
	Raw     []string `yaml:"raw"`
	Content []string `yaml:"content"`
	Escaped []string `yaml:"escaped"`
}

// Server configures `bladec serve`.
type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the content of bladec.yaml.
type Config struct {
	Views             string            `yaml:"views"`
	Cache             string            `yaml:"cache"`
	BasePath          string            `yaml:"base_path"`
	CompiledExtension string            `yaml:"compiled_extension"`
	ShortOpenTags     bool              `yaml:"short_open_tags"`
	EchoFormat        string            `yaml:"echo_format"`
	DoubleEncoding    *bool             `yaml:"double_encoding"`
	Tags              Tags              `yaml:"tags"`
	Directives        map[string]string `yaml:"directives"`
	Components        []Alias           `yaml:"components"`
	Includes          []Alias           `yaml:"includes"`
	Server            Server            `yaml:"server"`
	LogLevel          string            `yaml:"log_level"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Views:    "resources/views",
		Cache:    "storage/framework/views",
		Server:   Server{Addr: ":8080"},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. A missing DefaultFile is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("[%s] %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw YAML against the schema and decodes it into cfg.
func Parse(raw []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := validate(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func validate(doc any) error {
	// round trip through JSON so the validator sees plain JSON values
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not JSON compatible: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader([]byte(schema))); err != nil {
		return err
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return err
	}
	if err := s.Validate(value); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CompilerOptions returns the compiler options described by cfg.
func (cfg Config) CompilerOptions() []blade.Option {
	opts := []blade.Option{blade.WithShortOpenTags(cfg.ShortOpenTags)}
	if cfg.BasePath != "" {
		opts = append(opts, blade.WithBasePath(cfg.BasePath))
	}
	if cfg.CompiledExtension != "" {
		opts = append(opts, blade.WithCompiledExtension(cfg.CompiledExtension))
	}
	return opts
}

// Apply configures echo handling and registers the declared directives,
// components and includes on c.
func (cfg Config) Apply(c *blade.Compiler) error {
	if len(cfg.Tags.Raw) == 2 {
		c.SetRawTags(cfg.Tags.Raw[0], cfg.Tags.Raw[1])
	}
	if len(cfg.Tags.Content) == 2 {
		c.SetContentTags(cfg.Tags.Content[0], cfg.Tags.Content[1])
	}
	if len(cfg.Tags.Escaped) == 2 {
		c.SetEscapedContentTags(cfg.Tags.Escaped[0], cfg.Tags.Escaped[1])
	}
	switch {
	case cfg.EchoFormat != "":
		c.SetEchoFormat(cfg.EchoFormat)
	case cfg.DoubleEncoding != nil && *cfg.DoubleEncoding:
		c.WithDoubleEncoding()
	case cfg.DoubleEncoding != nil:
		c.WithoutDoubleEncoding()
	}
	for name, code := range cfg.Directives {
		if err := c.Directive(name, expand(code)); err != nil {
			return err
		}
	}
	for _, a := range cfg.Components {
		if err := c.Component(a.Path, a.Alias); err != nil {
			return err
		}
	}
	for _, a := range cfg.Includes {
		if err := c.Include(a.Path, a.Alias); err != nil {
			return err
		}
	}
	return nil
}

// expand returns a handler substituting the argument text into code.
func expand(code string) blade.DirectiveHandler {
	return func(expression string) string {
		return strings.ReplaceAll(code, ExpressionPlaceholder, expression)
	}
}
