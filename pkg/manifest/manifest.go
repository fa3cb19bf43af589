package manifest

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/viewrouter/internal/errors"
)

var (
	// ErrInvalidManifest is returned when a manifest cannot be decoded.
	ErrInvalidManifest = errors.Sentinel("M001")

	// ErrUnknownName is returned when a manifest names something the
	// registry does not hold.
	ErrUnknownName = errors.Sentinel("M002")

	// ErrSourceUnavailable is returned when a manifest cannot be read.
	ErrSourceUnavailable = errors.Sentinel("M003")
)

// Format is the encoding of a manifest document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a file name or object key. Anything that
// is not .json is read as YAML.
func FormatOf(name string) Format {
	if strings.EqualFold(path.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Manifest is a declarative route table.
type Manifest struct {
	BasePath string  `yaml:"basePath" json:"basePath"`
	Routes   []Route `yaml:"routes" json:"routes"`
}

// Route declares one route by name.
type Route struct {
	Path            string  `yaml:"path" json:"path"`
	Component       string  `yaml:"component,omitempty" json:"component,omitempty"`
	Controller      string  `yaml:"controller,omitempty" json:"controller,omitempty"`
	Resolve         string  `yaml:"resolve,omitempty" json:"resolve,omitempty"`
	CaseInsensitive bool    `yaml:"caseInsensitive,omitempty" json:"caseInsensitive,omitempty"`
	Children        []Route `yaml:"children,omitempty" json:"children,omitempty"`
}

// Parse decodes a manifest document. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.New("M001").WithDetail("json").Wrap(err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, errors.New("M001").WithDetail("yaml").Wrap(err)
		}
	default:
		return nil, errors.New("M001").WithDetailf("unsupported format %q", format)
	}

	if len(m.Routes) == 0 {
		return nil, errors.New("M001").WithDetail("manifest declares no routes")
	}
	return &m, nil
}

// Marshal encodes m in the given format.
func (m *Manifest) Marshal(format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(m, "", "  ")
	}
	return yaml.Marshal(m)
}

// Count returns the number of route declarations, nested ones included.
func (m *Manifest) Count() int {
	var count func([]Route) int
	count = func(routes []Route) int {
		n := len(routes)
		for _, r := range routes {
			n += count(r.Children)
		}
		return n
	}
	return count(m.Routes)
}
