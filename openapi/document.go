package openapi

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Version is the OpenAPI version written by Document.
const Version = "3.0.3"

// Info is the OpenAPI info object.
type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// Document collects rendered results into one OpenAPI document holding only
// component schemas. Persisting it is left to the caller.
type Document struct {
	Info    Info
	schemas *Components
}

// NewDocument returns an empty document.
func NewDocument(title, version string) *Document {
	return &Document{Info: Info{Title: title, Version: version}, schemas: NewComponents()}
}

// Add merges a copy of r into the document. Components already present keep
// their first rendering. A specification that is not a $ref is stored under
// name.
func (d *Document) Add(name string, r *Result) error {
	if r == nil {
		return nil
	}
	if r.Components != nil {
		for p := r.Components.Oldest(); p != nil; p = p.Next() {
			d.schemas.Add(p.Key, p.Value.Clone())
		}
	}
	if r.Specification == nil {
		return nil
	}
	if _, isRef := r.Specification.Get("$ref"); isRef {
		return nil
	}
	if name == "" {
		return fmt.Errorf("openapi: inline specification needs a schema name")
	}
	d.schemas.Add(name, r.Specification.Clone())
	return nil
}

// Schemas returns the accumulated component schemas.
func (d *Document) Schemas() *Components { return d.schemas }

// tree builds the ordered document tree shared by both encoders.
func (d *Document) tree() *Fragment {
	info := NewFragment()
	info.Set("title", d.Info.Title)
	info.Set("version", d.Info.Version)

	schemas := NewFragment()
	for p := d.schemas.Oldest(); p != nil; p = p.Next() {
		schemas.Set(p.Key, p.Value)
	}
	components := NewFragment()
	components.Set("schemas", schemas)

	out := NewFragment()
	out.Set("openapi", Version)
	out.Set("info", info)
	// an OpenAPI document needs paths; this one only carries schemas
	out.Set("paths", NewFragment())
	out.Set("components", components)
	return out
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.tree().MarshalJSON()
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.tree().MarshalYAML()
}

// JSON encodes the document, indented when indent is non-empty.
func (d *Document) JSON(indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(d)
	}
	return json.MarshalIndent(d, "", indent)
}

// YAML encodes the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}
