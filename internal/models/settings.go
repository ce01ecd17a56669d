package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Section names a ColumnTypeMap inside a Configuration.
type Section string

const (
	SectionCovariates Section = "Covariates"
	SectionDependents Section = "Dependents"
)

// Configuration is the generated settings document. It is a value: every
// change produces a new snapshot through WithSection.
type Configuration struct {
	Covariates ColumnTypeMap `json:"Covariates" yaml:"Covariates" msgpack:"Covariates"`
	Dependents ColumnTypeMap `json:"Dependents" yaml:"Dependents" msgpack:"Dependents"`
	Lambda     float64       `json:"Lambda" yaml:"Lambda" msgpack:"Lambda"`
}

// NewConfiguration returns the initial document: both sections empty, Lambda 0.
func NewConfiguration() Configuration {
	return Configuration{}
}

// WithSection returns a copy of c whose section is replaced by m.
// The other section and Lambda are carried over unchanged.
func (c Configuration) WithSection(section Section, m ColumnTypeMap) (Configuration, error) {
	next := c
	switch section {
	case SectionCovariates:
		next.Covariates = m
	case SectionDependents:
		next.Dependents = m
	default:
		return c, fmt.Errorf("unknown section: %q", section)
	}
	return next, nil
}

// Section returns the map stored under the given section.
func (c Configuration) Section(section Section) (ColumnTypeMap, bool) {
	switch section {
	case SectionCovariates:
		return c.Covariates, true
	case SectionDependents:
		return c.Dependents, true
	}
	return ColumnTypeMap{}, false
}

// IndentedJSON renders the document with two-space indentation, keys in
// insertion order and no trailing newline. This is the text users copy.
func (c Configuration) IndentedJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
