package problem

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile reads a TOML problem description.
func LoadFile(path string) (Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("read problem file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML problem description and validates it.
func Parse(data []byte) (Problem, error) {
	var p Problem
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return Problem{}, fmt.Errorf("parse problem: %w", err)
	}
	lang, err := ParseLanguage(string(p.Language))
	if err != nil {
		return Problem{}, err
	}
	p.Language = lang
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// Marshal renders the problem as TOML.
func Marshal(p Problem) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(p); err != nil {
		return nil, fmt.Errorf("encode problem: %w", err)
	}
	return buf.Bytes(), nil
}
