// Package shortcode produces random candidate short codes.
// Candidates carry no uniqueness guarantee; the link store decides that.
package shortcode

import (
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the set of symbols a short code is drawn from.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// DefaultLength is the length of generated codes unless configured otherwise.
	DefaultLength = 7
	// MaxLength bounds caller-supplied codes.
	MaxLength = 32
)

var codeRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Valid reports whether code is a non-empty alphanumeric string no longer than MaxLength.
func Valid(code string) bool {
	return len(code) <= MaxLength && codeRe.MatchString(code)
}

// Generator generates fixed-length codes over Alphabet.
type Generator struct {
	length int
}

// NewGenerator returns a Generator for codes of the given length.
// Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a uniformly random code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}
