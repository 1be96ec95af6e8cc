// Package greeting holds the text served by the root endpoint.
package greeting

import (
	"errors"
	"fmt"
	"strings"
)

// Default is the greeting served when nothing else is configured.
const Default = "Hello, World!"

// ErrEmptyMessage is returned when a greeter is built without any visible text.
var ErrEmptyMessage = errors.New("greeting: message must not be empty")

// Greeter serves a fixed greeting. It is immutable and safe for concurrent use.
type Greeter struct {
	message string
}

// New returns a Greeter for message. The message is kept verbatim.
func New(message string) (*Greeter, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	return &Greeter{message: message}, nil
}

// Message returns the configured greeting.
func (g *Greeter) Message() string {
	return g.message
}

// Personalize greets name directly.
func (g *Greeter) Personalize(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}
