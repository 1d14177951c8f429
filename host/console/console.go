// Package console dispatches line-oriented simulator commands.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/shlex"
)

var (
	// ErrUnknownCommand is returned by Dispatch for unregistered names
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage may be returned by handlers for malformed arguments
	ErrUsage = errors.New("bad arguments")

	// ErrQuit is returned by a handler to end the session
	ErrQuit = errors.New("quit")
)

// Handler runs one command. args excludes the command name.
type Handler func(args []string) error

// Command is a registered console command
type Command struct {
	Name    string
	Usage   string // e.g. "write <pin> <pulse_us> <freq_hz>"
	Help    string
	Handler Handler
}

// Registry holds the console commands
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command. Registering a name twice replaces the handler.
func (r *Registry) Register(name, usage, help string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = &Command{
		Name:    name,
		Usage:   usage,
		Help:    help,
		Handler: handler,
	}
}

// Alias makes alias resolve to name
func (r *Registry) Alias(alias, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = name
}

// Lookup finds a command by name or alias
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch tokenises line with shell quoting rules and runs the named
// command. Blank lines and lines starting with '#' do nothing.
func (r *Registry) Dispatch(line string) error {
	fields, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := r.Lookup(fields[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	return cmd.Handler(fields[1:])
}

// Help renders one line per command, sorted by name
func (r *Registry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	width := 0
	for name, cmd := range r.commands {
		names = append(names, name)
		if len(cmd.Usage) > width {
			width = len(cmd.Usage)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		cmd := r.commands[name]
		b.WriteString("  ")
		b.WriteString(cmd.Usage)
		b.WriteString(strings.Repeat(" ", width-len(cmd.Usage)))
		b.WriteString("  - ")
		b.WriteString(cmd.Help)
		b.WriteByte('\n')
	}
	return b.String()
}
