// Package testutil provides scripted fakes and fixture helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedControl is a NodeControl fake. Each (node, command) pair has a
// queue of scripted responses; the last response repeats once the queue is
// drained. Safe for concurrent use.
type ScriptedControl struct {
	mu      sync.Mutex
	scripts map[string][]response
	calls   map[string]int
}

type response struct {
	output string
	err    error
}

// NewScriptedControl returns an empty fake.
func NewScriptedControl() *ScriptedControl {
	return &ScriptedControl{
		scripts: make(map[string][]response),
		calls:   make(map[string]int),
	}
}

// Script appends an output for the (node, command) pair.
func (c *ScriptedControl) Script(node, command, output string) *ScriptedControl {
	return c.add(node, command, output, nil)
}

// ScriptErr appends an execution error for the (node, command) pair.
func (c *ScriptedControl) ScriptErr(node, command string, err error) *ScriptedControl {
	return c.add(node, command, "", err)
}

func (c *ScriptedControl) add(node, command, output string, err error) *ScriptedControl {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := node + "|" + command
	c.scripts[key] = append(c.scripts[key], response{output: output, err: err})
	return c
}

// Execute implements control.NodeControl.
func (c *ScriptedControl) Execute(_ context.Context, node, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := node + "|" + command
	queue, ok := c.scripts[key]
	if !ok {
		return "", fmt.Errorf("testutil: no script for %s: %q", node, command)
	}
	i := c.calls[key]
	c.calls[key]++
	if i >= len(queue) {
		i = len(queue) - 1
	}
	r := queue[i]
	return r.output, r.err
}

// Calls returns how many times the (node, command) pair was executed.
func (c *ScriptedControl) Calls(node, command string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[node+"|"+command]
}
