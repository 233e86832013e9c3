package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/topolab-net/topolab/pkg/util"
)

// SSH executes commands on nodes reachable over SSH, dialing lazily and
// caching one client per node.
type SSH struct {
	User string
	Pass string

	mu      sync.Mutex
	addrs   map[string]string // node -> host:port
	clients map[string]*ssh.Client
}

// NewSSH returns an SSH-backed NodeControl with the given credentials.
func NewSSH(user, pass string) *SSH {
	return &SSH{
		User:    user,
		Pass:    pass,
		addrs:   make(map[string]string),
		clients: make(map[string]*ssh.Client),
	}
}

// AddNode registers the SSH endpoint for a node.
func (s *SSH) AddNode(node, addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addrs[node] = addr
}

// Execute runs the command on the node and returns combined output.
func (s *SSH) Execute(ctx context.Context, node, command string) (string, error) {
	client, err := s.client(node)
	if err != nil {
		return "", &ExecError{Node: node, Command: command, Err: err}
	}

	session, err := client.NewSession()
	if err != nil {
		// Stale connection; drop it so the next attempt redials.
		s.drop(node)
		return "", &ExecError{Node: node, Command: command, Err: err}
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		ch <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return "", &ExecError{Node: node, Command: command, Err: ctx.Err()}
	case r := <-ch:
		if r.err != nil {
			return string(r.out), &ExecError{Node: node, Command: command, Output: string(r.out), Err: r.err}
		}
		return string(r.out), nil
	}
}

// WaitReady polls SSH connectivity to the node until a trivial command
// succeeds or the timeout expires.
func (s *SSH) WaitReady(node string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if out, err := s.Execute(context.Background(), node, "echo ready"); err == nil && out != "" {
			return nil
		}
		s.drop(node)
		time.Sleep(5 * time.Second)
	}
	return fmt.Errorf("control: SSH timeout after %s for %s", timeout, node)
}

// Close closes all cached connections.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for node, c := range s.clients {
		c.Close()
		delete(s.clients, node)
	}
	return nil
}

func (s *SSH) client(node string) (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[node]; ok {
		return c, nil
	}
	addr, ok := s.addrs[node]
	if !ok {
		return nil, fmt.Errorf("no SSH endpoint registered for node %s", node)
	}

	config := &ssh.ClientConfig{
		User: s.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.Pass),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	util.WithNode(node).Debugf("SSH connected to %s", addr)
	s.clients[node] = client
	return client, nil
}

func (s *SSH) drop(node string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[node]; ok {
		c.Close()
		delete(s.clients, node)
	}
}
