package transport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netauto-dev/netauto/pkg/util"
)

// supportedPlatforms maps platform identifiers to their staged-config
// CLI dialect. Only EOS-style configuration sessions are implemented.
var supportedPlatforms = map[string]bool{
	"arista_eos": true,
}

// SSHDialer opens SSH-based transport clients.
type SSHDialer struct {
	// Timeout bounds the TCP/SSH handshake. Zero means 30s.
	Timeout time.Duration
}

// Dial connects to the endpoint and returns a session-capable client.
// Unsupported platforms fail before any network contact.
func (d *SSHDialer) Dial(ctx context.Context, ep Endpoint) (Client, error) {
	if !supportedPlatforms[ep.Platform] {
		return nil, util.NewCapabilityError(ep.Name, ep.Platform, "staged configuration")
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	config := &ssh.ClientConfig{
		User: ep.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(ep.Password),
		},
		Timeout: timeout,
		// Lab/test environment — production would verify host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	client, err := ssh.Dial("tcp", ep.Addr, config)
	if err != nil {
		return nil, util.NewTransportError(ep.Name, "connect", err)
	}

	return &SSHClient{host: ep.Name, ssh: client}, nil
}

// SSHClient speaks the EOS configuration-session dialect over SSH.
// Each call opens its own SSH session; staged state lives on the
// device under the client's generated session name.
type SSHClient struct {
	host        string
	ssh         *ssh.Client
	sessionName string
}

// SessionName returns the device-side staging session name, or "" if
// no configuration has been loaded yet.
func (c *SSHClient) SessionName() string {
	return c.sessionName
}

// SendCommand executes one operational command and returns the output.
func (c *SSHClient) SendCommand(ctx context.Context, command string) (string, error) {
	out, err := c.exec(ctx, command)
	if err != nil {
		return out, util.NewTransportError(c.host, fmt.Sprintf("command %q", command), err)
	}
	return out, nil
}

// LoadConfig stages the configuration inside a fresh named session.
func (c *SSHClient) LoadConfig(ctx context.Context, config string, replace bool) error {
	name := fmt.Sprintf("netauto_%d", time.Now().UnixNano())

	cmds := []string{"configure session " + name}
	if replace {
		cmds = append(cmds, "rollback clean-config")
	}
	for _, line := range strings.Split(config, "\n") {
		cmds = append(cmds, line)
	}
	cmds = append(cmds, "end")

	if _, err := c.shell(ctx, cmds); err != nil {
		return util.NewTransportError(c.host, "load config", err)
	}
	c.sessionName = name
	return nil
}

// DiffConfig returns the staged-vs-running diff for the client's session.
func (c *SSHClient) DiffConfig(ctx context.Context) (string, error) {
	if c.sessionName == "" {
		return "", fmt.Errorf("internal: diff requested with no staged session on %s", c.host)
	}
	out, err := c.exec(ctx, "show session-config named "+c.sessionName+" diffs")
	if err != nil {
		return "", util.NewTransportError(c.host, "diff config", err)
	}
	return out, nil
}

// CommitConfig applies the staged configuration.
func (c *SSHClient) CommitConfig(ctx context.Context) error {
	if c.sessionName == "" {
		return fmt.Errorf("internal: commit requested with no staged session on %s", c.host)
	}
	cmds := []string{"configure session " + c.sessionName, "commit"}
	if _, err := c.shell(ctx, cmds); err != nil {
		return util.NewTransportError(c.host, "commit config", err)
	}
	c.sessionName = ""
	return nil
}

// AbortConfig discards the staged configuration.
func (c *SSHClient) AbortConfig(ctx context.Context) error {
	if c.sessionName == "" {
		return fmt.Errorf("internal: abort requested with no staged session on %s", c.host)
	}
	cmds := []string{"configure session " + c.sessionName, "abort"}
	if _, err := c.shell(ctx, cmds); err != nil {
		return util.NewTransportError(c.host, "abort config", err)
	}
	c.sessionName = ""
	return nil
}

// Close releases the SSH connection.
func (c *SSHClient) Close() error {
	return c.ssh.Close()
}

// exec runs a single command in its own SSH session. The session is
// created per-call (stateless), matching how the device CLI treats
// operational commands.
func (c *SSHClient) exec(ctx context.Context, cmd string) (string, error) {
	session, err := c.ssh.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("exec %q: %w", cmd, r.err)
		}
		return string(r.out), nil
	}
}

// shell runs a command sequence inside one interactive shell, so CLI
// mode changes (configure session ...) persist across the sequence.
func (c *SSHClient) shell(ctx context.Context, cmds []string) (string, error) {
	session, err := c.ssh.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("stdin pipe: %w", err)
	}

	var buf bytes.Buffer
	session.Stdout = &buf
	session.Stderr = &buf

	if err := session.Shell(); err != nil {
		return "", fmt.Errorf("starting shell: %w", err)
	}

	for _, cmd := range cmds {
		fmt.Fprintln(stdin, cmd)
	}
	fmt.Fprintln(stdin, "exit")
	stdin.Close()

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		session.Close()
		return buf.String(), ctx.Err()
	case err := <-done:
		if err != nil {
			return buf.String(), fmt.Errorf("shell sequence: %w", err)
		}
		return buf.String(), nil
	}
}
