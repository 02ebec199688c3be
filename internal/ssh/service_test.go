package ssh

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	cryptossh "golang.org/x/crypto/ssh"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  error
	}{
		{"missing host", Credentials{Username: "alice", Password: "x"}, ErrMissingHost},
		{"missing username", Credentials{Host: "login", Password: "x"}, ErrMissingUsername},
		{"no auth method", Credentials{Host: "login", Username: "alice"}, ErrNoAuthMethodProvided},
		{"password auth", Credentials{Host: "login", Username: "alice", Password: "x"}, nil},
		{"key auth", Credentials{Host: "login", Username: "alice", PrivateKeyPath: "/tmp/key"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()

			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthMethodsPassword(t *testing.T) {
	creds := &Credentials{Host: "login", Username: "alice", Password: "secret"}

	methods, err := creds.AuthMethods()

	if err != nil {
		t.Fatalf("AuthMethods failed: %v", err)
	}

	if len(methods) != 1 {
		t.Errorf("expected 1 auth method, got %d", len(methods))
	}
}

func TestAuthMethodsPrivateKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)

	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	block, err := cryptossh.MarshalPrivateKey(priv, "")

	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	creds := &Credentials{Host: "login", Username: "alice", PrivateKeyPath: keyPath}

	methods, err := creds.AuthMethods()

	if err != nil {
		t.Fatalf("AuthMethods failed: %v", err)
	}

	if len(methods) != 1 {
		t.Errorf("expected 1 auth method, got %d", len(methods))
	}
}

func TestAuthMethodsKeyPreferredOverPassword(t *testing.T) {
	// An unreadable key path must surface as an auth error instead of
	// silently falling back to the password.
	creds := &Credentials{
		Host:           "login",
		Username:       "alice",
		Password:       "secret",
		PrivateKeyPath: "/nonexistent/key",
	}

	_, err := creds.AuthMethods()

	if !errors.Is(err, ErrFailedToCreateAuth) {
		t.Fatalf("expected ErrFailedToCreateAuth, got %v", err)
	}
}

func TestAuthMethodsNone(t *testing.T) {
	creds := &Credentials{Host: "login", Username: "alice"}

	if _, err := creds.AuthMethods(); !errors.Is(err, ErrNoAuthMethodProvided) {
		t.Fatalf("expected ErrNoAuthMethodProvided, got %v", err)
	}
}

func TestStatusBeforeConnect(t *testing.T) {
	service := NewService(&Credentials{
		Host:     "login.example.org",
		Port:     22,
		Username: "alice",
		Password: "secret",
	})

	status := service.Status()

	if status.Connected {
		t.Errorf("expected disconnected before any connection attempt")
	}
	if status.Host != "login.example.org" || status.Username != "alice" || status.Port != 22 {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	service := NewService(&Credentials{Host: "login", Username: "alice", Password: "x"})

	if err := service.Disconnect(); err != nil {
		t.Fatalf("first disconnect failed: %v", err)
	}
	if err := service.Disconnect(); err != nil {
		t.Fatalf("second disconnect failed: %v", err)
	}

	if service.Status().Connected {
		t.Errorf("expected disconnected")
	}
}

// startTestSSHServer runs a minimal in-process SSH server. It accepts
// password auth for alice/secret and answers every exec request with "ok"
// and exit status 0, except commands containing "hang", which never
// complete. The returned counter tracks completed handshakes.
func startTestSSHServer(t *testing.T) (string, *atomic.Int32) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}

	signer, err := cryptossh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to create host signer: %v", err)
	}

	config := &cryptossh.ServerConfig{
		PasswordCallback: func(conn cryptossh.ConnMetadata, password []byte) (*cryptossh.Permissions, error) {
			if conn.User() == "alice" && string(password) == "secret" {
				return nil, nil
			}
			return nil, fmt.Errorf("access denied for %q", conn.User())
		},
	}
	config.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	var handshakes atomic.Int32
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go serveTestConn(conn, config, &handshakes)
		}
	}()

	return listener.Addr().String(), &handshakes
}

func serveTestConn(conn net.Conn, config *cryptossh.ServerConfig, handshakes *atomic.Int32) {
	serverConn, chans, reqs, err := cryptossh.NewServerConn(conn, config)
	if err != nil {
		return
	}
	defer serverConn.Close()
	handshakes.Add(1)

	go cryptossh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(cryptossh.UnknownChannelType, "unsupported channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		go serveTestSession(channel, requests)
	}
}

func serveTestSession(channel cryptossh.Channel, requests <-chan *cryptossh.Request) {
	defer channel.Close()

	for req := range requests {
		if req.Type != "exec" {
			req.Reply(false, nil)
			continue
		}

		var payload struct{ Command string }
		cryptossh.Unmarshal(req.Payload, &payload)
		req.Reply(true, nil)

		if strings.Contains(payload.Command, "hang") {
			// Leave the command running; the client has to give up.
			continue
		}

		channel.Write([]byte("ok\n"))
		exit := struct{ Status uint32 }{0}
		channel.SendRequest("exit-status", false, cryptossh.Marshal(&exit))
		return
	}
}

func newTestService(t *testing.T, addr string) *Service {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("failed to split address %q: %v", addr, err)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("failed to parse port %q: %v", portStr, err)
	}

	return NewService(&Credentials{
		Host:     host,
		Port:     uint(port),
		Username: "alice",
		Password: "secret",
	})
}

func TestSessionLifecycle(t *testing.T) {
	addr, handshakes := startTestSSHServer(t)
	service := newTestService(t, addr)
	defer service.Disconnect()

	if service.Status().Connected {
		t.Fatalf("expected disconnected before the first command")
	}

	result, err := service.Execute(context.Background(), "squeue")

	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ExitCode != 0 || result.Stdout != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}
	if !service.Status().Connected {
		t.Errorf("expected connected after a successful command")
	}
	if n := handshakes.Load(); n != 1 {
		t.Errorf("expected 1 handshake, got %d", n)
	}

	if err := service.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if service.Status().Connected {
		t.Errorf("expected disconnected after Disconnect")
	}

	// The next command reconnects on demand, exactly once.
	if _, err := service.Execute(context.Background(), "sinfo"); err != nil {
		t.Fatalf("Execute after disconnect failed: %v", err)
	}
	if !service.Status().Connected {
		t.Errorf("expected connected after reconnecting")
	}
	if n := handshakes.Load(); n != 2 {
		t.Errorf("expected 2 handshakes after one reconnect, got %d", n)
	}
}

func TestExecuteTimeoutTearsDownSession(t *testing.T) {
	addr, _ := startTestSSHServer(t)
	service := newTestService(t, addr)
	defer service.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := service.Execute(ctx, "hang")

	if !errors.Is(err, ErrCommandTimeout) {
		t.Fatalf("expected ErrCommandTimeout, got %v", err)
	}
	if service.Status().Connected {
		t.Errorf("expected the session to be torn down after a timeout")
	}

	// A later command recovers by reconnecting.
	result, err := service.Execute(context.Background(), "squeue")

	if err != nil {
		t.Fatalf("Execute after timeout failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("unexpected exit code %d", result.ExitCode)
	}
}

func TestExecuteWithInvalidCredentials(t *testing.T) {
	service := NewService(&Credentials{})

	_, err := service.Execute(context.Background(), "squeue")

	if !errors.Is(err, ErrMissingHost) {
		t.Fatalf("expected ErrMissingHost, got %v", err)
	}

	if service.Status().Connected {
		t.Errorf("a failed connection attempt must not report connected")
	}
}
