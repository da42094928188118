// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tunnel forwards engine traffic through an intermediate SSH hop.
// It satisfies the query client's Tunneler contract: the rewritten endpoint
// exists only for the duration of the scoped function and is torn down when
// it returns.
package tunnel

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"grove/cli/internal/druid"
	groveerr "grove/cli/internal/errors"
)

// Forwarder implements druid.Tunneler over SSH local port forwarding.
type Forwarder struct {
	logger log.Logger
}

// New builds a Forwarder. logger may be nil for silence.
func New(logger log.Logger) *Forwarder {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Forwarder{logger: logger}
}

// With runs fn against connection details rewritten to a local listener that
// forwards to the engine through the SSH hop. When the connection carries no
// tunnel spec, fn runs against the original details directly.
func (f *Forwarder) With(ctx context.Context, conn *druid.ConnectionDetails, fn func(*druid.ConnectionDetails) error) error {
	if conn.Tunnel == nil {
		return fn(conn)
	}
	spec := conn.Tunnel

	engineURL, err := url.Parse(conn.Endpoint)
	if err != nil {
		return groveerr.Wrap(groveerr.TunnelFailed, "cannot parse engine endpoint", err)
	}
	remoteAddr := hostPort(engineURL)

	cfg, err := clientConfig(spec)
	if err != nil {
		return err
	}

	hopPort := spec.Port
	if hopPort == 0 {
		hopPort = 22
	}
	hopAddr := net.JoinHostPort(spec.Host, strconv.Itoa(hopPort))
	sshClient, err := ssh.Dial("tcp", hopAddr, cfg)
	if err != nil {
		return groveerr.Wrap(groveerr.TunnelFailed, "cannot reach tunnel host "+spec.Host, err)
	}
	defer sshClient.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return groveerr.Wrap(groveerr.TunnelFailed, "cannot open local forward listener", err)
	}
	defer listener.Close()

	var wg sync.WaitGroup
	go f.acceptLoop(listener, sshClient, remoteAddr, &wg)

	level.Debug(f.logger).Log("msg", "tunnel established", "hop", hopAddr, "remote", remoteAddr, "local", listener.Addr().String())

	scoped := *conn
	scoped.Tunnel = nil
	scoped.Endpoint = engineURL.Scheme + "://" + listener.Addr().String()

	err = fn(&scoped)

	// Stop accepting, then let in-flight copies drain.
	listener.Close()
	wg.Wait()
	return err
}

// acceptLoop forwards each accepted local connection through the SSH client
// until the listener closes.
func (f *Forwarder) acceptLoop(listener net.Listener, sshClient *ssh.Client, remoteAddr string, wg *sync.WaitGroup) {
	for {
		local, err := listener.Accept()
		if err != nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer local.Close()
			remote, err := sshClient.Dial("tcp", remoteAddr)
			if err != nil {
				level.Warn(f.logger).Log("msg", "tunnel forward failed", "remote", remoteAddr, "err", err)
				return
			}
			defer remote.Close()
			done := make(chan struct{}, 2)
			go func() { _, _ = io.Copy(remote, local); done <- struct{}{} }()
			go func() { _, _ = io.Copy(local, remote); done <- struct{}{} }()
			<-done
		}()
	}
}

// clientConfig builds the SSH client config from the tunnel spec: public key
// auth from the identity file, host verification against known_hosts.
func clientConfig(spec *druid.TunnelSpec) (*ssh.ClientConfig, error) {
	keyPath := spec.IdentityFile
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, groveerr.Wrap(groveerr.TunnelFailed, "cannot locate home directory", err)
		}
		keyPath = filepath.Join(home, ".ssh", "id_ed25519")
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, groveerr.Wrap(groveerr.TunnelFailed, "cannot read identity file "+keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, groveerr.Wrap(groveerr.TunnelFailed, "cannot parse identity file "+keyPath, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, groveerr.Wrap(groveerr.TunnelFailed, "cannot locate home directory", err)
	}
	hostKeys, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
	if err != nil {
		return nil, groveerr.Wrap(groveerr.TunnelFailed, "cannot load known_hosts", err)
	}

	sshUser := spec.User
	if sshUser == "" {
		if u, err := user.Current(); err == nil {
			sshUser = u.Username
		}
	}

	return &ssh.ClientConfig{
		User:            sshUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
	}, nil
}

// hostPort returns host:port for a parsed URL, defaulting the port from the
// scheme.
func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
