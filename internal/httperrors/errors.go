// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies transport-level failures from HTTP requests.
// The query client uses the classification to build precise error messages;
// the CLI uses it to print troubleshooting hints for common network problems
// (timeout, DNS, connection refused, TLS).
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Reason is a coarse classification of a transport failure.
type Reason string

const (
	ReasonTimeout Reason = "timeout"
	ReasonDNS     Reason = "dns"
	ReasonRefused Reason = "connection_refused"
	ReasonTLS     Reason = "tls"
	ReasonUnknown Reason = "unknown"
)

// Classify inspects a transport error and returns its reason.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonUnknown
	case isTimeoutError(err):
		return ReasonTimeout
	case isDNSError(err):
		return ReasonDNS
	case isConnectionRefusedError(err):
		return ReasonRefused
	case isTLSError(err):
		return ReasonTLS
	}
	return ReasonUnknown
}

// Describe returns a short human-readable phrase for the failure, suitable as
// the message of a transport error.
func Describe(err error) string {
	switch Classify(err) {
	case ReasonTimeout:
		return "connection timed out"
	case ReasonDNS:
		return "cannot resolve engine address"
	case ReasonRefused:
		return "connection refused by engine"
	case ReasonTLS:
		return "secure connection failed"
	}
	return "request failed"
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isTLSError checks if the error is a TLS error.
func isTLSError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// Explain prints a user-friendly troubleshooting hint for a transport failure.
// context describes what the CLI was doing ("querying the engine", ...).
func Explain(err error, context string) {
	switch Classify(err) {
	case ReasonTimeout:
		pterm.Printf("⏱️  Connection timeout while %s\n", context)
		pterm.Println("   The engine took too long to respond. It may be under heavy")
		pterm.Println("   load, or a firewall may be dropping the connection.")
	case ReasonDNS:
		pterm.Printf("🌐 Cannot resolve engine address while %s\n", context)
		pterm.Println("   Check the configured endpoint and your DNS settings.")
	case ReasonRefused:
		pterm.Printf("🚫 Connection refused while %s\n", context)
		pterm.Println("   The engine is not accepting connections. Check that the")
		pterm.Println("   endpoint host and port are correct and the broker is up.")
	case ReasonTLS:
		pterm.Printf("🔒 Secure connection failed while %s\n", context)
		pterm.Println("   Check the engine's certificate and your system clock.")
	default:
		pterm.Printf("❌ Cannot reach the engine while %s\n", context)
		short := err.Error()
		if len(short) > 100 {
			short = short[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", short)
	}
	pterm.Println()
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "engine"
	}
	return u.Host
}
