package fabric

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// BootstrapTarget is a parsed bootstrap peer specification.
type BootstrapTarget struct {
	Identity string
	Addrs    []string
}

var errBootstrapFormat = errors.New("bootstrap peer must be host:port/identity")

// ParseBootstrap parses a "host:port/identity" bootstrap specification.
// The identity must be a full 64-character hex public key; the host may
// be an IPv4 address, an IPv6 address in brackets, or a DNS name.
func ParseBootstrap(spec string) (BootstrapTarget, error) {
	hostPort, identity, ok := strings.Cut(spec, "/")
	if !ok || hostPort == "" {
		return BootstrapTarget{}, errBootstrapFormat
	}
	if len(identity) != 64 || !isHex(identity) {
		return BootstrapTarget{}, ErrInvalidIdentity
	}

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return BootstrapTarget{}, fmt.Errorf("invalid bootstrap address %q: %w", hostPort, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return BootstrapTarget{}, fmt.Errorf("invalid bootstrap port %q", portStr)
	}

	addr, err := hostPortToMultiaddr(host, port)
	if err != nil {
		return BootstrapTarget{}, err
	}
	return BootstrapTarget{Identity: identity, Addrs: []string{addr}}, nil
}

// hostPortToMultiaddr renders a host and port as a TCP multiaddr string.
func hostPortToMultiaddr(host string, port int) (string, error) {
	ip := net.ParseIP(host)
	switch {
	case ip == nil:
		return fmt.Sprintf("/dns4/%s/tcp/%d", host, port), nil
	case ip.To4() != nil:
		return fmt.Sprintf("/ip4/%s/tcp/%d", ip, port), nil
	default:
		return fmt.Sprintf("/ip6/%s/tcp/%d", ip, port), nil
	}
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
