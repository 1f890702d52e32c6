package endpoint

import (
	"context"
	"net"
	"strconv"

	"github.com/ikhovind/gotaps/errors"
)

func portString(p uint16) string {
	return strconv.FormatUint(uint64(p), 10)
}

// ResolveRemote implements spec.md §4.1 for a remote endpoint: literal
// addresses resolve to a single entry, hostnames fan out across every
// address the resolver returns, and the port is resolved per the
// numeric → service-name → ERR_NO_PORT precedence.
func ResolveRemote(ctx context.Context, r *Remote) ([]Resolved, error) {
	if r == nil {
		return nil, errors.New(errors.InvalidArgument, nil)
	}

	port, err := resolvePort(r.Port, r.Service, Unspecified)
	if err != nil {
		return nil, err
	}

	if r.Address != "" {
		ip := net.ParseIP(r.Address)
		if ip == nil {
			return nil, errors.Newf(errors.DNSError, "%q is not a literal IP address", r.Address)
		}
		return []Resolved{{IP: ip, Port: port, Family: familyOf(ip)}}, nil
	}

	if r.Hostname == "" {
		return nil, errors.New(errors.InvalidArgument, nil)
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", r.Hostname)
	if err != nil {
		return nil, errors.New(errors.DNSError, err)
	}

	out := make([]Resolved, 0, len(ips))
	for _, ip := range ips {
		out = append(out, Resolved{IP: ip, Port: port, Family: familyOf(ip)})
	}
	return out, nil
}

// ResolveLocal implements spec.md §4.1 for a local endpoint: an
// interface name resolves to every address bound to that interface
// (capped at MaxInterfaceAddresses); an unset interface falls back to the
// IPv4 and IPv6 wildcard addresses, while an interface name that cannot
// be resolved, or that has no addresses, fails with ERR_NO_INTERFACE.
func ResolveLocal(l *Local) ([]Resolved, error) {
	if l == nil {
		l = &Local{}
	}

	port, err := resolvePort(l.Port, l.Service, Unspecified)
	if err != nil {
		return nil, err
	}

	if l.Interface == "" {
		return []Resolved{
			{IP: net.IPv4zero, Port: port, Family: IPv4},
			{IP: net.IPv6zero, Port: port, Family: IPv6},
		}, nil
	}

	iface, err := net.InterfaceByName(l.Interface)
	if err != nil {
		return nil, errors.New(errors.NoInterface, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, errors.New(errors.NoInterface, err)
	}

	out := make([]Resolved, 0, len(addrs))
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		out = append(out, Resolved{IP: ipNet.IP, Port: port, Family: familyOf(ipNet.IP)})
		if len(out) >= MaxInterfaceAddresses {
			break
		}
	}

	if len(out) == 0 {
		return nil, errors.New(errors.NoInterface, nil)
	}

	return out, nil
}

// resolvePort implements the numeric → service-name → ERR_NO_PORT
// precedence of spec.md §4.1. A numeric port always short-circuits the
// lookup; otherwise the service name is looked up once as a TCP service
// and that single port is returned for every address family. The family
// argument is not consulted, so a service whose IPv4 and IPv6 ports
// differ is not disambiguated.
func resolvePort(numeric uint16, service string, family Family) (uint16, error) {
	if numeric != 0 {
		return numeric, nil
	}
	if service == "" {
		return 0, errors.New(errors.NoPort, nil)
	}

	port, err := net.DefaultResolver.LookupPort(context.Background(), "tcp", service)
	if err != nil {
		return 0, errors.New(errors.NoPort, err)
	}
	return uint16(port), nil
}
