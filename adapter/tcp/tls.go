package tcp

import (
	"crypto/tls"
	"net"
)

func tlsClient(conn net.Conn, cfg *tls.Config) net.Conn {
	return tls.Client(conn, cfg)
}

func tlsListen(addr string, cfg *tls.Config) (net.Listener, error) {
	return tls.Listen("tcp", addr, cfg)
}
