package tcp

import (
	"net"
	"strconv"

	"http-exchange/transport"
)

type Addr struct {
	host string
	port uint16
}

var _ transport.Addr = Addr{}

// NewAddr creates an address from a host name or an IP literal and a port.
func NewAddr(host string, port uint16) Addr {
	return Addr{host, port}
}

func addrFrom(a net.Addr) Addr {
	if tcpAddr, ok := a.(*net.TCPAddr); ok {
		return Addr{host: tcpAddr.IP.String(), port: uint16(tcpAddr.Port)}
	}
	return Addr{host: a.String()}
}

func (a Addr) Host() string    { return a.host }
func (a Addr) Port() uint16    { return a.port }
func (a Addr) Identifier() any { return a.port }
func (a Addr) String() string  { return net.JoinHostPort(a.host, strconv.FormatUint(uint64(a.port), 10)) }
