package relay

import (
	"fmt"
	"net"
)

// findFreePort finds an available TCP port for a bridge to bind.
func findFreePort() int {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 5555
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 5555
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

// ValidatePort checks if a port is in valid range
func ValidatePort(port int) error {
	if port < 1024 || port > 65535 {
		return fmt.Errorf("port %d out of valid range (1024-65535)", port)
	}
	return nil
}
