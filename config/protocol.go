package config

import "fmt"

// Protocol is an ARQ variant.
type Protocol int

// The supported ARQ variants.
const (
	StopAndWait Protocol = iota
	GoBackN
	SelectiveRepeat
)

var protocolNames = map[Protocol]string{
	StopAndWait:     "Stop & Wait",
	GoBackN:         "Go-Back-N",
	SelectiveRepeat: "Selective Repeat",
}

// String returns the name used for the protocol in configuration files.
func (p Protocol) String() string {
	name, ok := protocolNames[p]
	if !ok {
		return fmt.Sprintf("Protocol(%d)", int(p))
	}

	return name
}

// ParseProtocol converts a configuration name into a Protocol.
func ParseProtocol(name string) (Protocol, error) {
	for p, n := range protocolNames {
		if n == name {
			return p, nil
		}
	}

	return 0, invalid(KeyProtocol,
		fmt.Sprintf("the selected protocol (%s) is not valid", name))
}
