package pack

import (
	"strings"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// Scope selects which side of a pack a dependency applies to.
type Scope int

const (
	Common Scope = iota
	Client
	Server
)

// Scopes lists every scope in bucket order.
var Scopes = []Scope{Common, Client, Server}

func (s Scope) String() string {
	switch s {
	case Client:
		return "client"
	case Server:
		return "server"
	default:
		return "common"
	}
}

// bucket is the manifest JSON key holding dependencies of this scope.
func (s Scope) bucket() string {
	switch s {
	case Client:
		return "clientDependencies"
	case Server:
		return "serverDependencies"
	default:
		return "dependencies"
	}
}

// ParseScope parses "common", "client" or "server" (case-insensitive).
// The empty string parses as [Common].
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "common":
		return Common, nil
	case "client":
		return Client, nil
	case "server":
		return Server, nil
	}
	return Common, errors.New(errors.ErrCodeInvalidInput, "unknown scope %q (want common, client or server)", s)
}
