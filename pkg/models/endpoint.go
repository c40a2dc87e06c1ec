package models

import "fmt"

// RemoteEndpoint identifies a remote host's archive store reachable over ssh.
type RemoteEndpoint struct {
	User      string `json:"user"`
	Address   string `json:"address"`
	StorePath string `json:"store_path"`
}

// Target returns the user@address form used by ssh and rsync.
func (e RemoteEndpoint) Target() string {
	return fmt.Sprintf("%s@%s", e.User, e.Address)
}
