package transfer

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateIPv4 accepts only dotted-quad IPv4 addresses: exactly four
// dot-separated groups of digits, each in [0,255].
func ValidateIPv4(address string) error {
	groups := strings.Split(address, ".")
	if len(groups) != 4 {
		return fmt.Errorf("invalid IPv4 address %q: expected four dot-separated octets", address)
	}

	for _, group := range groups {
		if group == "" || len(group) > 3 {
			return fmt.Errorf("invalid IPv4 address %q: malformed octet %q", address, group)
		}
		for _, c := range group {
			if c < '0' || c > '9' {
				return fmt.Errorf("invalid IPv4 address %q: malformed octet %q", address, group)
			}
		}

		octet, err := strconv.Atoi(group)
		if err != nil || octet > 255 {
			return fmt.Errorf("invalid IPv4 address %q: octet %q out of range", address, group)
		}
	}

	return nil
}
