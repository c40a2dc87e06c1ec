package transfer

import "testing"

func TestValidateIPv4Accepts(t *testing.T) {
	valid := []string{
		"0.0.0.0",
		"127.0.0.1",
		"192.168.1.10",
		"255.255.255.255",
		"10.0.0.1",
	}

	for _, addr := range valid {
		if err := ValidateIPv4(addr); err != nil {
			t.Errorf("ValidateIPv4(%q) = %v, want nil", addr, err)
		}
	}
}

func TestValidateIPv4Rejects(t *testing.T) {
	invalid := []string{
		"",
		"256.1.1.1",
		"1.2.3",
		"1.2.3.4.5",
		"a.b.c.d",
		"1.2.3.",
		".1.2.3",
		"1.2.3.-4",
		"1.2.3.4 ",
		"01.2.3.2561",
		"1.2.3.1000",
		"host.example.com",
	}

	for _, addr := range invalid {
		if err := ValidateIPv4(addr); err == nil {
			t.Errorf("ValidateIPv4(%q) = nil, want error", addr)
		}
	}
}
