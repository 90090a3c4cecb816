package util

import (
	"testing"
)

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantAddr string
		wantMask int
		wantErr  bool
	}{
		{
			name:     "valid /24",
			in:       "192.168.1.100/24",
			wantAddr: "192.168.1.100",
			wantMask: 24,
		},
		{
			name:     "valid /32",
			in:       "10.0.0.1/32",
			wantAddr: "10.0.0.1",
			wantMask: 32,
		},
		{
			name:     "valid v6",
			in:       "fc00::1/64",
			wantAddr: "fc00::1",
			wantMask: 64,
		},
		{
			name:    "invalid - no mask",
			in:      "192.168.1.100",
			wantErr: true,
		},
		{
			name:    "invalid - bad address",
			in:      "999.1.1.1/24",
			wantErr: true,
		},
		{
			name:    "invalid - empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePrefix(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrefix(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := p.Addr().String(); got != tt.wantAddr {
				t.Errorf("Addr() = %s, want %s", got, tt.wantAddr)
			}
			if p.MaskLen() != tt.wantMask {
				t.Errorf("MaskLen() = %d, want %d", p.MaskLen(), tt.wantMask)
			}
		})
	}
}

func TestPrefixDerivations(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		subnet     string
		host       string
		broadcast  string
		isFullHost bool
	}{
		{
			name:      "v4 /24",
			in:        "10.1.2.3/24",
			subnet:    "10.1.2.0/24",
			host:      "10.1.2.3/32",
			broadcast: "10.1.2.255",
		},
		{
			name:      "v4 /30",
			in:        "10.1.1.1/30",
			subnet:    "10.1.1.0/30",
			host:      "10.1.1.1/32",
			broadcast: "10.1.1.3",
		},
		{
			name:      "v4 /19 crosses octet",
			in:        "172.16.40.9/19",
			subnet:    "172.16.32.0/19",
			host:      "172.16.40.9/32",
			broadcast: "172.16.63.255",
		},
		{
			name:       "v4 full host",
			in:         "10.0.0.5/32",
			subnet:     "10.0.0.5/32",
			host:       "10.0.0.5/32",
			broadcast:  "10.0.0.5",
			isFullHost: true,
		},
		{
			name:   "v6 /64",
			in:     "fc00:1::5/64",
			subnet: "fc00:1::/64",
			host:   "fc00:1::5/128",
		},
		{
			name:       "v6 full host",
			in:         "fc00::1/128",
			subnet:     "fc00::1/128",
			host:       "fc00::1/128",
			isFullHost: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustParsePrefix(tt.in)
			if got := p.Subnet().String(); got != tt.subnet {
				t.Errorf("Subnet() = %s, want %s", got, tt.subnet)
			}
			if got := p.Host().String(); got != tt.host {
				t.Errorf("Host() = %s, want %s", got, tt.host)
			}
			if p.IsFullHost() != tt.isFullHost {
				t.Errorf("IsFullHost() = %v, want %v", p.IsFullHost(), tt.isFullHost)
			}
			if tt.broadcast != "" {
				if got := p.Broadcast().String(); got != tt.broadcast {
					t.Errorf("Broadcast() = %s, want %s", got, tt.broadcast)
				}
			} else if p.Broadcast().IsValid() {
				t.Errorf("Broadcast() = %s, want invalid for v6", p.Broadcast())
			}
		})
	}
}

func TestPrefixOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"same subnet different host", "10.0.0.1/24", "10.0.0.2/24", true},
		{"nested narrower inside wider", "10.0.0.0/16", "10.0.1.1/24", true},
		{"host inside subnet", "10.0.0.1/24", "10.0.0.9/32", true},
		{"disjoint", "10.0.0.1/24", "10.1.0.1/24", false},
		{"v4 vs v6", "10.0.0.1/24", "fc00::1/64", false},
		{"adjacent subnets", "10.0.0.1/25", "10.0.0.129/25", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := MustParsePrefix(tt.a), MustParsePrefix(tt.b)
			if got := a.Overlaps(b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}
