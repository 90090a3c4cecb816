package intfsync

import (
	"context"
	"net"
	"testing"

	"github.com/vishvananda/netlink"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePublisher struct {
	sets map[string]map[string]string
	dels []string
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{sets: make(map[string]map[string]string)}
}

func (f *fakePublisher) Set(_ context.Context, key string, fields map[string]string) error {
	f.sets[key] = fields
	return nil
}

func (f *fakePublisher) Del(_ context.Context, key string) error {
	f.dels = append(f.dels, key)
	return nil
}

type fakeState map[string]struct{}

func (f fakeState) Get(_ context.Context, key string) (map[string]string, bool, error) {
	if _, ok := f[key]; ok {
		return map[string]string{"state": "ok"}, true, nil
	}
	return nil, false, nil
}

func newTestSync(names map[int]string, ready ...string) (*IntfSync, *fakePublisher) {
	pub := newFakePublisher()
	state := fakeState{}
	for _, alias := range ready {
		state[alias] = struct{}{}
	}
	s := &IntfSync{
		intfTable: pub,
		statePort: state,
		stateLag:  state,
		stateVlan: state,
		linkName: func(index int) (string, error) {
			return names[index], nil
		},
	}
	return s, pub
}

func addrUpdate(index int, cidr string, scope int, newAddr bool) netlink.AddrUpdate {
	ip, ipNet, _ := net.ParseCIDR(cidr)
	ipNet.IP = ip
	return netlink.AddrUpdate{
		LinkAddress: *ipNet,
		LinkIndex:   index,
		Scope:       scope,
		NewAddr:     newAddr,
	}
}

func TestNewAddrPublishes(t *testing.T) {
	s, pub := newTestSync(map[int]string{5: "Ethernet0"}, "Ethernet0")

	if err := s.handleAddr(context.Background(), addrUpdate(5, "10.0.0.1/24", int(netlink.SCOPE_UNIVERSE), true)); err != nil {
		t.Fatal(err)
	}

	fields, ok := pub.sets["Ethernet0:10.0.0.1/24"]
	if !ok {
		t.Fatalf("no record published; sets=%v", pub.sets)
	}
	if fields["family"] != "IPv4" || fields["scope"] != "global" {
		t.Errorf("fields = %v", fields)
	}
}

func TestDelAddrPublishesDelete(t *testing.T) {
	s, pub := newTestSync(map[int]string{5: "Ethernet0"}, "Ethernet0")

	if err := s.handleAddr(context.Background(), addrUpdate(5, "10.0.0.1/24", int(netlink.SCOPE_UNIVERSE), false)); err != nil {
		t.Fatal(err)
	}
	if len(pub.dels) != 1 || pub.dels[0] != "Ethernet0:10.0.0.1/24" {
		t.Errorf("dels = %v", pub.dels)
	}
}

func TestLocalScopeAndV6Family(t *testing.T) {
	s, pub := newTestSync(map[int]string{7: "Vlan100"}, "Vlan100")

	u := addrUpdate(7, "fe80::1/64", int(netlink.SCOPE_LINK), true)
	if err := s.handleAddr(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	fields := pub.sets["Vlan100:fe80::1/64"]
	if fields["family"] != "IPv6" || fields["scope"] != "local" {
		t.Errorf("fields = %v", fields)
	}
}

func TestIgnoredInterfacesDropped(t *testing.T) {
	s, pub := newTestSync(map[int]string{1: "dummy", 2: "usb0"})

	for _, idx := range []int{1, 2} {
		if err := s.handleAddr(context.Background(), addrUpdate(idx, "10.0.0.1/24", 0, true)); err != nil {
			t.Fatal(err)
		}
	}
	if len(pub.sets) != 0 || len(pub.dels) != 0 {
		t.Errorf("ignored interfaces published: sets=%v dels=%v", pub.sets, pub.dels)
	}
}

func TestNotReadyInterfaceDropped(t *testing.T) {
	// Ethernet4 exists in the kernel but is not yet in STATE_DB.
	s, pub := newTestSync(map[int]string{5: "Ethernet4"}, "Ethernet0")

	if err := s.handleAddr(context.Background(), addrUpdate(5, "10.0.0.1/24", 0, true)); err != nil {
		t.Fatal(err)
	}
	if len(pub.sets) != 0 {
		t.Errorf("not-ready interface published: %v", pub.sets)
	}
}

func TestSpecialInterfacesAlwaysReady(t *testing.T) {
	s, pub := newTestSync(map[int]string{1: "lo"})

	if err := s.handleAddr(context.Background(), addrUpdate(1, "127.0.0.1/8", int(netlink.SCOPE_HOST), true)); err != nil {
		t.Fatal(err)
	}
	if _, ok := pub.sets["lo:127.0.0.1/8"]; !ok {
		t.Errorf("loopback address not published: %v", pub.sets)
	}
}
