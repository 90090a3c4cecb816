package intfsorch

import (
	"testing"

	"github.com/praveen-li/sonic-swss/pkg/util"
)

func entry(prefix, iface string, kind RouteKind) IntfRoute {
	return IntfRoute{Prefix: util.MustParsePrefix(prefix), Iface: iface, Kind: kind}
}

func TestRouteIndexInsert(t *testing.T) {
	x := newRouteIndex()

	fresh, dup := x.insert(entry("10.0.0.0/24", "Ethernet0", RouteSubnet))
	if !fresh || dup {
		t.Fatalf("first insert: fresh=%v dup=%v", fresh, dup)
	}

	fresh, dup = x.insert(entry("10.0.0.0/24", "Vlan100", RouteSubnet))
	if fresh || dup {
		t.Fatalf("overlapping insert: fresh=%v dup=%v", fresh, dup)
	}

	fresh, dup = x.insert(entry("10.0.0.0/24", "Ethernet0", RouteSubnet))
	if fresh || !dup {
		t.Fatalf("duplicate insert: fresh=%v dup=%v", fresh, dup)
	}

	head, ok := x.head(util.MustParsePrefix("10.0.0.0/24"))
	if !ok || head.Iface != "Ethernet0" {
		t.Fatalf("head = %+v, ok=%v", head, ok)
	}
}

func TestRouteIndexWithdrawShadow(t *testing.T) {
	x := newRouteIndex()
	p := util.MustParsePrefix("10.0.0.0/24")
	x.insert(entry("10.0.0.0/24", "a", RouteSubnet))
	x.insert(entry("10.0.0.0/24", "b", RouteSubnet))

	effect, old, next := x.peekWithdraw(p, "b")
	if effect != withdrawShadow || old.Iface != "b" || next != nil {
		t.Fatalf("peekWithdraw(b) = %v %+v %v", effect, old, next)
	}
	x.commitWithdraw(p, "b")

	if head, _ := x.head(p); head.Iface != "a" {
		t.Errorf("head changed by shadow removal: %+v", head)
	}
}

func TestRouteIndexFIFOPromotion(t *testing.T) {
	x := newRouteIndex()
	p := util.MustParsePrefix("10.0.0.0/24")
	x.insert(entry("10.0.0.0/24", "a", RouteSubnet))
	x.insert(entry("10.0.0.0/24", "b", RouteSubnet))
	x.insert(entry("10.0.0.0/24", "c", RouteSubnet))

	effect, old, next := x.peekWithdraw(p, "a")
	if effect != withdrawHead || old.Iface != "a" {
		t.Fatalf("peekWithdraw(a) = %v %+v", effect, old)
	}
	// The oldest remaining entry is promoted, not the newest.
	if next == nil || next.Iface != "b" {
		t.Fatalf("promoted = %+v, want b", next)
	}
	x.commitWithdraw(p, "a")

	effect, _, next = x.peekWithdraw(p, "b")
	if effect != withdrawHead || next == nil || next.Iface != "c" {
		t.Fatalf("second promotion = %v %+v", effect, next)
	}
	x.commitWithdraw(p, "b")
	x.commitWithdraw(p, "c")

	if x.len() != 0 {
		t.Errorf("index not empty after draining: %d keys", x.len())
	}
}

func TestRouteIndexWithdrawAbsent(t *testing.T) {
	x := newRouteIndex()
	effect, _, _ := x.peekWithdraw(util.MustParsePrefix("10.0.0.0/24"), "a")
	if effect != withdrawNone {
		t.Fatalf("effect = %v, want none", effect)
	}
}

func TestHeadsByIface(t *testing.T) {
	x := newRouteIndex()
	x.insert(entry("10.0.0.0/24", "a", RouteSubnet))
	x.insert(entry("10.1.0.0/24", "a", RouteSubnet))
	x.insert(entry("10.2.0.0/24", "b", RouteSubnet))
	x.insert(entry("10.0.0.1/32", "a", RouteIP2Me))
	x.insert(entry("10.2.0.0/24", "a", RouteSubnet)) // shadowed

	if got := x.headsByIface("a", RouteSubnet); got != 2 {
		t.Errorf("headsByIface(a, subnet) = %d, want 2", got)
	}
	if got := x.headsByIface("b", RouteSubnet); got != 1 {
		t.Errorf("headsByIface(b, subnet) = %d, want 1", got)
	}
}
