package vrf

import (
	"testing"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory(1)
	if d.Default() != 1 {
		t.Fatalf("Default() = %v", d.Default())
	}

	if _, ok := d.LookupVRF("Vrf-red"); ok {
		t.Fatal("unregistered VRF resolved")
	}
	d.RegisterVRF("Vrf-red", 5)
	if id, ok := d.LookupVRF("Vrf-red"); !ok || id != 5 {
		t.Errorf("LookupVRF = %v %v", id, ok)
	}
	d.UnregisterVRF("Vrf-red")
	if _, ok := d.LookupVRF("Vrf-red"); ok {
		t.Error("VRF still resolves after unregister")
	}

	d.RegisterVNet("Vnet1", 8)
	if id, ok := d.LookupVNet("Vnet1"); !ok || id != 8 {
		t.Errorf("LookupVNet = %v %v", id, ok)
	}
	if _, ok := d.LookupVRF("Vnet1"); ok {
		t.Error("VNet name leaked into VRF namespace")
	}
	d.UnregisterVNet("Vnet1")
	if _, ok := d.LookupVNet("Vnet1"); ok {
		t.Error("VNet still resolves after unregister")
	}
}
