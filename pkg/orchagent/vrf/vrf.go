// Package vrf is the directory of virtual-router handles, keyed by VRF or
// VNet name. Registration is owned by the VRF/VNet managers; the
// orchestration agents only resolve names.
package vrf

import (
	"github.com/praveen-li/sonic-swss/pkg/orchagent/sai"
)

// Directory maps VRF and VNet names to virtual-router handles.
type Directory struct {
	defaultVRF sai.ObjectID
	vrfs       map[string]sai.ObjectID
	vnets      map[string]sai.ObjectID
}

// NewDirectory creates a directory with the given default virtual router.
func NewDirectory(defaultVRF sai.ObjectID) *Directory {
	return &Directory{
		defaultVRF: defaultVRF,
		vrfs:       make(map[string]sai.ObjectID),
		vnets:      make(map[string]sai.ObjectID),
	}
}

// Default returns the default virtual-router handle.
func (d *Directory) Default() sai.ObjectID {
	return d.defaultVRF
}

// RegisterVRF binds a VRF name to its handle.
func (d *Directory) RegisterVRF(name string, id sai.ObjectID) {
	d.vrfs[name] = id
}

// UnregisterVRF removes a VRF binding.
func (d *Directory) UnregisterVRF(name string) {
	delete(d.vrfs, name)
}

// LookupVRF resolves a VRF name.
func (d *Directory) LookupVRF(name string) (sai.ObjectID, bool) {
	id, ok := d.vrfs[name]
	return id, ok
}

// RegisterVNet binds a VNet name to its handle.
func (d *Directory) RegisterVNet(name string, id sai.ObjectID) {
	d.vnets[name] = id
}

// UnregisterVNet removes a VNet binding.
func (d *Directory) UnregisterVNet(name string) {
	delete(d.vnets, name)
}

// LookupVNet resolves a VNet name.
func (d *Directory) LookupVNet(name string) (sai.ObjectID, bool) {
	id, ok := d.vnets[name]
	return id, ok
}
