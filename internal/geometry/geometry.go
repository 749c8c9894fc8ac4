package geometry

// Geometry is an ordered, fixed-length sequence of Devices carrying a
// monotonically increasing mutation counter. Transports that cache
// per-device positions compare this counter to know when to invalidate
// their cache; they must never hold an index-independent device handle.
type Geometry struct {
	devices []Device
	version uint64
}

// NewGeometry builds a Geometry over devices. The device count is fixed for
// the lifetime of the returned value.
func NewGeometry(devices []Device) *Geometry {
	return &Geometry{devices: devices, version: 1}
}

// Len returns the number of devices, which never changes.
func (g *Geometry) Len() int { return len(g.devices) }

// Version returns the current mutation counter.
func (g *Geometry) Version() uint64 { return g.version }

// Device returns a read-only view of the i-th device.
func (g *Geometry) Device(i int) *Device { return &g.devices[i] }

// Devices returns all devices in index order, read-only.
func (g *Geometry) Devices() []Device { return g.devices }

// NumEnabled counts devices with Enabled() true.
func (g *Geometry) NumEnabled() int {
	n := 0
	for i := range g.devices {
		if g.devices[i].enabled {
			n++
		}
	}
	return n
}

// MutateDevice grants fn exclusive mutable access to device i and bumps the
// version counter, mirroring the source's rule that any mutable access
// (even construction of a mutable iterator) invalidates cached positions.
func (g *Geometry) MutateDevice(i int, fn func(*Device)) {
	fn(&g.devices[i])
	g.version++
}

// Iter calls fn for every device in index order without mutating the
// geometry.
func (g *Geometry) Iter(fn func(idx int, dev *Device)) {
	for i := range g.devices {
		fn(i, &g.devices[i])
	}
}

// DeviceMask selects which devices participate in a given send. AllEnabled
// defers entirely to each Device's own Enabled flag; an explicit mask ANDs
// its per-index selection with that flag.
type DeviceMask struct {
	explicit []bool
}

// AllEnabledMask returns a mask that includes every device whose own
// Enabled flag is set.
func AllEnabledMask() DeviceMask {
	return DeviceMask{}
}

// NewDeviceMask returns a mask that additionally restricts participation to
// the indices where selected[i] is true.
func NewDeviceMask(selected []bool) DeviceMask {
	cp := make([]bool, len(selected))
	copy(cp, selected)
	return DeviceMask{explicit: cp}
}

// Includes reports whether device i participates, given the geometry it was
// built against.
func (m DeviceMask) Includes(g *Geometry, i int) bool {
	if !g.devices[i].Enabled() {
		return false
	}
	if m.explicit == nil {
		return true
	}
	if i >= len(m.explicit) {
		return false
	}
	return m.explicit[i]
}
