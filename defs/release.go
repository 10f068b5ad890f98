// release.go - lifetime owner (C8)

package defs

// Release tears down a Definitions tree. Go's garbage collector reclaims
// the underlying memory regardless, but Release still walks the tree
// bottom-up (fields, then a register's field slice, then a unit's register
// slice, then the unit slice itself) and nils every reference, matching
// spec.md §4.8's release order and its invariant that "after release, no
// borrowed strings may be dereferenced" — here enforced by making the tree
// unreachable from d rather than by an allocator actually freeing it. This
// also breaks the Register.Unit / FieldHeader.Register back-references
// before d itself is dropped, so nothing outlives release by accident via a
// cycle the collector would otherwise keep alive through d's own fields.
func (d *Definitions) Release() {
	for ui := range d.Units {
		u := &d.Units[ui]
		for ri := range u.Registers {
			r := &u.Registers[ri]
			for fi := range r.Fields {
				if f := r.Fields[fi]; f != nil {
					f.Header().Register = nil
				}
				r.Fields[fi] = nil
			}
			r.Fields = nil
			r.Unit = nil
		}
		u.Registers = nil
	}
	d.Units = nil
}
