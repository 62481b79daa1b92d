package interp

import "github.com/goforj/godump"

// DumpState is the REPL-only "DUMP" diagnostic aid: it renders the
// current variable and array tables the way GaryLuck-basic-plus-1's
// basic.go uses godump.Dump to inspect parser/object state during
// development. It has no language meaning —
// no statement keyword triggers it, only the REPL shell's immediate
// recognition of the literal command.
func (it *Interpreter) DumpState() {
	godump.Dump(it.vars.scalars)
	for name, a := range it.vars.arrays {
		godump.Dump(name, a.dims, a.data)
	}
}
