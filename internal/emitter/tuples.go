package emitter

import (
	"strconv"

	"github.com/roach88/pybridge/internal/ir"
)

// tupleRegistry names the tuple types of one glue file. A tuple shape gets
// the name of its first use; later uses of the same shape share it.
type tupleRegistry struct {
	byShape map[string]string
	taken   map[string]bool
	order   []namedTuple
}

type namedTuple struct {
	Name  string
	Tuple ir.Tuple
}

func newTupleRegistry(taken map[string]bool) *tupleRegistry {
	reg := &tupleRegistry{byShape: map[string]string{}, taken: map[string]bool{}}
	for name := range taken {
		reg.taken[name] = true
	}
	return reg
}

// register names every tuple inside d, using hint for the outermost one.
func (r *tupleRegistry) register(d ir.Descriptor, hint string) {
	switch x := d.(type) {
	case ir.Tuple:
		shape := x.String()
		if _, ok := r.byShape[shape]; ok {
			return
		}
		name := r.unique(hint)
		r.byShape[shape] = name
		r.order = append(r.order, namedTuple{Name: name, Tuple: x})
		for i, e := range x.Elems {
			r.register(e, name+"V"+strconv.Itoa(i))
		}
	case ir.List:
		r.register(x.Elem, hint)
	case ir.Mapping:
		r.register(x.Value, hint)
	}
}

func (r *tupleRegistry) unique(hint string) string {
	name := hint
	for n := 2; r.taken[name]; n++ {
		name = hint + strconv.Itoa(n)
	}
	r.taken[name] = true
	return name
}

// name returns the registered name of t.
func (r *tupleRegistry) name(t ir.Tuple) string {
	return r.byShape[t.String()]
}
