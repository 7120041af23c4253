package machine

import "github.com/mna/smile/lang/value"

// builtinMethod resolves the small set of collection method names spec.md
// §4.1 calls "state-machine natives" (each/map/where/count) for the two
// built-in collection kinds, ByteArray and proper List chains. Per the
// REDESIGN FLAG on this section ("no true coroutine is required"), these
// are implemented as a plain Go loop driving m.call once per element
// instead of the original C interpreter's native-stack-saving frame
// machinery: a Go loop's own stack depth is bounded by one call-stack frame
// regardless of collection size, so there is nothing to save and resume.
func (m *Machine) builtinMethod(name string, recv value.Object, args []value.Object) (value.Object, bool, error) {
	switch recv := recv.(type) {
	case *value.ByteArray:
		return m.byteArrayMethod(name, recv, args)
	case *value.List:
		return m.listMethod(name, recv, args)
	default:
		if value.IsNull(recv) && listMethodNames[name] {
			return m.listMethod(name, nil, args)
		}
		return nil, false, nil
	}
}

var listMethodNames = map[string]bool{"each": true, "map": true, "where": true, "count": true}

func (m *Machine) byteArrayMethod(name string, recv *value.ByteArray, args []value.Object) (value.Object, bool, error) {
	switch name {
	case "each":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		for i := 0; i < recv.Len(); i++ {
			v, _ := recv.Get(i)
			r, err := m.call(args[0], []value.Object{value.NewInt64(int64(i)), value.NewByte(v)})
			if err != nil {
				return nil, true, err
			}
			if !r.ToBool() {
				break
			}
		}
		return recv, true, nil
	case "map":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		out := make([]byte, recv.Len())
		for i := range out {
			v, _ := recv.Get(i)
			r, err := m.call(args[0], []value.Object{value.NewByte(v)})
			if err != nil {
				return nil, true, err
			}
			nb, ok := r.(value.Byte)
			if !ok {
				return nil, true, &NativeMethodError{Name: name, Message: "map function must return a byte"}
			}
			out[i] = byte(nb.V)
		}
		return value.NewByteArray(out), true, nil
	case "where":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		var out []byte
		for i := 0; i < recv.Len(); i++ {
			v, _ := recv.Get(i)
			r, err := m.call(args[0], []value.Object{value.NewByte(v)})
			if err != nil {
				return nil, true, err
			}
			if r.ToBool() {
				out = append(out, v)
			}
		}
		return value.NewByteArray(out), true, nil
	case "count":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		n := 0
		for i := 0; i < recv.Len(); i++ {
			v, _ := recv.Get(i)
			r, err := m.call(args[0], []value.Object{value.NewByte(v)})
			if err != nil {
				return nil, true, err
			}
			if r.ToBool() {
				n++
			}
		}
		return value.NewInt64(int64(n)), true, nil
	default:
		return nil, false, nil
	}
}

func (m *Machine) listMethod(name string, recv *value.List, args []value.Object) (value.Object, bool, error) {
	var elems []value.Object
	if recv != nil {
		value.ToSlice(recv, &elems)
	}

	switch name {
	case "each":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		for i, v := range elems {
			r, err := m.call(args[0], []value.Object{value.NewInt64(int64(i)), v})
			if err != nil {
				return nil, true, err
			}
			if !r.ToBool() {
				break
			}
		}
		return value.OfSlice(elems...), true, nil
	case "map":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		out := make([]value.Object, len(elems))
		for i, v := range elems {
			r, err := m.call(args[0], []value.Object{v})
			if err != nil {
				return nil, true, err
			}
			out[i] = r
		}
		return value.OfSlice(out...), true, nil
	case "where":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		var out []value.Object
		for _, v := range elems {
			r, err := m.call(args[0], []value.Object{v})
			if err != nil {
				return nil, true, err
			}
			if r.ToBool() {
				out = append(out, v)
			}
		}
		return value.OfSlice(out...), true, nil
	case "count":
		if len(args) != 1 {
			return nil, true, &NativeMethodError{Name: name, Message: "expects exactly 1 argument"}
		}
		n := 0
		for _, v := range elems {
			r, err := m.call(args[0], []value.Object{v})
			if err != nil {
				return nil, true, err
			}
			if r.ToBool() {
				n++
			}
		}
		return value.NewInt64(int64(n)), true, nil
	default:
		return nil, false, nil
	}
}
