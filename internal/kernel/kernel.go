// Package kernel contains the reference moving-average kernels.
//
// A kernel is called with a flat positional argument list and writes its
// output in place into the second array argument. It returns nothing: an
// argument list that does not follow the documented signature is a
// programming error and panics, the same way a native routine would fault.
package kernel

import (
	"fmt"
	"sort"

	"github.com/amirphl/simple-indicators/internal/marshal"
)

type Func func(args []marshal.Arg)

// Library maps a kernel name to its implementation.
type Library map[string]Func

// Names returns the kernel names in lexical order.
func (l Library) Names() []string {
	out := make([]string, 0, len(l))
	for name := range l {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Documented signatures.
var (
	BaseSignature = marshal.Signature{marshal.KindArray, marshal.KindArray, marshal.KindInt, marshal.KindInt}
	// data, out, len, period, alpha
	ESMASignature = append(clone(BaseSignature), marshal.KindDouble)
	// data, out, len, period, n_fast, n_slow
	KAMASignature = append(clone(BaseSignature), marshal.KindInt, marshal.KindInt)
	// data, out, high, low, len, period
	FRAMASignature = marshal.Signature{marshal.KindArray, marshal.KindArray, marshal.KindArray, marshal.KindArray, marshal.KindInt, marshal.KindInt}
)

func clone(s marshal.Signature) marshal.Signature {
	out := make(marshal.Signature, len(s))
	copy(out, s)
	return out
}

// Reference returns the pure Go kernels keyed by lower-case family name.
func Reference() Library {
	return Library{
		"sma":   base(SMA),
		"ema":   base(EMA),
		"wma":   base(WMA),
		"hma":   base(HMA),
		"rma":   base(RMA),
		"tema":  base(TEMA),
		"dema":  base(DEMA),
		"esma":  esma,
		"kama":  kama,
		"frama": frama,
	}
}

func base(fn func(data, out []float64, period int)) Func {
	return func(args []marshal.Arg) {
		data, out := array(args, 0), array(args, 1)
		n, period := integer(args, 2), integer(args, 3)
		fn(data[:n], out[:n], period)
	}
}

func esma(args []marshal.Arg) {
	data, out := array(args, 0), array(args, 1)
	n, period := integer(args, 2), integer(args, 3)
	ESMA(data[:n], out[:n], period, double(args, 4))
}

func kama(args []marshal.Arg) {
	data, out := array(args, 0), array(args, 1)
	n, period := integer(args, 2), integer(args, 3)
	KAMA(data[:n], out[:n], period, integer(args, 4), integer(args, 5))
}

func frama(args []marshal.Arg) {
	data, out := array(args, 0), array(args, 1)
	high, low := array(args, 2), array(args, 3)
	n, period := integer(args, 4), integer(args, 5)
	FRAMA(data[:n], out[:n], high[:n], low[:n], period)
}

func array(args []marshal.Arg, i int) []float64 {
	a, ok := at(args, i).(marshal.ArrayArg)
	if !ok {
		panic(fmt.Sprintf("kernel: arg %d is %s, want array", i, at(args, i).Kind()))
	}
	return a.Data
}

func integer(args []marshal.Arg, i int) int {
	v, ok := at(args, i).(marshal.IntArg)
	if !ok {
		panic(fmt.Sprintf("kernel: arg %d is %s, want int", i, at(args, i).Kind()))
	}
	return int(v)
}

func double(args []marshal.Arg, i int) float64 {
	v, ok := at(args, i).(marshal.FloatArg)
	if !ok {
		panic(fmt.Sprintf("kernel: arg %d is %s, want double", i, at(args, i).Kind()))
	}
	return float64(v)
}

func at(args []marshal.Arg, i int) marshal.Arg {
	if i >= len(args) {
		panic(fmt.Sprintf("kernel: missing arg %d of %d", i, len(args)))
	}
	return args[i]
}
