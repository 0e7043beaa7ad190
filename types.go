package algofftw

import (
	"fmt"
	"math/bits"
	"strings"
)

// ElementKind is the numeric type of a buffer's elements.
type ElementKind uint8

const (
	KindInvalid ElementKind = iota
	Float32
	Float64
	Complex64
	Complex128
	// ComplexLongDouble is a pair of C long doubles. Go cannot operate on
	// it directly; such buffers are created from engine-allocated memory.
	ComplexLongDouble
)

var kindNames = map[ElementKind]string{
	Float32:           "float32",
	Float64:           "float64",
	Complex64:         "complex64",
	Complex128:        "complex128",
	ComplexLongDouble: "complexlongdouble",
}

func (k ElementKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size returns the size of one element in bytes. ComplexLongDouble assumes
// the 16-byte long double of x86-64 and aarch64 Linux.
func (k ElementKind) Size() int {
	switch k {
	case Float32:
		return 4
	case Float64, Complex64:
		return 8
	case Complex128:
		return 16
	case ComplexLongDouble:
		return 32
	default:
		return 0
	}
}

// ParseElementKind maps a kind name to its ElementKind. The aliases
// "csingle", "cdouble" and "clongdouble" are accepted.
func ParseElementKind(s string) (ElementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "complex64", "csingle":
		return Complex64, nil
	case "complex128", "cdouble":
		return Complex128, nil
	case "complexlongdouble", "clongdouble":
		return ComplexLongDouble, nil
	default:
		return KindInvalid, fmt.Errorf("%w: unknown element kind %q", ErrUnsupportedPrecision, s)
	}
}

// Direction is the sign of the transform exponent.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

func (d Direction) valid() bool {
	return d == Forward || d == Backward
}

// ParseDirection maps "forward" or "backward" to a Direction. Any other
// value is rejected.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Flags is a set of planner hints. Flags combine with |; repeating a flag
// has no effect.
type Flags uint32

const (
	FlagMeasure Flags = 1 << iota
	FlagEstimate
	FlagPatient
	FlagExhaustive
	FlagDestroyInput
	FlagPreserveInput
	FlagUnaligned
	FlagConserveMemory
	FlagWisdomOnly

	flagsAll = FlagWisdomOnly<<1 - 1
)

// DefaultFlags is used when a plan is constructed with no flags.
const DefaultFlags = FlagEstimate

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagMeasure, "measure"},
	{FlagEstimate, "estimate"},
	{FlagPatient, "patient"},
	{FlagExhaustive, "exhaustive"},
	{FlagDestroyInput, "destroy_input"},
	{FlagPreserveInput, "preserve_input"},
	{FlagUnaligned, "unaligned"},
	{FlagConserveMemory, "conserve_memory"},
	{FlagWisdomOnly, "wisdom_only"},
}

// Has reports whether every flag in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Len returns the number of distinct flags set.
func (f Flags) Len() int {
	return bits.OnesCount32(uint32(f))
}

// List returns the individual flags in declaration order.
func (f Flags) List() []Flags {
	out := make([]Flags, 0, f.Len())
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.flag)
		}
	}

	return out
}

// String joins flag names with "|", e.g. "estimate|unaligned".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}

	parts := make([]string, 0, f.Len())
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}

	if rest := f &^ flagsAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}

	return strings.Join(parts, "|")
}

func (f Flags) validate() error {
	if rest := f &^ flagsAll; rest != 0 {
		return fmt.Errorf("%w: unknown bits %#x", ErrInvalidFlag, uint32(rest))
	}

	return nil
}

// ParseFlag maps a single flag name to its value.
func ParseFlag(s string) (Flags, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidFlag, s)
}

// ParseFlags combines the named flags. Names may also be joined with "|" or
// ",". An empty list yields zero.
func ParseFlags(names ...string) (Flags, error) {
	var f Flags

	for _, n := range names {
		for _, part := range strings.FieldsFunc(n, func(r rune) bool { return r == '|' || r == ',' }) {
			flag, err := ParseFlag(part)
			if err != nil {
				return 0, err
			}

			f |= flag
		}
	}

	return f, nil
}

// Normalization selects the scaling applied after execution.
type Normalization uint8

const (
	NormNone Normalization = iota
	// NormFull divides every output element by the element count.
	NormFull
	// NormSqrt divides every output element by the square root of the
	// element count.
	NormSqrt
)

func (n Normalization) String() string {
	switch n {
	case NormNone:
		return "none"
	case NormFull:
		return "full"
	case NormSqrt:
		return "sqrt"
	default:
		return fmt.Sprintf("normalization(%d)", uint8(n))
	}
}

// ParseNormalization maps "none", "full" or "sqrt" to a Normalization.
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return NormNone, nil
	case "full":
		return NormFull, nil
	case "sqrt":
		return NormSqrt, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidNormalization, s)
	}
}
