package algofftw

import (
	"fmt"
	"slices"
	"unsafe"
)

// Buffer describes caller-owned array memory: its shape, element kind,
// layout and address. A Buffer never owns the storage it describes. It keeps
// the backing slice reachable, but the caller must not resize or reuse that
// storage for other purposes while a plan has the Buffer bound.
//
// The zero Buffer describes nothing and is rejected by every plan operation.
type Buffer struct {
	data    unsafe.Pointer
	backing any
	shape   []int
	kind    ElementKind
	stride  int
}

// Complex64Buffer describes data as a row-major array of the given shape.
// With no shape the buffer is one-dimensional.
func Complex64Buffer(data []complex64, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Complex64, 1, shape)
}

// Complex128Buffer describes data as a row-major array of the given shape.
// With no shape the buffer is one-dimensional.
func Complex128Buffer(data []complex128, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Complex128, 1, shape)
}

// Float32Buffer describes real single precision data. No engine plans real
// buffers; the kind exists so such arrays are rejected with
// ErrUnsupportedPrecision rather than misread.
func Float32Buffer(data []float32, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Float32, 1, shape)
}

// Float64Buffer describes real double precision data. See Float32Buffer.
func Float64Buffer(data []float64, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Float64, 1, shape)
}

// StridedComplex64 describes every stride-th element of data as an array of
// the given shape. Views with stride > 1 are not contiguous and cannot be
// bound to a plan.
func StridedComplex64(data []complex64, stride int, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Complex64, stride, shape)
}

// StridedComplex128 describes every stride-th element of data as an array
// of the given shape. See StridedComplex64.
func StridedComplex128(data []complex128, stride int, shape ...int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data), Complex128, stride, shape)
}

// BytesBuffer describes raw bytes as elements of kind. len(data) must equal
// the element count times kind.Size().
func BytesBuffer(kind ElementKind, data []byte, shape ...int) (Buffer, error) {
	size := kind.Size()
	if size == 0 {
		return Buffer{}, &UnsupportedPrecisionError{Kind: kind}
	}

	if len(data) == 0 {
		return Buffer{}, ErrNilBuffer
	}

	if len(data)%size != 0 {
		return Buffer{}, fmt.Errorf("%w: %d bytes is not a multiple of %s size %d", ErrInvalidShape, len(data), kind, size)
	}

	return newBuffer(unsafe.Pointer(&data[0]), data, len(data)/size, kind, 1, shape)
}

// RawBuffer describes memory the caller obtained elsewhere, typically from
// an engine allocator. The shape is mandatory and the caller guarantees the
// memory spans it.
func RawBuffer(kind ElementKind, data unsafe.Pointer, shape ...int) (Buffer, error) {
	if data == nil {
		return Buffer{}, ErrNilBuffer
	}

	if len(shape) == 0 {
		return Buffer{}, fmt.Errorf("%w: raw buffers need an explicit shape", ErrInvalidShape)
	}

	n, err := shapeLen(shape)
	if err != nil {
		return Buffer{}, err
	}

	return newBuffer(data, nil, n, kind, 1, shape)
}

func newBuffer(data unsafe.Pointer, backing any, length int, kind ElementKind, stride int, shape []int) (Buffer, error) {
	if len(shape) == 0 {
		if stride < 1 {
			return Buffer{}, fmt.Errorf("%w: stride %d", ErrInvalidStride, stride)
		}

		shape = []int{(length + stride - 1) / stride}
	}

	n, err := shapeLen(shape)
	if err != nil {
		return Buffer{}, err
	}

	if err := validateStride(n, length, stride); err != nil {
		return Buffer{}, err
	}

	if stride == 1 && n != length {
		return Buffer{}, fmt.Errorf("%w: shape %v covers %d elements, data has %d", ErrInvalidShape, shape, n, length)
	}

	return Buffer{
		data:    data,
		backing: backing,
		shape:   slices.Clone(shape),
		kind:    kind,
		stride:  stride,
	}, nil
}

func shapeLen(shape []int) (int, error) {
	n := 1
	maxInt := int(^uint(0) >> 1)

	for _, d := range shape {
		if d < 1 {
			return 0, fmt.Errorf("%w: non-positive extent in %v", ErrInvalidShape, shape)
		}

		if n > maxInt/d {
			return 0, fmt.Errorf("%w: %v overflows", ErrInvalidShape, shape)
		}

		n *= d
	}

	return n, nil
}

// validateStride checks that n elements spaced stride apart fit in length.
func validateStride(n, length, stride int) error {
	if stride < 1 {
		return fmt.Errorf("%w: stride %d", ErrInvalidStride, stride)
	}

	if stride == 1 {
		return nil
	}

	maxInt := int(^uint(0) >> 1)
	maxIndex := n - 1

	if maxIndex > (maxInt-1)/stride {
		return fmt.Errorf("%w: stride %d overflows", ErrInvalidStride, stride)
	}

	if required := 1 + maxIndex*stride; length < required {
		return fmt.Errorf("%w: %d elements at stride %d need %d, data has %d", ErrInvalidStride, n, stride, required, length)
	}

	return nil
}

// IsZero reports whether b describes no memory.
func (b Buffer) IsZero() bool {
	return b.data == nil
}

// Shape returns a copy of the dimension extents.
func (b Buffer) Shape() []int {
	return slices.Clone(b.shape)
}

// Rank returns the number of dimensions.
func (b Buffer) Rank() int {
	return len(b.shape)
}

// Len returns the total element count.
func (b Buffer) Len() int {
	if b.IsZero() {
		return 0
	}

	n, _ := shapeLen(b.shape)

	return n
}

// Kind returns the element kind.
func (b Buffer) Kind() ElementKind {
	return b.kind
}

// Stride returns the distance in elements between consecutive elements.
func (b Buffer) Stride() int {
	return b.stride
}

// Contiguous reports whether the elements are densely packed in row-major
// order.
func (b Buffer) Contiguous() bool {
	return b.stride == 1
}

// Pointer returns the address of the first element.
func (b Buffer) Pointer() unsafe.Pointer {
	return b.data
}

// Complex64 returns the described elements if the kind is Complex64. For
// strided views the slice spans from the first to the last element.
func (b Buffer) Complex64() ([]complex64, bool) {
	if b.kind != Complex64 || b.IsZero() {
		return nil, false
	}

	return unsafe.Slice((*complex64)(b.data), b.span()), true
}

// Complex128 returns the described elements if the kind is Complex128. For
// strided views the slice spans from the first to the last element.
func (b Buffer) Complex128() ([]complex128, bool) {
	if b.kind != Complex128 || b.IsZero() {
		return nil, false
	}

	return unsafe.Slice((*complex128)(b.data), b.span()), true
}

func (b Buffer) span() int {
	return 1 + (b.Len()-1)*b.stride
}

// Same reports whether b and other describe the same memory with the same
// shape, kind and layout.
func (b Buffer) Same(other Buffer) bool {
	return b.data == other.data &&
		b.kind == other.kind &&
		b.stride == other.stride &&
		slices.Equal(b.shape, other.shape)
}

// String formats the buffer as kind[shape], e.g. "complex128[64 64]".
func (b Buffer) String() string {
	if b.IsZero() {
		return "<nil buffer>"
	}

	s := fmt.Sprintf("%s%v", b.kind, b.shape)
	if b.stride != 1 {
		s += fmt.Sprintf("/stride=%d", b.stride)
	}

	return s
}
