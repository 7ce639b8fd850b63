package records

// Codec encodes and decodes one fixed-size record type.
type Codec[T Record] struct {
	size   int
	decode func([]byte) (T, error)
	encode func(T, []byte)
}

// Codecs per record type.
var (
	RawCodec          = Codec[Raw]{RawSize, DecodeRaw, Raw.Encode}
	AlgoCodec         = Codec[Algo]{AlgoSize, DecodeAlgo, Algo.Encode}
	AlgoExtendedCodec = Codec[AlgoExtended]{AlgoExtendedSize, DecodeAlgoExtended, AlgoExtended.Encode}
	ScdCodec          = Codec[Scd]{ScdSize, DecodeScd, Scd.Encode}
)

// Size returns the wire size.
func (c Codec[T]) Size() int { return c.size }

// Encode writes v into b[:Size()].
func (c Codec[T]) Encode(b []byte, v T) { c.encode(v, b) }

// Decode reads a record from the start of b.
func (c Codec[T]) Decode(b []byte) (T, error) { return c.decode(b) }
