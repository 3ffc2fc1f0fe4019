// Package fixedpoint implements the signed Qm.n quantization used by the
// BiLSTM memory images, and the two's-complement hex words they are stored as.
package fixedpoint

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned by Format.Validate.
var ErrInvalidFormat = errors.New("invalid fixed-point format")

// Format is a signed Qm.n layout: IntBits integer bits (sign included) and
// FracBits fractional bits.
type Format struct {
	IntBits  int `yaml:"int_bits"`
	FracBits int `yaml:"frac_bits"`
}

// Q4_12 is the 16-bit layout every memory image in the pipeline uses.
var Q4_12 = Format{IntBits: 4, FracBits: 12}

// Bits returns the total word width.
func (f Format) Bits() int {
	return f.IntBits + f.FracBits
}

func (f Format) Validate() error {
	if f.IntBits < 1 {
		return fmt.Errorf("%w: int_bits %d (must be >= 1, sign bit included)", ErrInvalidFormat, f.IntBits)
	}
	if f.FracBits < 0 {
		return fmt.Errorf("%w: frac_bits %d (must be non-negative)", ErrInvalidFormat, f.FracBits)
	}
	if f.Bits() > 32 {
		return fmt.Errorf("%w: Q%d.%d is %d bits wide (max 32)", ErrInvalidFormat, f.IntBits, f.FracBits, f.Bits())
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("Q%d.%d", f.IntBits, f.FracBits)
}

// Scale is 2^FracBits.
func (f Format) Scale() float64 {
	return math.Ldexp(1, f.FracBits)
}

// Min is the most negative representable real, -2^(m-1).
func (f Format) Min() float64 {
	return -math.Ldexp(1, f.IntBits-1)
}

// Max is the largest representable real, 2^(m-1) - 2^-n.
func (f Format) Max() float64 {
	return math.Ldexp(1, f.IntBits-1) - math.Ldexp(1, -f.FracBits)
}

// Fits reports whether q survives masking to the word width without wrapping.
func (f Format) Fits(q int64) bool {
	lim := int64(1) << (f.Bits() - 1)
	return q >= -lim && q < lim
}

// Quantize returns round(v * 2^n) with ties to even. The result is not
// clamped and may lie outside the word range; EncodeHex wraps it. Products
// beyond the int64 range are reduced mod 2^32 first, which keeps the low
// word bits exact. Non-finite inputs quantize to zero.
func Quantize(v float64, f Format) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scaled := math.RoundToEven(v * f.Scale())
	if scaled >= math.MaxInt64 || scaled <= math.MinInt64 {
		scaled = math.Mod(scaled, 1<<32)
	}
	return int64(scaled)
}

// Overflows reports whether v rounds to a word outside the format range,
// i.e. whether its encoding wraps.
func Overflows(v float64, f Format) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	scaled := math.RoundToEven(v * f.Scale())
	lim := math.Ldexp(1, f.Bits()-1)
	return scaled < -lim || scaled >= lim
}

// Clamp saturates v to [Min, Max]. NaN maps to zero.
func Clamp(v float64, f Format) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(f.Min(), math.Min(v, f.Max()))
}

// ToFloat converts a word back to a real.
func ToFloat(q int64, f Format) float64 {
	return float64(q) / f.Scale()
}

// EncodeHex masks q to bits and renders it as zero-padded uppercase hex.
func EncodeHex(q int64, bits int) string {
	mask := uint64(1)<<uint(bits) - 1
	if bits >= 64 {
		mask = math.MaxUint64
	}
	return fmt.Sprintf("%0*X", digits(bits), uint64(q)&mask)
}

// DecodeHex parses a word produced by EncodeHex and sign-extends it.
func DecodeHex(s string, bits int) (int64, error) {
	s = strings.TrimSpace(s)
	u, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("decode word %q: %w", s, err)
	}
	v := int64(u)
	if bits < 64 && u&(uint64(1)<<uint(bits-1)) != 0 {
		v -= int64(1) << uint(bits)
	}
	return v, nil
}

// Word is Quantize followed by EncodeHex for the format's width.
func Word(v float64, f Format) string {
	return EncodeHex(Quantize(v, f), f.Bits())
}

func digits(bits int) int {
	return (bits + 3) / 4
}
