// Package netutil converts inclusive IP address ranges into minimal CIDR
// covers. Delegation tables report non-aligned ("Aggreg") ranges as a
// first/last address pair; routers want CIDR blocks.
package netutil

import (
	"errors"
	"fmt"
	"math/bits"
	"net/netip"
	"strings"
)

// ErrInvalidRange reports an unparsable address, a mixed-family pair, or a
// range whose first address is after its last.
var ErrInvalidRange = errors.New("invalid IP range")

// RangeToCIDRs returns the minimal ordered list of CIDR blocks whose union is
// exactly the inclusive range [first, last]. Both addresses must belong to
// the same family and satisfy first <= last. Blocks come back in ascending
// address order; a single address yields one /32 or /128 block.
func RangeToCIDRs(first, last string) ([]string, error) {
	lo, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an IP address", ErrInvalidRange, first)
	}
	hi, err := netip.ParseAddr(strings.TrimSpace(last))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an IP address", ErrInvalidRange, last)
	}
	if lo.Is4() != hi.Is4() {
		return nil, fmt.Errorf("%w: mixed address families %q and %q", ErrInvalidRange, first, last)
	}
	if hi.Less(lo) {
		return nil, fmt.Errorf("%w: %q is after %q", ErrInvalidRange, first, last)
	}
	if lo.Is4() {
		return rangeToCIDRs4(lo, hi), nil
	}
	return rangeToCIDRs6(lo, hi), nil
}

// rangeToCIDRs4 greedily takes the largest aligned block starting at the
// current lower bound that still fits the remaining range. Arithmetic is done
// in uint64 so the full-space range does not overflow.
func rangeToCIDRs4(lo, hi netip.Addr) []string {
	cur := uint64(be32(lo.As4()))
	end := uint64(be32(hi.As4()))

	var cidrs []string
	for {
		size := bits.TrailingZeros64(cur)
		if span := bits.Len64(end-cur+1) - 1; span < size {
			size = span
		}
		if size > 32 {
			size = 32
		}
		cidrs = append(cidrs, fmt.Sprintf("%s/%d", addr4(uint32(cur)), 32-size))
		cur += 1 << size
		if cur > end {
			return cidrs
		}
	}
}

func rangeToCIDRs6(lo, hi netip.Addr) []string {
	cur := from16(lo.As16())
	end := from16(hi.As16())

	var cidrs []string
	for {
		size := cur.trailingZeros()
		if span := spanBits(cur, end); span < size {
			size = span
		}
		cidrs = append(cidrs, fmt.Sprintf("%s/%d", netip.AddrFrom16(cur.to16()), 128-size))
		if size == 128 {
			return cidrs
		}
		next, carry := cur.add(one128(size))
		if carry != 0 || end.less(next) {
			return cidrs
		}
		cur = next
	}
}

// spanBits returns floor(log2(end-cur+1)), the largest block exponent that
// does not overshoot end.
func spanBits(cur, end uint128) int {
	diff := end.sub(cur)
	if diff.hi == ^uint64(0) && diff.lo == ^uint64(0) {
		return 128 // whole address space, diff+1 would wrap
	}
	count, _ := diff.add(uint128{lo: 1})
	return count.bitLen() - 1
}

func be32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func addr4(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// uint128 is an unsigned 128-bit integer for IPv6 address arithmetic.
type uint128 struct {
	hi, lo uint64
}

func from16(b [16]byte) uint128 {
	var u uint128
	for i := 0; i < 8; i++ {
		u.hi = u.hi<<8 | uint64(b[i])
		u.lo = u.lo<<8 | uint64(b[i+8])
	}
	return u
}

func (u uint128) to16() [16]byte {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(u.hi >> (56 - 8*i))
		b[i+8] = byte(u.lo >> (56 - 8*i))
	}
	return b
}

func (u uint128) add(v uint128) (uint128, uint64) {
	lo, carry := bits.Add64(u.lo, v.lo, 0)
	hi, carry := bits.Add64(u.hi, v.hi, carry)
	return uint128{hi: hi, lo: lo}, carry
}

func (u uint128) sub(v uint128) uint128 {
	lo, borrow := bits.Sub64(u.lo, v.lo, 0)
	hi, _ := bits.Sub64(u.hi, v.hi, borrow)
	return uint128{hi: hi, lo: lo}
}

func (u uint128) less(v uint128) bool {
	if u.hi != v.hi {
		return u.hi < v.hi
	}
	return u.lo < v.lo
}

// trailingZeros returns 128 for zero, making the zero address align to any
// block size.
func (u uint128) trailingZeros() int {
	if u.lo != 0 {
		return bits.TrailingZeros64(u.lo)
	}
	return 64 + bits.TrailingZeros64(u.hi)
}

func (u uint128) bitLen() int {
	if u.hi != 0 {
		return 64 + bits.Len64(u.hi)
	}
	return bits.Len64(u.lo)
}

// one128 returns 1 << n for 0 <= n < 128.
func one128(n int) uint128 {
	if n < 64 {
		return uint128{lo: 1 << n}
	}
	return uint128{hi: 1 << (n - 64)}
}
