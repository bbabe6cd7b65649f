package eval

import (
	"iter"

	"github.com/jacoelho/jpq/internal/syntax"
)

// SliceIndices yields the indices a slice selector selects from an array of
// the given length, in selection order. A zero step selects nothing.
func SliceIndices(s *syntax.SliceSelector, length int) iter.Seq[int] {
	start, end, step := s.Bounds()
	return sliceIndices(start, end, step, length)
}

func sliceIndices(start, end, step *int64, length int) iter.Seq[int] {
	return func(yield func(int) bool) {
		n := int64(length)
		st := int64(1)
		if step != nil {
			st = *step
		}
		if st == 0 {
			return
		}

		var lo, hi int64
		if st > 0 {
			lo, hi = 0, n
			if start != nil {
				lo = clamp(normalize(*start, n), 0, n)
			}
			if end != nil {
				hi = clamp(normalize(*end, n), 0, n)
			}
			for i := lo; i < hi; {
				if !yield(int(i)) || st >= hi-i {
					return
				}
				i += st
			}
			return
		}

		hi, lo = n-1, -1
		if start != nil {
			hi = clamp(normalize(*start, n), -1, n-1)
		}
		if end != nil {
			lo = clamp(normalize(*end, n), -1, n-1)
		}
		for i := hi; lo < i; {
			if !yield(int(i)) || -st >= i-lo {
				return
			}
			i += st
		}
	}
}

func normalize(i, length int64) int64 {
	if i >= 0 {
		return i
	}
	return length + i
}

func clamp(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}
