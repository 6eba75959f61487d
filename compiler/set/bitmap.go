package set

type (
	// Bitmap is a dense set of small non-negative ints, block ids mostly.
	Bitmap struct {
		b  []uint64
		b0 [1]uint64
	}
)

// MakeBitmap returns a Bitmap preallocated for n elements.
func MakeBitmap(n int) Bitmap {
	s := Bitmap{}
	s.b = s.b0[:]

	if n = (n + 63) / 64; n > len(s.b) {
		s.b = make([]uint64, n)
	}

	return s
}

func (s *Bitmap) Set(i int) {
	i, j := s.ij(i)

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}

	s.b[i] |= 1 << j
}

func (s *Bitmap) Clear(i int) {
	i, j := s.ij(i)

	if i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s *Bitmap) IsSet(i int) bool {
	i, j := s.ij(i)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bitmap) ij(pos int) (i int, j int) {
	return pos / 64, pos % 64
}
