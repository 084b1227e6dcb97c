package process

import "sync/atomic"

// AddressSpace is the memory image of a process. The kernel core only hands
// it around; its contents are opaque here.
type AddressSpace interface {
	Token() uint64
	Image() string
	Clone() AddressSpace
}

var tokenSeq atomic.Uint64

// Space is the default AddressSpace: an identity plus the image it was
// loaded from.
type Space struct {
	token uint64
	image string
}

// NewSpace allocates a fresh address space for image.
func NewSpace(image string) *Space {
	return &Space{token: tokenSeq.Add(1), image: image}
}

func (s *Space) Token() uint64 { return s.token }

func (s *Space) Image() string { return s.image }

// Clone returns a copy with a new identity, as fork does.
func (s *Space) Clone() AddressSpace {
	return NewSpace(s.image)
}
