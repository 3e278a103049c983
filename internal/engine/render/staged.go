package render

import "github.com/Faultbox/ennona/internal/engine/gpu"

// staged holds the buffers created for an import that has not been applied
// yet. apply swaps them into the stage and releases the old ones; discard
// destroys them instead.
type staged struct {
	dev     gpu.Device
	buffers []gpu.Buffer
	apply   func()
}

func (s *staged) create(desc gpu.BufferDesc) (gpu.Buffer, error) {
	b, err := s.dev.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	s.buffers = append(s.buffers, b)
	return b, nil
}

func (s *staged) discard() {
	for _, b := range s.buffers {
		s.dev.DestroyBuffer(b)
	}
	s.buffers = nil
}
