package ports

import (
	"io"

	"loopplanner/internal/domain/familiarity"
)

// DecodedLearning is a learning file read into state. Skipped holds 1-based
// line numbers that could not be read as rows.
type DecodedLearning struct {
	State   familiarity.State
	Skipped []int
}

// LearningCodec reads and writes the learning exchange file.
type LearningCodec interface {
	Decode(r io.Reader) (DecodedLearning, error)
	Encode(state familiarity.State) (string, error)
}
