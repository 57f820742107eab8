package debug

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r32sim/emu"
	"github.com/sarchlab/r32sim/insts"
)

// Tracer logs every cycle at debug level.
type Tracer struct {
	logger  *logrus.Logger
	decoder *insts.Decoder
}

// NewTracer creates a tracer writing to logger.
func NewTracer(logger *logrus.Logger) *Tracer {
	return &Tracer{
		logger:  logger,
		decoder: insts.NewDecoder(),
	}
}

// Cycle logs the instruction at the PC.
func (t *Tracer) Cycle(e *emu.Emulator) error {
	if !t.logger.IsLevelEnabled(logrus.DebugLevel) {
		return nil
	}

	pc := e.RegFile().PC
	word, ok := e.Fetch()
	if !ok {
		t.logger.WithField("pc", pc).Debug("fetch out of range")
		return nil
	}

	t.logger.WithFields(logrus.Fields{
		"pc":    pc,
		"word":  word,
		"count": e.InstructionCount(),
		"inst":  t.decoder.Decode(word).String(),
	}).Debug("step")

	return nil
}
