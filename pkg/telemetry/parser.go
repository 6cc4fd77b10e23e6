package telemetry

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
)

const (
	modePrefix     = "Operational mode: "
	positionPrefix = "Position (degrees): "
	maxLineLen     = 64
)

type parseState int

const (
	stateMode     parseState = iota // waiting for the mode line
	statePosition                   // mode parsed, waiting for the position line
)

// Parser reads telemetry records back from a byte stream. A record is
// the mode line followed by the position line, anything else makes the
// parser wait for the next mode line.
type Parser struct {
	state parseState
	line  []byte
	skip  bool
	mode  opmode.Mode
}

// Parse consumes one byte and returns a sample when a record completes.
func (p *Parser) Parse(b byte) (Sample, bool) {
	switch b {
	case '\r':
		return Sample{}, false
	case '\n':
		if p.skip {
			p.skip = false
			return Sample{}, false
		}
		line := string(p.line)
		p.line = p.line[:0]
		return p.parseLine(line)
	}
	if p.skip {
		return Sample{}, false
	}
	if len(p.line) >= maxLineLen {
		// drop the rest of an overlong line.
		p.Reset()
		p.skip = true
		return Sample{}, false
	}
	p.line = append(p.line, b)
	return Sample{}, false
}

// Feed consumes a chunk and returns the completed samples.
func (p *Parser) Feed(data []byte) []Sample {
	var samples []Sample
	for _, b := range data {
		if s, ok := p.Parse(b); ok {
			samples = append(samples, s)
		}
	}
	return samples
}

// Reset drops any partial record.
func (p *Parser) Reset() {
	p.state, p.line, p.skip = stateMode, p.line[:0], false
}

func (p *Parser) parseLine(line string) (Sample, bool) {
	if strings.HasPrefix(line, modePrefix) {
		mode, ok := opmode.ParseMode(line[len(modePrefix):])
		if ok {
			p.mode, p.state = mode, statePosition
		} else {
			p.state = stateMode
		}
		return Sample{}, false
	}
	if p.state != statePosition || !strings.HasPrefix(line, positionPrefix) {
		p.state = stateMode
		return Sample{}, false
	}
	p.state = stateMode
	pos, err := strconv.Atoi(line[len(positionPrefix):])
	if err != nil || pos < 0 || pos > opmode.MaxPosition {
		return Sample{}, false
	}
	return Sample{Mode: p.mode, Position: uint8(pos)}, true
}

// Scan reads r until EOF or ctx is done and calls fn with every sample,
// stamped with the time it was parsed. r is always closed.
func Scan(ctx context.Context, r io.ReadCloser, fn func(Sample)) error {
	return framework.RunWithContextCloser(ctx, r, func() error {
		var p Parser
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			for _, s := range p.Feed(buf[:n]) {
				s.At = time.Now()
				fn(s)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
}
