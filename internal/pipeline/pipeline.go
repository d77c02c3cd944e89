// Package pipeline runs one log batch through classification and call
// tree reconstruction, recording metrics and logs around the silent core.
package pipeline

import (
	"github.com/danmuck/soltrace/calltree"
	"github.com/danmuck/soltrace/internal/observability"
	"github.com/danmuck/soltrace/logline"
	"github.com/danmuck/soltrace/typed"
	"github.com/rs/zerolog/log"
)

// Result holds the frames of one batch. Exactly one of Raw and Typed is
// set, depending on Mode.
type Result struct {
	Mode  string
	Lines int
	Raw   []calltree.RawFrame
	Typed []typed.Frame
}

// Frames is the total frame count, children included.
func (r Result) Frames() int {
	if r.Mode == observability.ModeTyped {
		return calltree.Count(r.Typed)
	}
	return calltree.Count(r.Raw)
}

// Value is the forest as a plain value for encoding.
func (r Result) Value() any {
	if r.Mode == observability.ModeTyped {
		if r.Typed == nil {
			return []typed.Frame{}
		}
		return r.Typed
	}
	if r.Raw == nil {
		return []calltree.RawFrame{}
	}
	return r.Raw
}

// Classify classifies raws and records per-kind counts.
func Classify(raws []string) []logline.Line {
	lines := logline.ClassifyAll(raws)
	observability.ObserveLines(lines)
	log.Debug().Int("lines", len(lines)).Msg("pipeline.Classify")
	return lines
}

// Tree classifies and reconstructs raws, decoding ids and payloads when
// decode is set.
func Tree(raws []string, decode bool) (Result, error) {
	lines := Classify(raws)
	res := Result{Mode: observability.ModeRaw, Lines: len(lines)}

	var err error
	if decode {
		res.Mode = observability.ModeTyped
		res.Typed, err = typed.FromClassified(lines)
	} else {
		res.Raw, err = calltree.FromClassified(lines)
	}

	if err != nil {
		reason := typed.Reason(err)
		observability.ObserveBatch(res.Mode, res.Lines, 0, reason)
		log.Warn().
			Str("mode", res.Mode).
			Int("lines", res.Lines).
			Str("reason", reason).
			Err(err).
			Msg("pipeline.Tree rejected batch")
		return Result{Mode: res.Mode, Lines: res.Lines}, err
	}

	frames := res.Frames()
	observability.ObserveBatch(res.Mode, res.Lines, frames, "")
	log.Debug().
		Str("mode", res.Mode).
		Int("lines", res.Lines).
		Int("frames", frames).
		Msg("pipeline.Tree complete")
	return res, nil
}
