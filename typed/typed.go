// Package typed projects classified log lines onto decoded values: program
// ids become codec.Pubkey and payload text becomes bytes. The projection
// is all or nothing; one bad line fails the whole batch.
package typed

import (
	"errors"
	"fmt"

	"github.com/danmuck/soltrace/calltree"
	"github.com/danmuck/soltrace/codec"
	"github.com/danmuck/soltrace/logline"
)

// Frame is a call tree frame over decoded ids and payloads.
type Frame = calltree.Frame[codec.Pubkey, codec.Payload]

// Line is the decoded counterpart of logline.Line.
type Line struct {
	Kind logline.Kind `json:"kind" yaml:"kind"`
	Raw  string       `json:"raw" yaml:"raw"`
	// ProgramID is nil for kinds that carry no id.
	ProgramID *codec.Pubkey `json:"program_id,omitempty" yaml:"program_id,omitempty"`
	Depth     uint8         `json:"depth,omitempty" yaml:"depth,omitempty"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Data      codec.Payload `json:"data,omitempty" yaml:"data,omitempty"`
	Err       string        `json:"err,omitempty" yaml:"err,omitempty"`
	Consumed  uint64        `json:"consumed,omitempty" yaml:"consumed,omitempty"`
	Budget    uint64        `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// DecodeError reports the first line a batch could not decode.
type DecodeError struct {
	Index int
	Raw   string
	// Field is "program_id" or "data".
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("typed: line %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FromRaw decodes the id and payload a line carries, if any.
func FromRaw(line logline.Line) (Line, error) {
	out := Line{
		Kind:     line.Kind,
		Raw:      line.Raw,
		Depth:    line.Depth,
		Message:  line.Message,
		Err:      line.Err,
		Consumed: line.Consumed,
		Budget:   line.Budget,
	}

	switch line.Kind {
	case logline.KindInvoke, logline.KindSuccess, logline.KindFailed,
		logline.KindReturn, logline.KindComputeUnits:
		id, err := codec.ParsePubkey(line.ProgramID)
		if err != nil {
			return Line{}, &DecodeError{Raw: line.Raw, Field: "program_id", Err: err}
		}
		out.ProgramID = &id
	}

	switch line.Kind {
	case logline.KindData, logline.KindReturn:
		data, err := codec.ParsePayload(line.Data)
		if err != nil {
			return Line{}, &DecodeError{Raw: line.Raw, Field: "data", Err: err}
		}
		out.Data = data
	}

	return out, nil
}

// ParseAll decodes every line or none.
func ParseAll(lines []logline.Line) ([]Line, error) {
	out := make([]Line, len(lines))
	for i, line := range lines {
		parsed, err := FromRaw(line)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				decodeErr.Index = i
			}
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

// Entry adapts a decoded line for the call tree engine.
func Entry(line Line) calltree.Entry[codec.Pubkey, codec.Payload] {
	entry := calltree.Entry[codec.Pubkey, codec.Payload]{
		Kind:    line.Kind,
		Raw:     line.Raw,
		Depth:   line.Depth,
		Message: line.Message,
		Payload: line.Data,
		Err:     line.Err,
		Units:   calltree.ComputeUnits{Consumed: line.Consumed, Budget: line.Budget},
	}
	if line.ProgramID != nil {
		entry.ProgramID = *line.ProgramID
	}
	return entry
}

// Build reconstructs typed frames from decoded lines.
func Build(lines []Line) ([]Frame, error) {
	entries := make([]calltree.Entry[codec.Pubkey, codec.Payload], len(lines))
	for i, line := range lines {
		entries[i] = Entry(line)
	}
	return calltree.Build(entries)
}

// FromClassified decodes then builds.
func FromClassified(lines []logline.Line) ([]Frame, error) {
	parsed, err := ParseAll(lines)
	if err != nil {
		return nil, err
	}
	return Build(parsed)
}

// FromLines classifies, decodes and builds.
func FromLines(raws []string) ([]Frame, error) {
	return FromClassified(logline.ClassifyAll(raws))
}

// Reason extends calltree.Reason with decode failures.
func Reason(err error) string {
	switch {
	case errors.Is(err, codec.ErrInvalidPubkey):
		return "invalid_program_id"
	case errors.Is(err, codec.ErrInvalidPayload):
		return "invalid_payload"
	default:
		return calltree.Reason(err)
	}
}
