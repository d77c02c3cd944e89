// Package calltree rebuilds the nested invocation tree of a program
// execution log from its classified lines.
//
// Ownership boundary:
// - open-frame stack and its transition rules
// - finalized frame shape
// - stack imbalance errors
//
// The engine is generic over the program id and payload representation so
// the same algorithm serves raw text and decoded values.
package calltree

import (
	"fmt"

	"github.com/danmuck/soltrace/logline"
)

// RawFrame is a frame over the undecoded text of the log.
type RawFrame = Frame[string, string]

// Build runs entries through the frame stack and returns the root frames in
// the order their invocations opened. Any imbalance fails the whole batch
// with a *StackError and no frames.
func Build[ID comparable, B any](entries []Entry[ID, B]) ([]Frame[ID, B], error) {
	var (
		stack []*builder[ID, B]
		roots []Frame[ID, B]
	)

	for i, entry := range entries {
		switch entry.Kind {
		case logline.KindInvoke:
			stack = append(stack, newBuilder(entry, i))

		case logline.KindSuccess, logline.KindFailed:
			if len(stack) == 0 {
				return nil, &StackError{
					Err:  ErrUnmatchedOutcome,
					Line: i,
					Raw:  entry.Raw,
					Got:  fmt.Sprint(entry.ProgramID),
				}
			}
			top := stack[len(stack)-1]
			if top.programID != entry.ProgramID {
				return nil, &StackError{
					Err:      ErrMismatchedOutcome,
					Line:     i,
					Raw:      entry.Raw,
					Expected: fmt.Sprint(top.programID),
					Got:      fmt.Sprint(entry.ProgramID),
					Open:     len(stack),
				}
			}
			stack = stack[:len(stack)-1]

			outcome := Success()
			if entry.Kind == logline.KindFailed {
				outcome = Failure(entry.Err)
			}
			frame := top.finalize(outcome, entry.Raw)
			if len(stack) == 0 {
				roots = append(roots, frame)
				continue
			}
			stack[len(stack)-1].adopt(frame)

		case logline.KindLog:
			if top := peek(stack); top != nil {
				top.pushProgramLog(entry.Message, entry.Raw)
			}

		case logline.KindData:
			if top := peek(stack); top != nil {
				top.pushDataLog(entry.Payload, entry.Raw)
			}

		case logline.KindReturn:
			top := peek(stack)
			if top == nil {
				continue
			}
			if top.programID == entry.ProgramID {
				top.setReturnData(entry.Payload, entry.Raw)
			} else {
				top.pushRaw(entry.Raw)
			}

		case logline.KindComputeUnits:
			top := peek(stack)
			if top == nil {
				continue
			}
			if top.programID == entry.ProgramID {
				top.setComputeUnits(entry.Units, entry.Raw)
			} else {
				top.pushRaw(entry.Raw)
			}

		default:
			if top := peek(stack); top != nil {
				top.pushRaw(entry.Raw)
			}
		}
	}

	if len(stack) != 0 {
		top := stack[len(stack)-1]
		return nil, &StackError{
			Err:      ErrUnclosedInvocation,
			Line:     top.line,
			Raw:      top.rawLogs[0],
			Expected: fmt.Sprint(top.programID),
			Open:     len(stack),
		}
	}
	return roots, nil
}

// RawEntry adapts a classified line for the engine without decoding it.
func RawEntry(line logline.Line) Entry[string, string] {
	return Entry[string, string]{
		Kind:      line.Kind,
		Raw:       line.Raw,
		ProgramID: line.ProgramID,
		Depth:     line.Depth,
		Message:   line.Message,
		Payload:   line.Data,
		Err:       line.Err,
		Units:     ComputeUnits{Consumed: line.Consumed, Budget: line.Budget},
	}
}

// FromClassified builds raw frames from already classified lines.
func FromClassified(lines []logline.Line) ([]RawFrame, error) {
	entries := make([]Entry[string, string], len(lines))
	for i, line := range lines {
		entries[i] = RawEntry(line)
	}
	return Build(entries)
}

// FromLines classifies raws and builds raw frames.
func FromLines(raws []string) ([]RawFrame, error) {
	return FromClassified(logline.ClassifyAll(raws))
}

func peek[ID comparable, B any](stack []*builder[ID, B]) *builder[ID, B] {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
