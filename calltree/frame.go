package calltree

import "github.com/danmuck/soltrace/logline"

// ComputeUnits is one "consumed <a> of <b> compute units" reading.
type ComputeUnits struct {
	Consumed uint64 `json:"consumed" yaml:"consumed"`
	Budget   uint64 `json:"budget" yaml:"budget"`
}

// Status is how an invocation ended.
type Status uint8

const (
	StatusSuccess Status = iota + 1
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the closing result of a frame. Err is set only when Status
// is StatusFailed.
type Outcome struct {
	Status Status `json:"status" yaml:"status"`
	Err    string `json:"err,omitempty" yaml:"err,omitempty"`
}

func Success() Outcome {
	return Outcome{Status: StatusSuccess}
}

func Failure(err string) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Entry is what the engine needs to know about one classified line. Each
// line representation converts into Entry; the engine never looks at
// anything else.
type Entry[ID comparable, B any] struct {
	Kind      logline.Kind
	Raw       string
	ProgramID ID
	Depth     uint8
	Message   string
	Payload   B
	Err       string
	Units     ComputeUnits
}

// Frame is one completed invocation. It owns its children and log lists.
//
// RawLogs holds every line of the invocation's span in input order: its
// own invoke and outcome lines, everything attributed to it, and the full
// RawLogs of each child.
type Frame[ID comparable, B any] struct {
	ProgramID    ID             `json:"program_id" yaml:"program_id"`
	Depth        uint8          `json:"depth" yaml:"depth"`
	Outcome      Outcome        `json:"outcome" yaml:"outcome"`
	ProgramLogs  []string       `json:"program_logs" yaml:"program_logs"`
	DataLogs     []B            `json:"data_logs" yaml:"data_logs"`
	ReturnData   *B             `json:"return_data,omitempty" yaml:"return_data,omitempty"`
	ComputeUnits *ComputeUnits  `json:"compute_units,omitempty" yaml:"compute_units,omitempty"`
	Children     []Frame[ID, B] `json:"children" yaml:"children"`
	RawLogs      []string       `json:"raw_logs" yaml:"raw_logs"`
}

// Walk visits f and its descendants in pre-order. parent is nil for f
// itself. Returning false from fn skips that frame's children.
func (f *Frame[ID, B]) Walk(fn func(frame, parent *Frame[ID, B]) bool) {
	f.walk(nil, fn)
}

func (f *Frame[ID, B]) walk(parent *Frame[ID, B], fn func(frame, parent *Frame[ID, B]) bool) {
	if !fn(f, parent) {
		return
	}
	for i := range f.Children {
		f.Children[i].walk(f, fn)
	}
}

// Count returns the number of frames in the subtree rooted at f.
func (f *Frame[ID, B]) Count() int {
	n := 1
	for i := range f.Children {
		n += f.Children[i].Count()
	}
	return n
}

// Failed returns every failed frame under f, f included, in pre-order.
func (f *Frame[ID, B]) Failed() []*Frame[ID, B] {
	var out []*Frame[ID, B]
	f.Walk(func(frame, _ *Frame[ID, B]) bool {
		if frame.Outcome.Failed() {
			out = append(out, frame)
		}
		return true
	})
	return out
}

// Count returns the number of frames in a forest.
func Count[ID comparable, B any](frames []Frame[ID, B]) int {
	n := 0
	for i := range frames {
		n += frames[i].Count()
	}
	return n
}
