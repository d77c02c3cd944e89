package calltree

import "slices"

// builder accumulates one open invocation until its outcome line arrives.
type builder[ID comparable, B any] struct {
	programID    ID
	depth        uint8
	line         int
	programLogs  []string
	dataLogs     []B
	returnData   *B
	computeUnits *ComputeUnits
	children     []Frame[ID, B]
	rawLogs      []string
}

func newBuilder[ID comparable, B any](invoke Entry[ID, B], line int) *builder[ID, B] {
	// Lists start empty, not nil, so frames always encode them as arrays.
	return &builder[ID, B]{
		programID:   invoke.ProgramID,
		depth:       invoke.Depth,
		line:        line,
		programLogs: []string{},
		dataLogs:    []B{},
		children:    []Frame[ID, B]{},
		rawLogs:     []string{invoke.Raw},
	}
}

func (b *builder[ID, B]) pushProgramLog(msg, raw string) {
	b.programLogs = append(b.programLogs, msg)
	b.rawLogs = append(b.rawLogs, raw)
}

func (b *builder[ID, B]) pushDataLog(data B, raw string) {
	b.dataLogs = append(b.dataLogs, data)
	b.rawLogs = append(b.rawLogs, raw)
}

func (b *builder[ID, B]) pushRaw(raw string) {
	b.rawLogs = append(b.rawLogs, raw)
}

// Last write wins for return data and compute units.
func (b *builder[ID, B]) setReturnData(data B, raw string) {
	b.returnData = &data
	b.rawLogs = append(b.rawLogs, raw)
}

func (b *builder[ID, B]) setComputeUnits(units ComputeUnits, raw string) {
	b.computeUnits = &units
	b.rawLogs = append(b.rawLogs, raw)
}

// adopt attaches a finalized child and splices its span into this frame's
// raw lines, keeping them in input order.
func (b *builder[ID, B]) adopt(child Frame[ID, B]) {
	b.children = append(b.children, child)
	b.rawLogs = append(b.rawLogs, child.RawLogs...)
}

func (b *builder[ID, B]) finalize(outcome Outcome, raw string) Frame[ID, B] {
	b.rawLogs = append(b.rawLogs, raw)
	return Frame[ID, B]{
		ProgramID:    b.programID,
		Depth:        b.depth,
		Outcome:      outcome,
		ProgramLogs:  slices.Clip(b.programLogs),
		DataLogs:     slices.Clip(b.dataLogs),
		ReturnData:   b.returnData,
		ComputeUnits: b.computeUnits,
		Children:     slices.Clip(b.children),
		RawLogs:      slices.Clip(b.rawLogs),
	}
}
