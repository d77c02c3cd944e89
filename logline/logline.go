// Package logline classifies single lines of a program execution log.
//
// Ownership boundary:
// - line grammar and its priority order
// - structural program id check
//
// Classification never fails. Lines that do not match the grammar, or
// match it ambiguously, come back as KindOther.
package logline

import (
	"strconv"
	"strings"
)

const (
	prefixLog    = "Program log: "
	prefixData   = "Program data: "
	prefixReturn = "Program return: "
	prefixStatus = "Program "

	suffixSuccess  = "success"
	prefixFailed   = "failed: "
	prefixInvoke   = "invoke ["
	prefixConsumed = "consumed "
	infixOf        = " of "
	suffixUnits    = " compute units"

	minProgramIDLen = 32
	maxProgramIDLen = 44
)

// Kind discriminates the eight line shapes.
type Kind uint8

const (
	KindOther Kind = iota
	KindInvoke
	KindSuccess
	KindFailed
	KindLog
	KindData
	KindReturn
	KindComputeUnits
)

var kindNames = [...]string{
	KindOther:        "other",
	KindInvoke:       "invoke",
	KindSuccess:      "success",
	KindFailed:       "failed",
	KindLog:          "log",
	KindData:         "data",
	KindReturn:       "return",
	KindComputeUnits: "compute_units",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindOther,
		KindInvoke,
		KindSuccess,
		KindFailed,
		KindLog,
		KindData,
		KindReturn,
		KindComputeUnits,
	}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one classified log line. Which fields carry data depends on Kind:
//
//	Invoke        ProgramID, Depth
//	Success       ProgramID
//	Failed        ProgramID, Err
//	Log           Message
//	Data          Data
//	Return        ProgramID, Data
//	ComputeUnits  ProgramID, Consumed, Budget
//
// Raw is always the original line, untrimmed. Every other string field
// is a substring of Raw.
type Line struct {
	Kind      Kind   `json:"kind" yaml:"kind"`
	Raw       string `json:"raw" yaml:"raw"`
	ProgramID string `json:"program_id,omitempty" yaml:"program_id,omitempty"`
	Depth     uint8  `json:"depth,omitempty" yaml:"depth,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Data      string `json:"data,omitempty" yaml:"data,omitempty"`
	Err       string `json:"err,omitempty" yaml:"err,omitempty"`
	Consumed  uint64 `json:"consumed,omitempty" yaml:"consumed,omitempty"`
	Budget    uint64 `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// Classify assigns raw to exactly one Kind.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(line, prefixLog); ok {
		return Line{Kind: KindLog, Raw: raw, Message: rest}
	}
	if rest, ok := strings.CutPrefix(line, prefixData); ok {
		return Line{Kind: KindData, Raw: raw, Data: rest}
	}
	if rest, ok := strings.CutPrefix(line, prefixReturn); ok {
		id, data, ok := strings.Cut(rest, " ")
		if !ok {
			return other(raw)
		}
		return Line{Kind: KindReturn, Raw: raw, ProgramID: id, Data: data}
	}
	if rest, ok := strings.CutPrefix(line, prefixStatus); ok {
		return classifyStatus(raw, rest)
	}
	return other(raw)
}

// ClassifyAll classifies raws in order.
func ClassifyAll(raws []string) []Line {
	out := make([]Line, len(raws))
	for i, raw := range raws {
		out[i] = Classify(raw)
	}
	return out
}

func classifyStatus(raw, rest string) Line {
	id, suffix, ok := strings.Cut(rest, " ")
	if !ok || !IsProgramID(id) {
		return other(raw)
	}

	if depth, ok := cutEnclosed(suffix, prefixInvoke, "]"); ok {
		n, err := parseUint(depth, 8)
		if err != nil {
			return other(raw)
		}
		return Line{Kind: KindInvoke, Raw: raw, ProgramID: id, Depth: uint8(n)}
	}

	if suffix == suffixSuccess {
		return Line{Kind: KindSuccess, Raw: raw, ProgramID: id}
	}

	if reason, ok := strings.CutPrefix(suffix, prefixFailed); ok {
		return Line{Kind: KindFailed, Raw: raw, ProgramID: id, Err: reason}
	}

	if counts, ok := strings.CutPrefix(suffix, prefixConsumed); ok {
		consumed, ofBudget, ok := strings.Cut(counts, infixOf)
		if !ok {
			return other(raw)
		}
		budget, ok := strings.CutSuffix(ofBudget, suffixUnits)
		if !ok {
			return other(raw)
		}
		c, err := parseUint(consumed, 64)
		if err != nil {
			return other(raw)
		}
		b, err := parseUint(budget, 64)
		if err != nil {
			return other(raw)
		}
		return Line{Kind: KindComputeUnits, Raw: raw, ProgramID: id, Consumed: c, Budget: b}
	}

	return other(raw)
}

// IsProgramID reports whether s looks like a base58 program id: 32 to 44
// characters, all from the base58 alphabet. It does not decode s.
func IsProgramID(s string) bool {
	if len(s) < minProgramIDLen || len(s) > maxProgramIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isBase58(s[i]) {
			return false
		}
	}
	return true
}

func isBase58(b byte) bool {
	switch {
	case b >= '1' && b <= '9':
		return true
	case b >= 'A' && b <= 'H', b >= 'J' && b <= 'N', b >= 'P' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'k', b >= 'm' && b <= 'z':
		return true
	default:
		return false
	}
}

// parseUint accepts decimal digits with an optional leading '+'.
func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bits)
}

func cutEnclosed(s, prefix, suffix string) (string, bool) {
	inner, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(inner, suffix)
}

func other(raw string) Line {
	return Line{Kind: KindOther, Raw: raw}
}
