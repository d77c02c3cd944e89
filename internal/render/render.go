// Package render writes classified lines and call trees as JSON, YAML or
// an indented text outline.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/soltrace/calltree"
	"github.com/danmuck/soltrace/codec"
	"github.com/danmuck/soltrace/internal/config"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("render: unknown output format")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Write encodes v as JSON or YAML. The tree format is only available
// through Frames.
func Write(w io.Writer, v any, format string) error {
	switch format {
	case config.OutputJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Frames writes a forest in any output format, including the text tree.
func Frames[ID comparable, B any](w io.Writer, frames []calltree.Frame[ID, B], format string) error {
	if frames == nil {
		frames = []calltree.Frame[ID, B]{}
	}
	if format != config.OutputTree {
		return Write(w, frames, format)
	}
	bw := bufio.NewWriter(w)
	for i := range frames {
		writeFrame(bw, &frames[i], 0)
	}
	return bw.Flush()
}

func writeFrame[ID comparable, B any](w *bufio.Writer, f *calltree.Frame[ID, B], level int) {
	indent := strings.Repeat("  ", level)
	fmt.Fprintf(w, "%s%v [%d] %s", indent, f.ProgramID, f.Depth, f.Outcome.Status)
	if f.Outcome.Failed() {
		fmt.Fprintf(w, " (%s)", f.Outcome.Err)
	}
	if cu := f.ComputeUnits; cu != nil {
		fmt.Fprintf(w, " cu=%d/%d", cu.Consumed, cu.Budget)
	}
	w.WriteByte('\n')

	inner := indent + "  "
	for _, msg := range f.ProgramLogs {
		fmt.Fprintf(w, "%slog: %s\n", inner, msg)
	}
	for _, data := range f.DataLogs {
		fmt.Fprintf(w, "%sdata: %s\n", inner, payloadText(data))
	}
	if f.ReturnData != nil {
		fmt.Fprintf(w, "%sreturn: %s\n", inner, payloadText(*f.ReturnData))
	}
	for i := range f.Children {
		writeFrame(w, &f.Children[i], level+1)
	}
}

func payloadText(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case codec.Payload:
		return p.String()
	case []byte:
		return codec.EncodePayload(p)
	default:
		return fmt.Sprint(p)
	}
}
