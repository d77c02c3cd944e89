// Package source reads program log lines from text or JSON input.
//
// Ownership boundary:
// - input framing (one line per entry, or a JSON log list)
// - RPC response unwrapping
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/soltrace/internal/config"
	"github.com/valyala/fastjson"
)

const maxLineBytes = 1 << 20

var (
	ErrUnknownFormat = errors.New("source: unknown input format")
	ErrNoLogMessages = errors.New("source: no log messages found")
)

// Read dispatches on format (config.InputText or config.InputRPC).
func Read(r io.Reader, format string) ([]string, error) {
	switch format {
	case config.InputText, "":
		return ReadText(r)
	case config.InputRPC:
		return ReadRPC(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadText returns one entry per non-empty line. Line endings are removed;
// other whitespace is kept, so a whitespace-only line inside an invocation
// stays part of its raw span.
func ReadText(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("source: read text: %w", err)
	}
	return out, nil
}

// ReadRPC accepts a JSON array of strings, a getTransaction response
// (result.meta.logMessages) or a bare transaction (meta.logMessages).
func ReadRPC(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read rpc: %w", err)
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("source: parse rpc json: %w", err)
	}
	return LogMessages(v)
}

// LogMessages extracts the log list from a parsed JSON value.
func LogMessages(v *fastjson.Value) ([]string, error) {
	var list []*fastjson.Value
	switch v.Type() {
	case fastjson.TypeArray:
		list, _ = v.Array()
	case fastjson.TypeObject:
		if errObj := v.Get("error"); errObj != nil && errObj.Type() != fastjson.TypeNull {
			return nil, fmt.Errorf("source: rpc error: %s", errObj.GetStringBytes("message"))
		}
		switch {
		case v.Exists("result", "meta", "logMessages"):
			list = v.GetArray("result", "meta", "logMessages")
		case v.Exists("meta", "logMessages"):
			list = v.GetArray("meta", "logMessages")
		case v.Exists("logMessages"):
			list = v.GetArray("logMessages")
		case v.Exists("logs"):
			list = v.GetArray("logs")
		default:
			return nil, ErrNoLogMessages
		}
		if list == nil {
			return nil, ErrNoLogMessages
		}
	default:
		return nil, fmt.Errorf("source: expected json array or object, got %s", v.Type())
	}

	out := make([]string, 0, len(list))
	for i, item := range list {
		b, err := item.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("source: log message %d: %w", i, err)
		}
		out = append(out, string(b))
	}
	return out, nil
}
