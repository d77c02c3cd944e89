package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/soltrace/calltree"
)

const userProgram = "D4SghRBTyA7HQSEH89uT9LgCs1TTtrPptwuqm1sLSsns"

func TestReadTextSkipsEmptyLinesOnly(t *testing.T) {
	in := "Program log: a\r\n\n\r\n   \n  Program log: b  \n"
	got, err := ReadText(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"Program log: a", "   ", "  Program log: b  "}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
}

func TestReadTextKeepsWhitespaceInRawSpan(t *testing.T) {
	in := strings.Join([]string{
		"Program " + userProgram + " invoke [1]",
		"\t ",
		"Program " + userProgram + " success",
	}, "\n")
	raws, err := ReadText(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frames, err := calltree.FromLines(raws)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff(strings.Split(in, "\n"), frames[0].RawLogs); diff != "" {
		t.Fatalf("raw span (-want +got):\n%s", diff)
	}
}

func TestReadTextLongLine(t *testing.T) {
	long := "Program data: " + strings.Repeat("A", 200*1024)
	got, err := ReadText(strings.NewReader(long + "\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0] != long {
		t.Fatalf("long line not preserved")
	}
}

func TestReadRPCShapes(t *testing.T) {
	want := []string{"Program log: a", "Program log: b"}
	cases := map[string]string{
		"array":       `["Program log: a", "Program log: b"]`,
		"rpc":         `{"jsonrpc":"2.0","id":1,"result":{"slot":1,"meta":{"err":null,"logMessages":["Program log: a","Program log: b"]}}}`,
		"transaction": `{"meta":{"logMessages":["Program log: a","Program log: b"]}}`,
		"logs":        `{"logs":["Program log: a","Program log: b"]}`,
	}
	for name, body := range cases {
		got, err := ReadRPC(strings.NewReader(body))
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: lines (-want +got):\n%s", name, diff)
		}
	}
}

func TestReadRPCErrors(t *testing.T) {
	if _, err := ReadRPC(strings.NewReader(`{"result":{"meta":{}}}`)); !errors.Is(err, ErrNoLogMessages) {
		t.Fatalf("expected ErrNoLogMessages, got %v", err)
	}
	if _, err := ReadRPC(strings.NewReader(`{"error":{"code":-32602,"message":"Invalid param"}}`)); err == nil || !strings.Contains(err.Error(), "Invalid param") {
		t.Fatalf("expected rpc error, got %v", err)
	}
	if _, err := ReadRPC(strings.NewReader(`["ok", 3]`)); err == nil {
		t.Fatalf("expected non-string entry error")
	}
	if _, err := ReadRPC(strings.NewReader(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ReadRPC(strings.NewReader(`"just a string"`)); err == nil {
		t.Fatalf("expected shape error")
	}
}

func TestReadUnknownFormat(t *testing.T) {
	if _, err := Read(strings.NewReader(""), "csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
