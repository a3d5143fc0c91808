package logic

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type scriptedReader struct {
	lines []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestAskSessionLocal(t *testing.T) {
	var out bytes.Buffer
	session, err := AskSession(&scriptedReader{lines: []string{"1", "  /images  "}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Mode != ModeLocal || session.Source != "/images" || session.OutputFolder != "" {
		t.Fatalf("unexpected session %+v", session)
	}
	if !strings.Contains(out.String(), "Type your local folder path to recognize...") {
		t.Fatalf("missing folder prompt:\n%s", out.String())
	}
}

func TestAskSessionBlob(t *testing.T) {
	var out bytes.Buffer
	session, err := AskSession(&scriptedReader{lines: []string{"2", "s3://forms/2021", "/results"}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Mode != ModeBlob || session.Source != "s3://forms/2021" || session.OutputFolder != "/results" {
		t.Fatalf("unexpected session %+v", session)
	}
	if !strings.Contains(out.String(), "Type your local folder path to save results...") {
		t.Fatalf("missing output prompt:\n%s", out.String())
	}
}

func TestAskSessionUnexpectedMode(t *testing.T) {
	var out bytes.Buffer
	_, err := AskSession(&scriptedReader{lines: []string{"3"}}, &out)
	if !errors.Is(err, ErrUnexpectedInput) {
		t.Fatalf("expected ErrUnexpectedInput, got %v", err)
	}
}

func TestAskSessionEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := AskSession(&scriptedReader{lines: []string{"2", "https://x"}}, &out)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
