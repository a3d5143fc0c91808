package logic

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ModeLocal = "1"
	ModeBlob  = "2"
)

var ErrUnexpectedInput = errors.New("unexpected input")

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
}

type Session struct {
	Mode         string
	Source       string
	OutputFolder string
}

// AskSession walks the user through mode, source and, for blob mode, the result folder.
func AskSession(in LineReader, out io.Writer) (Session, error) {
	var session Session

	mode, err := ask(in, out, "Recognize (1)local file or (2)blob image ? (Type '1' or '2')")
	if err != nil {
		return session, err
	}
	session.Mode = mode

	switch mode {
	case ModeLocal:
		session.Source, err = ask(in, out, "Type your local folder path to recognize...")
	case ModeBlob:
		session.Source, err = ask(in, out, "Type your blob container url to recognize...")
		if err == nil {
			session.OutputFolder, err = ask(in, out, "Type your local folder path to save results...")
		}
	default:
		return session, ErrUnexpectedInput
	}

	return session, err
}

// WaitForClose blocks until the user acknowledges, or stdin ends.
func WaitForClose(in LineReader, out io.Writer) {
	_, _ = ask(in, out, "Type any key to close window...")
}

func ask(in LineReader, out io.Writer, question string) (string, error) {
	fmt.Fprintln(out, question)
	line, err := in.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
