package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Input reads a payload from the file named by its flag, or from stdin when
// the flag is unset.
type Input struct {
	fileFlagValue string
	usage         string

	// Stdin defaults to os.Stdin.
	Stdin *os.File
}

func (in *Input) Flag() *cli.StringFlag {
	usage := in.usage
	if usage == "" {
		usage = "path to input file (reads from stdin if not provided)"
	}
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       usage,
		Destination: &in.fileFlagValue,
	}
}

// Open returns the input stream. The caller closes it.
func (in *Input) Open() (io.ReadCloser, error) {
	if in.fileFlagValue != "" {
		f, err := os.Open(in.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	stdin := in.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	if term.IsTerminal(int(stdin.Fd())) {
		return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe input")
	}
	return io.NopCloser(stdin), nil
}

// ReadAll returns the whole input.
func (in *Input) ReadAll() ([]byte, error) {
	r, err := in.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// FileReader decodes a JSON document of type T from an Input.
type FileReader[T any] struct {
	Input
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	fr.usage = "path to JSON file (reads from stdin if not provided)"
	return fr.Input.Flag()
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	r, err := fr.Open()
	if err != nil {
		return input, err
	}
	defer func() { _ = r.Close() }()

	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
