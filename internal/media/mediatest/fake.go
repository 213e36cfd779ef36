// Package mediatest provides an in-process stand-in for ffmpeg and ffprobe
// so media pipelines can be tested without the binaries.
package mediatest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

const header = "FAKEMEDIA"

// WriteFile creates a file the fake ffprobe reports with the given duration.
func WriteFile(path string, seconds float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%s duration=%f\n", header, seconds)), 0o644)
}

// WriteCorrupt creates a file the fake ffprobe refuses to read.
func WriteCorrupt(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("not media"), 0o644)
}

// Duration reads back the duration stored by WriteFile.
func Duration(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, header+" duration=") {
		return 0, errors.New("invalid data found when processing input")
	}
	return strconv.ParseFloat(strings.TrimPrefix(line, header+" duration="), 64)
}

// Executor emulates ffprobe and ffmpeg. ffmpeg writes a fake media file to
// its output whose duration is the -t value when given, otherwise the sum
// of its inputs (concat demuxer lists included).
type Executor struct {
	// Fail, when set, is consulted before every command.
	Fail func(name string, args []string) error

	mu    sync.Mutex
	calls [][]string
}

func (e *Executor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string{name}, args...))
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.Fail != nil {
		if err := e.Fail(name, args); err != nil {
			return "", &executor.CommandError{Name: name, Err: err}
		}
	}

	switch filepath.Base(name) {
	case "ffprobe":
		return probe(args)
	case "ffmpeg":
		return "", encode(args)
	default:
		return "", &executor.CommandError{Name: name, Err: errors.New("executable file not found")}
	}
}

func (e *Executor) ExecuteInDir(ctx context.Context, _ string, name string, args ...string) (string, error) {
	return e.Execute(ctx, name, args...)
}

// Calls returns the recorded argument lists of the named command.
func (e *Executor) Calls(name string) [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out [][]string
	for _, c := range e.calls {
		if filepath.Base(c[0]) == name {
			out = append(out, c[1:])
		}
	}
	return out
}

func probe(args []string) (string, error) {
	if len(args) == 0 {
		return "", &executor.CommandError{Name: "ffprobe", Err: errors.New("no input")}
	}
	path := args[len(args)-1]
	d, err := Duration(path)
	if err != nil {
		return "", &executor.CommandError{Name: "ffprobe", Stderr: path + ": " + err.Error(), Err: errors.New("exit status 1")}
	}
	return fmt.Sprintf(`{"streams":[{"codec_type":"video","width":1920,"height":1080,"duration":"%f"},{"codec_type":"audio","duration":"%f"}],"format":{"duration":"%f"}}`, d, d, d), nil
}

func encode(args []string) error {
	var (
		inputs   []string
		duration = -1.0
		output   string
		concat   bool
	)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i":
			if i+1 < len(args) {
				inputs = append(inputs, args[i+1])
				i++
			}
		case "-t":
			if i+1 < len(args) {
				v, err := strconv.ParseFloat(args[i+1], 64)
				if err != nil {
					return &executor.CommandError{Name: "ffmpeg", Err: err}
				}
				duration = v
				i++
			}
		case "-f":
			if i+1 < len(args) && args[i+1] == "concat" {
				concat = true
			}
		default:
			if isMediaPath(args[i]) && (i == 0 || args[i-1] != "-i") {
				output = args[i]
			}
		}
	}
	if output == "" {
		return &executor.CommandError{Name: "ffmpeg", Err: errors.New("at least one output file must be specified")}
	}

	if duration < 0 {
		duration = 0
		for _, in := range inputs {
			paths := []string{in}
			if concat {
				listed, err := readConcatList(in)
				if err != nil {
					return &executor.CommandError{Name: "ffmpeg", Err: err}
				}
				paths = listed
			}
			for _, p := range paths {
				d, err := Duration(p)
				if err != nil {
					return &executor.CommandError{Name: "ffmpeg", Stderr: p + ": " + err.Error(), Err: errors.New("exit status 1")}
				}
				duration += d
			}
		}
	}

	if err := WriteFile(output, duration); err != nil {
		return &executor.CommandError{Name: "ffmpeg", Err: err}
	}
	return nil
}

func isMediaPath(s string) bool {
	switch strings.ToLower(filepath.Ext(s)) {
	case ".mp4", ".mp3", ".wav", ".m4a":
		return !strings.HasPrefix(s, "-")
	}
	return false
}

func readConcatList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "file ") {
			continue
		}
		p := strings.TrimPrefix(line, "file ")
		p = strings.Trim(p, "'")
		p = strings.ReplaceAll(p, `'\''`, `'`)
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		out = append(out, p)
	}
	return out, sc.Err()
}
