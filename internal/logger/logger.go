// Package logger is the leveled process logger of the catalog CLI.
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type LoggerService interface {
	Info(msg string)
	Error(msg string, err error)
	Warn(msg string)
	Success(msg string)
	Close() error
}

type service struct {
	logger *log.Logger
	file   *os.File
	color  bool
}

// New logs to the file at path, echoed to stderr when debug is set
func New(path string, debug bool) (LoggerService, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	var out io.Writer = f
	if debug {
		out = io.MultiWriter(os.Stderr, f)
	}

	return &service{
		logger: log.New(out, "", log.LstdFlags),
		file:   f,
	}, nil
}

// NewStderr logs to stderr, colored when it is a terminal
func NewStderr() LoggerService {
	return &service{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		color:  term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// NewWriter logs to w without color
func NewWriter(w io.Writer) LoggerService {
	return &service{logger: log.New(w, "", 0)}
}

func (s *service) Info(msg string) {
	s.write("INFO", color.FgCyan, msg)
}

func (s *service) Error(msg string, err error) {
	msg = strings.TrimSpace(msg)
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			msg = msg + ": " + err.Error()
		}
	}
	s.write("ERROR", color.FgRed, msg)
}

func (s *service) Warn(msg string) {
	s.write("WARN", color.FgYellow, msg)
}

func (s *service) Success(msg string) {
	s.write("OK", color.FgGreen, msg)
}

func (s *service) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *service) write(level string, attr color.Attribute, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	tag := "[" + level + "]"
	if s.color {
		c := color.New(attr)
		c.EnableColor()
		tag = c.Sprint(tag)
	}
	s.logger.Printf("%s %s", tag, msg)
}
