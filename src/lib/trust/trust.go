package trust

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
	fatalMask MaskLevel = 0x80
)

var (
	mu    sync.Mutex
	level = fatalMask | StatsMask | ErrorMask | WarnMask | InfoMask
	out   io.Writer = os.Stdout
	halt            = os.Exit
)

// SetLevel lets you set an error mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed.  It returns the
// previous mask.
func SetLevel(mask MaskLevel) MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	if mask&0x1f == 0 {
		fmt.Fprintf(out, " WARN: trust.SetLevel is turning off log messages\n")
	}
	r := level & 0x1f
	level = (mask & 0x1f) | fatalMask
	return r
}

func Level() MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// ParseLevel turns a name like "debug" into the mask that prints that level
// and everything more severe.
func ParseLevel(s string) (MaskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return Nothing, nil
	case "error":
		return ErrorMask, nil
	case "warn":
		return ErrorMask | WarnMask, nil
	case "info", "":
		return ErrorMask | WarnMask | InfoMask | StatsMask, nil
	case "debug":
		return ErrorMask | WarnMask | InfoMask | StatsMask | DebugMask, nil
	}
	return Nothing, fmt.Errorf("trust: unknown log level %q", s)
}

func LevelToString() string {
	l := Level()
	names := []string{}
	for _, n := range []struct {
		m    MaskLevel
		name string
	}{{ErrorMask, "error"}, {WarnMask, "warn"}, {InfoMask, "info"},
		{DebugMask, "debug"}, {StatsMask, "stats"}} {
		if l&n.m != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, " ")
}

// SetOutput redirects all log messages to w, usually the early console.  It
// returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// SetHalt replaces what Fatalf does after printing.  At boot there is nothing
// to exit to, so the platform installs a spin or reset here.
func SetHalt(fn func(exitCode int)) {
	mu.Lock()
	defer mu.Unlock()
	halt = fn
}

func logf(l MaskLevel, format string, params ...interface{}) {
	mu.Lock()
	if level&l == 0 {
		mu.Unlock()
		return
	}
	defer mu.Unlock()
	start := 0
	prefix := ""
	switch {
	case l&fatalMask > 0:
		prefix = "FATAL:"
	case l&ErrorMask > 0:
		prefix = "ERROR:"
	case l&WarnMask > 0:
		prefix = " WARN:"
	case l&InfoMask > 0:
		prefix = " INFO:"
	case l&DebugMask > 0:
		prefix = "DEBUG:"
	case l&StatsMask > 0:
		s, ok := params[0].(string)
		if !ok {
			s = "unknown"
		}
		prefix = fmt.Sprintf("STATS[%s]:", s)
		start = 1
	}
	if len(format) == 0 {
		format = "\n"
	} else if format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Fprint(out, prefix)
	fmt.Fprintf(out, format, params[start:]...)
}

//Fatalf prints the given log message (format + params) and then calls the
//halt function with the exitCode provided.  Fatalf is not maskable.
func Fatalf(exitCode int, format string, params ...interface{}) {
	logf(fatalMask, format, params...)
	mu.Lock()
	h := halt
	mu.Unlock()
	h(exitCode)
}

//Errorf prints the given log message (format + params) using the ErrorMask level.
func Errorf(format string, params ...interface{}) {
	logf(ErrorMask, format, params...)
}

//Warnf prints the given log message (format + params) using the WarnMask level.
func Warnf(format string, params ...interface{}) {
	logf(WarnMask, format, params...)
}

//Infof prints the given log message (format + params) using the InfoMask level.
func Infof(format string, params ...interface{}) {
	logf(InfoMask, format, params...)
}

//Debugf prints the given log message (format + params) using the DebugMask level.
func Debugf(format string, params ...interface{}) {
	logf(DebugMask, format, params...)
}

//Statsf prints the given log message (format + params) using the StatsMask level and
//takes an extra parameter that will be visible in the log message as the category
//of stats that is reported.
func Statsf(category string, format string, params ...interface{}) {
	logf(StatsMask, format, append([]interface{}{category}, params...)...)
}
