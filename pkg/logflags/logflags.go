package logflags

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var launcher = false
var proc = false

var logOut io.WriteCloser

func makeLogger(level logrus.Level, fields Fields) Logger {
	if lf := loggerFactory; lf != nil {
		return lf(level, fields, logOut)
	}
	logger := logrus.New()
	logger.Formatter = textFormatterInstance
	if logOut != nil {
		logger.Out = logOut
	} else {
		logger.Out = os.Stderr
	}
	logger.Level = level
	return &logrusLogger{logger.WithFields(logrus.Fields(fields))}
}

func makeFlaggableLogger(flag bool, fields Fields) Logger {
	level := logrus.ErrorLevel
	if flag {
		level = logrus.DebugLevel
	}
	return makeLogger(level, fields)
}

// Launcher returns true if the session lifecycle should be logged.
func Launcher() bool {
	return launcher
}

// LauncherLogger returns a logger for the session lifecycle.
func LauncherLogger() Logger {
	return makeFlaggableLogger(launcher, Fields{"layer": "launcher"})
}

// Proc returns true if per-child process management should be logged.
func Proc() bool {
	return proc
}

// ProcLogger returns a logger for per-child process management.
func ProcLogger() Logger {
	return makeFlaggableLogger(proc, Fields{"layer": "proc"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging flags based on the contents of logstr, a comma
// separated list of component names. If logDest is not empty logs will be
// redirected to the file descriptor or file path it specifies.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "devstack-log")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(io.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "launcher"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		// identifiers must be kept in sync with the 'devstack log' help text
		switch logcmd {
		case "launcher":
			launcher = true
		case "proc":
			proc = true
		}
	}
	return nil
}

// Close releases the file descriptor pointed to by the --log-dest flag, if any.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}

const logTimeFormat = "2006-01-02T15:04:05Z07:00"

type textFormatter struct {
}

var textFormatterInstance = &textFormatter{}

// Format renders a single log entry on one line: timestamp, level, sorted
// key=value fields, message.
func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}
	b.WriteString(entry.Time.Format(logTimeFormat))
	b.WriteByte(' ')
	b.WriteString(entry.Level.String())
	b.WriteByte(' ')
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		stringVal, ok := entry.Data[key].(string)
		if !ok {
			stringVal = fmt.Sprint(entry.Data[key])
		}
		if strings.ContainsAny(stringVal, " \t\n\"") {
			fmt.Fprintf(b, "%q", stringVal)
		} else {
			b.WriteString(stringVal)
		}
		if i != len(keys)-1 {
			b.WriteByte(',')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
