package mdsp

import (
	"fmt"
	"io"
	"log"
	"os"
)

type mdspLogger struct {
	infologger  *log.Logger
	errorlogger *log.Logger
}

func newLogger() *mdspLogger {
	return newLoggerTo(os.Stdout)
}

func newLoggerTo(w io.Writer) *mdspLogger {
	return &mdspLogger{
		infologger:  log.New(w, "INFO: ", log.Ldate|log.Ltime),
		errorlogger: log.New(w, "ERR: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

func (l *mdspLogger) info(msg string, extra ...interface{}) {
	l.infologger.Print(msg, " ", fmt.Sprintln(extra...))
}

func (l *mdspLogger) error(msg string, extra ...interface{}) {
	l.errorlogger.Output(2, fmt.Sprint(msg, " ", fmt.Sprintln(extra...)))
}

func (l *mdspLogger) fatal(msg string, extra ...interface{}) {
	l.errorlogger.Output(2, fmt.Sprint(msg, " ", fmt.Sprintln(extra...)))
	os.Exit(1)
}
