package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// manager is shared by every tagged Logger.
type manager struct {
	view    io.Writer
	dev     bool
	logFile *os.File
	logChan chan Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Logger struct {
	tag string
	m   *manager
}

var (
	logManager *manager
	once       sync.Once
)

// InitLogger sets up the shared log sink. view receives coloured lines in dev
// mode (the tview debug console); logPath, when set, is a directory that gets a
// timestamped log file.
func InitLogger(dev bool, logPath string, view io.Writer) error {
	var initErr error
	once.Do(func() {
		m := &manager{
			view:    view,
			dev:     dev,
			logChan: make(chan Message, 100),
			done:    make(chan struct{}),
		}
		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("ragchat_log_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			m.logFile = file
		}

		go m.processLogs()
		logManager = m
	})
	return initErr
}

// NewLogger returns a logger that prefixes every line with tag. Loggers
// created before InitLogger discard everything.
func NewLogger(tag string) *Logger {
	return &Logger{tag: tag, m: logManager}
}

func (m *manager) processLogs() {
	defer close(m.done)
	for msg := range m.logChan {
		if m.logFile != nil {
			m.logFile.WriteString(format(msg))
		}
	}
}

func format(msg Message) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s [%s] %s: %s\n", timestamp, msg.Tag, msg.LogTypes.String(), msg.Message)
}

func (l *Logger) log(logTypes Types, message string) {
	m := l.m
	if m == nil {
		return
	}

	if m.dev {
		if m.view != nil {
			var colour string
			switch logTypes {
			case Info:
				colour = "green"
			case Warn:
				colour = "yellow"
			default:
				colour = "red"
			}
			fmt.Fprintf(m.view, "[%s]DEBUG (%s): %s[-]\n", colour, l.tag, message)
		} else {
			log.Printf("[%s] %s: %s", l.tag, logTypes.String(), message)
		}
	}

	if m.logFile == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	m.logChan <- Message{
		Timestamp: time.Now(),
		Tag:       l.tag,
		Message:   message,
		LogTypes:  logTypes,
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, fmt.Sprint(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.log(Info, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, fmt.Sprint(v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.log(Warn, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, fmt.Sprint(v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.log(Error, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, fmt.Sprint(v...))
	l.Close()
	os.Exit(1)
}

// Close flushes pending lines to the log file and closes it. Safe to call
// more than once.
func (l *Logger) Close() {
	m := l.m
	if m == nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.logChan)
	m.mu.Unlock()

	<-m.done
	if m.logFile != nil {
		m.logFile.Close()
	}
}

func (t Types) String() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
