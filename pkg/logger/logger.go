package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Category represents a log category
type Category string

const (
	CategoryAPI       Category = "api"
	CategoryDB        Category = "db"
	CategoryStorage   Category = "storage"
	CategoryResult    Category = "result"
	CategoryExport    Category = "export"
	CategoryScheduler Category = "scheduler"
	CategoryStartup   Category = "startup"
)

// AllCategories lists every category that owns a log file.
var AllCategories = []Category{
	CategoryAPI,
	CategoryDB,
	CategoryStorage,
	CategoryResult,
	CategoryExport,
	CategoryScheduler,
	CategoryStartup,
}

// Level represents log level
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a config string into a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[lvl]; ok {
		return lvl
	}
	return LevelInfo
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes one JSON file per category per day and optionally mirrors to the console.
type Logger struct {
	mu       sync.Mutex
	logDir   string
	writers  map[Category]*os.File
	console  bool
	minLevel Level
	out      io.Writer
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(logDir string, console bool) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(logDir, console)
	})
	return err
}

// NewLogger creates a new logger
func NewLogger(logDir string, console bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Logger{
		logDir:   logDir,
		writers:  make(map[Category]*os.File),
		console:  console,
		minLevel: LevelDebug,
		out:      os.Stdout,
	}, nil
}

// SetMinLevel drops entries below lvl.
func (l *Logger) SetMinLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = lvl
}

// SetConsoleOutput redirects console mirroring, e.g. to stderr for CLI tools
// that print results on stdout.
func (l *Logger) SetConsoleOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func logFileName(category Category, day time.Time) string {
	return fmt.Sprintf("%s_%s.log", category, day.Format("2006-01-02"))
}

// getWriter returns the file for today's category log, rotating at midnight.
// Caller must hold l.mu.
func (l *Logger) getWriter(category Category) (io.Writer, error) {
	filename := logFileName(category, time.Now())

	if writer, exists := l.writers[category]; exists {
		if filepath.Base(writer.Name()) == filename {
			return writer, nil
		}
		writer.Close()
	}

	file, err := os.OpenFile(filepath.Join(l.logDir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.writers[category] = file
	return file, nil
}

// Log writes a log entry
func (l *Logger) Log(entry LogEntry) {
	entry.Timestamp = time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if levelRank[entry.Level] < levelRank[l.minLevel] {
		return
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling log entry: %v\n", err)
		return
	}

	writer, err := l.getWriter(entry.Category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting log writer: %v\n", err)
	} else {
		fmt.Fprintln(writer, string(jsonData))
	}

	if l.console {
		l.printToConsole(entry)
	}
}

var levelColors = map[Level]string{
	LevelDebug: "\033[36m",
	LevelInfo:  "\033[32m",
	LevelWarn:  "\033[33m",
	LevelError: "\033[31m",
}

// printToConsole prints formatted log to console. Caller must hold l.mu.
func (l *Logger) printToConsole(entry LogEntry) {
	const reset = "\033[0m"

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]%s [%s] [%s] %s: %s",
		levelColors[entry.Level], entry.Level, reset,
		entry.Timestamp.Format("15:04:05.000"),
		entry.Category, entry.Action, entry.Message)

	if entry.RequestID != "" {
		fmt.Fprintf(&b, " (request: %s)", entry.RequestID)
	}
	if entry.Duration != "" {
		fmt.Fprintf(&b, " (duration: %s)", entry.Duration)
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, " ERROR: %s", entry.Error)
	}
	b.WriteByte('\n')

	if len(entry.Data) > 0 {
		dataJSON, _ := json.MarshalIndent(entry.Data, "    ", "  ")
		fmt.Fprintf(&b, "    Data: %s\n", dataJSON)
	}

	io.WriteString(l.out, b.String())
}

// Close closes all file writers
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		writer.Close()
	}
	l.writers = make(map[Category]*os.File)
}

// Default returns the default logger
func Default() *Logger {
	if defaultLogger == nil {
		Init("logs", true)
	}
	return defaultLogger
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// API logs API request/response events
func API(action, message string, data map[string]interface{}) {
	Info(CategoryAPI, action, message, data)
}

// APIRequest logs a finished HTTP request with its id and duration.
func APIRequest(requestID string, duration time.Duration, data map[string]interface{}) {
	Default().Log(LogEntry{
		Level:     LevelInfo,
		Category:  CategoryAPI,
		Action:    "request",
		Message:   "Request completed",
		RequestID: requestID,
		Duration:  duration.String(),
		Data:      data,
	})
}

// DB logs database operations
func DB(action, message string, data map[string]interface{}) {
	Debug(CategoryDB, action, message, data)
}

// DBError logs database errors
func DBError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryDB, action, message, err, data)
}

// Storage logs object storage operations
func Storage(action, message string, data map[string]interface{}) {
	Debug(CategoryStorage, action, message, data)
}

// StorageError logs object storage errors
func StorageError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryStorage, action, message, err, data)
}

// Result logs latest-result lookups
func Result(action, message string, data map[string]interface{}) {
	Info(CategoryResult, action, message, data)
}

// ResultError logs latest-result failures
func ResultError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryResult, action, message, err, data)
}

// Export logs CSV export events
func Export(action, message string, data map[string]interface{}) {
	Info(CategoryExport, action, message, data)
}

// ExportError logs CSV export failures
func ExportError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryExport, action, message, err, data)
}

// Scheduler logs scheduler events
func Scheduler(action, message string, data map[string]interface{}) {
	Info(CategoryScheduler, action, message, data)
}

// SchedulerWarn logs scheduler warnings
func SchedulerWarn(action, message string, data map[string]interface{}) {
	Warn(CategoryScheduler, action, message, data)
}

// SchedulerError logs scheduler errors
func SchedulerError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryScheduler, action, message, err, data)
}

// Startup logs startup/initialization events
func Startup(action, message string, data map[string]interface{}) {
	Info(CategoryStartup, action, message, data)
}

// StartupError logs startup errors
func StartupError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryStartup, action, message, err, data)
}

// StartupWarn logs startup warnings
func StartupWarn(action, message string, data map[string]interface{}) {
	Warn(CategoryStartup, action, message, data)
}

// Info logs info level message
func Info(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelInfo, Category: category, Action: action, Message: message, Data: data})
}

// Error logs error level message
func Error(category Category, action, message string, err error, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelError, Category: category, Action: action, Message: message, Error: errString(err), Data: data})
}

// Debug logs debug level message
func Debug(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelDebug, Category: category, Action: action, Message: message, Data: data})
}

// Warn logs warning level message
func Warn(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelWarn, Category: category, Action: action, Message: message, Data: data})
}

// ReadLogsOptions options for reading logs
type ReadLogsOptions struct {
	Category Category // empty = all
	Level    Level    // empty = all
	Lines    int      // default 100, max 1000
	Search   string   // case-insensitive match on message, action and error
}

// ReadLogs reads log entries from files
func ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	return Default().ReadLogs(opts)
}

// ReadLogs reads today's entries from the logger's directory, newest first.
func (l *Logger) ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	if opts.Lines <= 0 {
		opts.Lines = 100
	}
	if opts.Lines > 1000 {
		opts.Lines = 1000
	}

	categories := AllCategories
	if opts.Category != "" {
		categories = []Category{opts.Category}
	}

	search := strings.ToLower(opts.Search)
	today := time.Now()

	var entries []LogEntry
	for _, cat := range categories {
		f, err := os.Open(filepath.Join(l.logDir, logFileName(cat, today)))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var entry LogEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}

			if opts.Level != "" && entry.Level != opts.Level {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(entry.Message), search) &&
				!strings.Contains(strings.ToLower(entry.Action), search) &&
				!strings.Contains(strings.ToLower(entry.Error), search) {
				continue
			}

			entries = append(entries, entry)
		}
		f.Close()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > opts.Lines {
		entries = entries[:opts.Lines]
	}

	return entries, nil
}

// GetLogDir returns the log directory path
func GetLogDir() string {
	return Default().logDir
}

// ListLogFiles returns list of log files
func ListLogFiles() ([]string, error) {
	return Default().ListLogFiles()
}

// ListLogFiles returns list of log files in the log directory
func (l *Logger) ListLogFiles() ([]string, error) {
	var files []string

	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// PruneLogs removes log files last modified before now-retention and
// returns how many were deleted. Files currently open are skipped.
func (l *Logger) PruneLogs(retention time.Duration) (int, error) {
	files, err := l.ListLogFiles()
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	open := make(map[string]bool, len(l.writers))
	for _, w := range l.writers {
		open[filepath.Base(w.Name())] = true
	}
	l.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, name := range files {
		if open[name] {
			continue
		}
		path := filepath.Join(l.logDir, name)
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
