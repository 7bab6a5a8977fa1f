package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnvVar turns logging on when set to 1
const EnvVar = "TOMBOLA_DEBUG"

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

// Requested reports whether the environment asks for debug logging
func Requested() bool {
	return os.Getenv(EnvVar) == "1"
}

// Enable starts debug logging to ~/.config/go-tombola/debug.log
func Enable() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return EnableAt(filepath.Join(homeDir, ".config", "go-tombola", "debug.log"))
}

// EnableAt starts debug logging to path, truncating it
func EnableAt(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	// Ensure directory exists
	os.MkdirAll(filepath.Dir(logPath), 0755)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, "debug", "=== Debug logging started ===")
	file.Sync()

	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}

	ts := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, msg)
	file.Sync() // flush immediately so we see logs even on crash
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
