// Package lockfile records the running daylog server so other commands can find it.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/daylog/internal/constants"
)

var (
	ErrNotRunning = errors.New("daylog server is not running")
	ErrMalformed  = errors.New("lockfile is malformed")
)

var findProcessFunc = ps.FindProcess

// Server is the content of a server lockfile: "addr|pid|started-unix".
type Server struct {
	Addr    string
	PID     int
	Started time.Time
}

// Path is the lockfile location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, constants.ServerLockfileName)
}

func (s Server) String() string {
	return fmt.Sprintf("%s|%d|%d", s.Addr, s.PID, s.Started.Unix())
}

// Write records the current process as the server listening on addr.
func Write(path, addr string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	s := Server{Addr: addr, PID: os.Getpid(), Started: time.Now()}
	return os.WriteFile(path, []byte(s.String()), 0600)
}

// Remove deletes the lockfile; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Parse decodes lockfile content.
func Parse(content string) (Server, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Server{}, ErrMalformed
	}
	if strings.TrimSpace(parts[0]) == "" {
		return Server{}, fmt.Errorf("%w: address is empty", ErrMalformed)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid <= 0 {
		return Server{}, fmt.Errorf("%w: invalid process ID", ErrMalformed)
	}
	started, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Server{}, fmt.Errorf("%w: invalid start time", ErrMalformed)
	}
	return Server{Addr: parts[0], PID: pid, Started: time.Unix(started, 0)}, nil
}

// Check reads the lockfile and confirms the recorded process is a live daylog.
// A stale lockfile yields ErrNotRunning.
func Check(path string) (Server, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Server{}, ErrNotRunning
	}
	s, err := Parse(string(content))
	if err != nil {
		return Server{}, err
	}

	process, err := findProcessFunc(s.PID)
	if err != nil || process == nil {
		return s, ErrNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return s, fmt.Errorf("%w: process %d is %s", ErrNotRunning, s.PID, process.Executable())
	}
	return s, nil
}
