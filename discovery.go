package relay

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"
)

const (
	// DirectoryFileName is the JSON file, in the OS temp directory, that
	// listening bridges advertise themselves in.
	DirectoryFileName = "relay_services.json"

	// DiscoveryTimeout is the default time DiscoverService polls the
	// directory before giving up.
	DiscoveryTimeout = 5 * time.Second
)

// ErrServiceNotFound is returned when discovery exhausts its timeout.
var ErrServiceNotFound = errors.New("service not found")

// ServiceInfo holds one directory entry for a listening bridge.
type ServiceInfo struct {
	Port      int       `json:"port"`
	PID       int       `json:"pid"`
	StartTime time.Time `json:"start_time"`
}

// serviceDirectory is the file-backed directory shared by every process on
// the machine.
type serviceDirectory struct {
	mu       sync.RWMutex
	services map[string]ServiceInfo
	filePath string
}

var directorySingleton *serviceDirectory
var directoryOnce sync.Once

func getDirectory() *serviceDirectory {
	directoryOnce.Do(func() {
		directorySingleton = &serviceDirectory{
			services: make(map[string]ServiceInfo),
			filePath: DirectoryPath(),
		}
		directorySingleton.load()
	})
	return directorySingleton
}

// DirectoryPath returns the path of the shared directory file.
func DirectoryPath() string {
	return filepath.Join(os.TempDir(), DirectoryFileName)
}

// load reads the directory from disk.
func (d *serviceDirectory) load() error {
	data, err := os.ReadFile(d.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No bridge has registered yet
		}
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// Replace, don't merge: entries another process removed must not linger.
	d.services = make(map[string]ServiceInfo)
	return json.Unmarshal(data, &d.services)
}

// save writes the directory to disk.
func (d *serviceDirectory) save() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := json.MarshalIndent(d.services, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(d.filePath, data, 0644)
}

// RegisterService advertises a listening bridge under serviceID.
func RegisterService(serviceID string, port int) error {
	d := getDirectory()

	d.mu.Lock()
	d.services[serviceID] = ServiceInfo{
		Port:      port,
		PID:       os.Getpid(),
		StartTime: time.Now(),
	}
	d.mu.Unlock()

	return d.save()
}

// UnregisterService removes serviceID from the directory.
func UnregisterService(serviceID string) error {
	d := getDirectory()

	d.mu.Lock()
	delete(d.services, serviceID)
	d.mu.Unlock()

	return d.save()
}

// DiscoverService polls the directory for serviceID and returns its port.
// Entries whose registering process is gone are cleaned up and ignored.
// A zero timeout uses DiscoveryTimeout.
func DiscoverService(serviceID string, timeout time.Duration) (int, error) {
	if timeout == 0 {
		timeout = DiscoveryTimeout
	}

	d := getDirectory()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		// Reload from disk to see registrations from other processes
		if err := d.load(); err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		d.mu.RLock()
		info, exists := d.services[serviceID]
		d.mu.RUnlock()

		if exists {
			if isProcessAlive(info.PID) {
				return info.Port, nil
			}
			// Stale entry from a dead process
			_ = UnregisterService(serviceID)
		}

		time.Sleep(100 * time.Millisecond)
	}

	return 0, ErrServiceNotFound
}

// ListServices returns a copy of every directory entry.
func ListServices() (map[string]ServiceInfo, error) {
	d := getDirectory()
	if err := d.load(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make(map[string]ServiceInfo, len(d.services))
	for k, v := range d.services {
		result[k] = v
	}
	return result, nil
}

// ClearDirectory removes every entry from the directory.
func ClearDirectory() error {
	d := getDirectory()

	d.mu.Lock()
	d.services = make(map[string]ServiceInfo)
	d.mu.Unlock()

	return d.save()
}

// isProcessAlive checks if a process with the given PID is running
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		// FindProcess only succeeds for live processes on Windows
		return true
	}
	// On Unix FindProcess always succeeds; signal 0 probes for existence.
	// EPERM means the process exists but belongs to someone else.
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
