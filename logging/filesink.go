package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// RunDirectoryPrefix is the standardized prefix for run directories.
const RunDirectoryPrefix = "testrun-"

// FileSink mirrors test report output into files. It implements io.Writer
// so it can sit behind an io.MultiWriter next to the console stream.
// Everything written lands in all.log; while a test is open the output is
// also copied into a per-test file, which is filed under passed/ or
// failed/ once the test ends.
type FileSink struct {
	logDir      string
	passedDir   string
	failedDir   string
	runID       string
	mu          sync.Mutex // Protects concurrent file operations
	all         *asyncFile
	current     *asyncFile
	currentPath string
	log         log.Logger
}

// NewFileSink creates the run directory under baseDir and opens the
// combined log file.
func NewFileSink(baseDir string, runID string, logger log.Logger) (*FileSink, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	// Use the standardized prefix for the run directory
	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	passedDir := filepath.Join(logDir, "passed")
	failedDir := filepath.Join(logDir, "failed")

	for _, dir := range []string{baseDir, logDir, passedDir, failedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	all, err := newAsyncFile(filepath.Join(logDir, "all.log"))
	if err != nil {
		return nil, err
	}

	return &FileSink{
		logDir:    logDir,
		passedDir: passedDir,
		failedDir: failedDir,
		runID:     runID,
		all:       all,
		log:       logger,
	}, nil
}

// LogDir returns the directory this run's files are written to.
func (s *FileSink) LogDir() string {
	return s.logDir
}

// Write copies report output into the run's log files. Terminal escape
// sequences are stripped first. The report must not fail because the
// mirror did, so write errors are logged and len(p) is returned.
func (s *FileSink) Write(p []byte) (int, error) {
	plain := []byte(stripansi.Strip(string(p)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.all.Write(plain); err != nil {
		s.log.Error("Failed to write combined log", "err", err)
	}
	if s.current != nil {
		if err := s.current.Write(plain); err != nil {
			s.log.Error("Failed to write test log", "file", s.currentPath, "err", err)
		}
	}
	return len(p), nil
}

// BeginTest opens the per-test log file for the given test.
func (s *FileSink) BeginTest(seq int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		// A crash in the previous test can leave its file open.
		_ = s.current.Close()
		s.current = nil
	}

	path := filepath.Join(s.logDir, fmt.Sprintf("%03d-%s.log", seq, safeFilename(name)))
	f, err := newAsyncFile(path)
	if err != nil {
		s.log.Error("Failed to create test log", "file", path, "err", err)
		return
	}
	s.current = f
	s.currentPath = path
}

// EndTest closes the current per-test file and files it by outcome.
func (s *FileSink) EndTest(status types.TestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	if err := s.current.Close(); err != nil {
		s.log.Error("Failed to close test log", "file", s.currentPath, "err", err)
	}

	dir := s.failedDir
	if status == types.TestStatusPass {
		dir = s.passedDir
	}
	dest := filepath.Join(dir, filepath.Base(s.currentPath))
	if err := os.Rename(s.currentPath, dest); err != nil {
		s.log.Error("Failed to move test log", "file", s.currentPath, "err", err)
	}

	s.current = nil
	s.currentPath = ""
}

// LogSummary writes the run totals to summary.log.
func (s *FileSink) LogSummary(stats types.RunStats) error {
	verdict := "SUCCESS"
	if stats.Failed > 0 {
		verdict = "FAILED"
	}
	summary := fmt.Sprintf(
		"run:      %s\nresult:   %s\nregistered: %d\nexecuted: %d\npassed:   %d\nfailed:   %d\nskipped:  %d\nduration: %.6f secs\n",
		s.runID, verdict,
		stats.Registered, stats.Executed, stats.Passed(), stats.Failed, stats.Skipped(),
		stats.Duration.Seconds(),
	)

	f, err := newAsyncFile(filepath.Join(s.logDir, "summary.log"))
	if err != nil {
		return err
	}
	if err := f.Write([]byte(summary)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close flushes and closes the sink's files.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.current != nil {
		if err := s.current.Close(); err != nil {
			errs = append(errs, err)
		}
		s.current = nil
	}
	if err := s.all.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close log files: %v", errs)
	}
	return nil
}

// asyncFile provides non-blocking file writing.
type asyncFile struct {
	file    *os.File
	queue   chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

func newAsyncFile(path string) (*asyncFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	af := &asyncFile{
		file:  file,
		queue: make(chan []byte, 100), // Buffer channel to reduce blocking
	}

	// Start the background writer
	af.wg.Add(1)
	go af.processQueue()

	return af, nil
}

// Write queues data to be written asynchronously
func (af *asyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if af.stopped {
		return fmt.Errorf("async file is closed")
	}

	// Make a copy of the data to avoid race conditions
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	af.queue <- dataCopy
	return nil
}

// processQueue processes the write queue in the background
func (af *asyncFile) processQueue() {
	defer af.wg.Done()

	for data := range af.queue {
		if _, err := af.file.Write(data); err != nil {
			// Log the error but continue processing
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
		}
	}
}

// Close stops the async writer and closes the file
func (af *asyncFile) Close() error {
	af.mu.Lock()
	if !af.stopped {
		af.stopped = true
		close(af.queue)
	}
	af.mu.Unlock()

	// Wait for all writes to complete
	af.wg.Wait()
	return af.file.Close()
}

// safeFilename converts a string to a safe filename by replacing problematic characters
func safeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	s = strings.ReplaceAll(s, "?", "_")
	s = strings.ReplaceAll(s, "\"", "_")
	s = strings.ReplaceAll(s, "<", "_")
	s = strings.ReplaceAll(s, ">", "_")
	s = strings.ReplaceAll(s, "|", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
