// Package seedstore downloads remote seed files and hands them out
// once their integrity has been verified.
package seedstore

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type SeedStore struct {
	fileDir  string
	downlDir string
	download func(url string, path string) error

	awaited   chan string
	scheduled chan string

	urls  sync.Map // sha256 -> url
	locks sync.Map // sha256 -> *sync.Cond
	done  sync.Map // sha256 -> error (nil on success)
}

// New creates a seed store that fetches files with the given download
// function, staging them in downlDir and publishing verified files in
// fileDir under their sha256 name.
func New(fileDir string, downlDir string, download func(url string, path string) error) *SeedStore {
	s := &SeedStore{
		fileDir:   fileDir,
		downlDir:  downlDir,
		download:  download,
		awaited:   make(chan string, 10000),
		scheduled: make(chan string, 10000),
	}

	if err := os.MkdirAll(fileDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create seed store directory: %w", err))
	}
	if err := os.MkdirAll(downlDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create seed download directory: %w", err))
	}

	return s
}

// Schedule queues a download unless one is already in flight or done.
func (s *SeedStore) Schedule(sha string, url string) error {
	if _, loaded := s.urls.LoadOrStore(sha, url); loaded {
		return nil // already scheduled
	}
	s.locks.Store(sha, sync.NewCond(&sync.Mutex{}))
	s.scheduled <- sha
	return nil
}

// Await blocks until the seed has been downloaded and verified, then
// returns its contents.
func (s *SeedStore) Await(sha string) ([]byte, error) {
	s.awaited <- sha

	lockAny, ok := s.locks.Load(sha)
	if !ok {
		return nil, fmt.Errorf("seed %s has not been scheduled for download", sha)
	}
	cond := lockAny.(*sync.Cond)

	cond.L.Lock()
	res, finished := s.done.Load(sha)
	for !finished {
		cond.Wait()
		res, finished = s.done.Load(sha)
	}
	cond.L.Unlock()

	if err, _ := res.(error); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.fileDir, sha))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed %s: %w", sha, err)
	}
	return data, nil
}

// Start serves downloads, preferring seeds somebody already waits on.
// Run it in its own goroutine.
func (s *SeedStore) Start() {
	for {
		var sha string
		select {
		case sha = <-s.awaited:
		case sha = <-s.scheduled:
		}
		if _, finished := s.done.Load(sha); finished {
			continue
		}
		s.finish(sha, s.fetch(sha))
	}
}

func (s *SeedStore) finish(sha string, err error) {
	lockAny, ok := s.locks.Load(sha)
	if !ok {
		return
	}
	cond := lockAny.(*sync.Cond)
	cond.L.Lock()
	s.done.Store(sha, err)
	cond.L.Unlock()
	cond.Broadcast()
}

func (s *SeedStore) fetch(sha string) error {
	if _, err := os.Stat(filepath.Join(s.fileDir, sha)); err == nil {
		return nil
	}

	urlAny, ok := s.urls.Load(sha)
	if !ok {
		return fmt.Errorf("seed %s has no download url", sha)
	}

	tmpPath := filepath.Join(s.downlDir, sha)
	if err := s.download(urlAny.(string), tmpPath); err != nil {
		return fmt.Errorf("failed to download seed %s: %w", sha, err)
	}

	sum, err := fileSha256(tmpPath)
	if err != nil {
		return err
	}
	if sum != sha {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("seed integrity mismatch: got %s, want %s", sum, sha)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.fileDir, sha)); err != nil {
		return fmt.Errorf("failed to move seed %s into store: %w", sha, err)
	}
	return nil
}

func fileSha256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
