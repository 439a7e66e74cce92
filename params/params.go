package params

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/utils"
)

var (
	ParamsPath = "/data/params/d"
)

// Params
const (
	VELOCITY_FILTER_SETTINGS = "VelocityFilterSettings"
)

const (
	LOCK_FORCE_RETRIES = 30
	LOCK_MAX_RETRIES   = 50
	LOCK_RETRY_DELAY   = 1 * time.Millisecond
)

// Store is a directory of parameter files. Every parameter is a single file
// named after the parameter. Writes and removals are serialised with a lock
// file in the parent of the directory.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func DefaultStore() *Store {
	return NewStore(ParamsPath)
}

// exists returns whether the given file or directory exists
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "could not check param file stats")
}

func (s *Store) EnsureDirectory() error {
	err := os.MkdirAll(s.Dir, 0o775)
	if err != nil {
		return errors.Wrapf(err, "could not make params directory %s", s.Dir)
	}
	return nil
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *Store) lockPath() string {
	return filepath.Join(filepath.Dir(s.Dir), ".lock")
}

func (s *Store) List() ([]string, error) {
	files, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "could not read params directory")
	}

	names := []string{}
	for _, file := range files {
		name := file.Name()
		if file.Type().IsRegular() && name[0] != '.' {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names, nil
}

func (s *Store) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read param %s", name)
	}
	return data, nil
}

// Put atomically replaces the parameter: the value is written and synced to a
// temp file that is renamed into place while holding the lock.
func (s *Store) Put(name string, data []byte) error {
	if err := s.EnsureDirectory(); err != nil {
		return err
	}
	file, err := os.CreateTemp(s.Dir, ".tmp_value_"+name)
	if err != nil {
		return errors.Wrap(err, "could not create temp param file")
	}
	tmpName := file.Name()
	defer os.Remove(tmpName)
	defer file.Close()

	_, err = file.Write(data)
	if err != nil {
		return errors.Wrap(err, "could not write data to temp param file")
	}

	err = file.Sync()
	if err != nil {
		return errors.Wrap(err, "could not fsync temp param file")
	}

	return s.withLock(func() error {
		err := os.Rename(tmpName, s.Path(name))
		if err != nil {
			return errors.Wrap(err, "could not move temp param file to persistent location")
		}
		return s.syncDir()
	})
}

func (s *Store) Remove(name string) error {
	return s.withLock(func() error {
		err := os.Remove(s.Path(name))
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "could not remove param %s", name)
		}
		return s.syncDir()
	})
}

func (s *Store) syncDir() error {
	directory, err := os.Open(s.Dir)
	if err != nil {
		return errors.Wrap(err, "could not open params directory")
	}
	defer directory.Close()

	err = directory.Sync()
	if err != nil {
		return errors.Wrap(err, "could not fsync params directory")
	}
	return nil
}

func (s *Store) withLock(fn func() error) error {
	fileLock := flock.New(s.lockPath())

	retries := 0
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrap(err, "could not try locking params directory")
		}
		if locked {
			break
		}
		retries += 1
		if retries > LOCK_FORCE_RETRIES {
			// try to force the lock to be removed
			utils.Logde(errors.Wrap(os.Remove(s.lockPath()), "failed to force delete params lock"))
		}
		if retries > LOCK_MAX_RETRIES {
			return errors.New("could not obtain lock")
		}
		time.Sleep(LOCK_RETRY_DELAY)
	}
	defer func() {
		if err := os.Remove(s.lockPath()); err != nil {
			slog.Error("could not remove params lock file", "error", err)
		}
	}()
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			slog.Error("could not unlock params directory", "error", err)
		}
	}()

	return fn()
}
