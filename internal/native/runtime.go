package native

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/slok/idev/internal/model"
)

// ErrInvalidLibrary is returned when a library can't be tracked by the process
// wide runtime. Libraries must be comparable, pointer implementations always are.
var ErrInvalidLibrary = fmt.Errorf("invalid native library: %w", model.ErrNotValid)

var (
	runtimeMu   sync.Mutex
	runtimeRefs = map[Library]int{}
)

// runtimeKey checks lib can be used as a refcount key. A comparable type can
// still hold uncomparable values in interface fields, those panic on hashing.
func runtimeKey(lib Library) (key Library, err error) {
	if lib == nil {
		return nil, fmt.Errorf("nil library: %w", ErrInvalidLibrary)
	}

	t := reflect.TypeOf(lib)
	if !t.Comparable() {
		return nil, fmt.Errorf("%s is not comparable: %w", t, ErrInvalidLibrary)
	}

	defer func() {
		if r := recover(); r != nil {
			key, err = nil, fmt.Errorf("%s can't be hashed: %v: %w", t, r, ErrInvalidLibrary)
		}
	}()
	if probe := map[Library]struct{}{lib: {}}; len(probe) != 1 {
		return nil, fmt.Errorf("%s can't be hashed: %w", t, ErrInvalidLibrary)
	}

	return lib, nil
}

// Acquire takes a reference on the process wide state of lib, initializing it
// when this is the first reference.
func Acquire(lib Library) error {
	key, err := runtimeKey(lib)
	if err != nil {
		return err
	}

	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if runtimeRefs[key] == 0 {
		if err := lib.Init(); err != nil {
			return fmt.Errorf("could not initialize native library: %w", err)
		}
	}
	runtimeRefs[key]++

	return nil
}

// Release drops a reference taken with Acquire. The library is cleaned up when
// the last reference goes away. Releasing without a reference is a no-op.
func Release(lib Library) {
	key, err := runtimeKey(lib)
	if err != nil {
		return
	}

	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	refs, ok := runtimeRefs[key]
	if !ok {
		return
	}

	if refs > 1 {
		runtimeRefs[key] = refs - 1
		return
	}

	delete(runtimeRefs, key)
	lib.Cleanup()
}

// References returns the number of outstanding references on lib.
func References(lib Library) int {
	key, err := runtimeKey(lib)
	if err != nil {
		return 0
	}

	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	return runtimeRefs[key]
}
