package native_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/nativemock"
)

func TestRuntimeRefcount(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	lib := &nativemock.MockLibrary{}
	lib.On("Init").Once().Return(nil)
	lib.On("Cleanup").Once().Return()

	require.NoError(native.Acquire(lib))
	require.NoError(native.Acquire(lib))
	assert.Equal(2, native.References(lib))

	native.Release(lib)
	assert.Equal(1, native.References(lib))

	native.Release(lib)
	assert.Equal(0, native.References(lib))

	// Extra releases are ignored.
	native.Release(lib)

	lib.AssertExpectations(t)
}

func TestRuntimeInitFailure(t *testing.T) {
	assert := assert.New(t)

	lib := &nativemock.MockLibrary{}
	lib.On("Init").Once().Return(errors.New("whatever"))

	err := native.Acquire(lib)
	assert.Error(err)
	assert.Equal(0, native.References(lib))

	// A failed init holds no reference, so nothing is cleaned up.
	native.Release(lib)
	lib.AssertNotCalled(t, "Cleanup")
	lib.AssertExpectations(t)
}

func TestRuntimeIndependentLibraries(t *testing.T) {
	assert := assert.New(t)

	lib1 := &nativemock.MockLibrary{}
	lib1.On("Init").Once().Return(nil)
	lib1.On("Cleanup").Once().Return()
	lib2 := &nativemock.MockLibrary{}
	lib2.On("Init").Once().Return(nil)

	assert.NoError(native.Acquire(lib1))
	assert.NoError(native.Acquire(lib2))

	native.Release(lib1)
	assert.Equal(0, native.References(lib1))
	assert.Equal(1, native.References(lib2))

	lib1.AssertExpectations(t)
	lib2.AssertExpectations(t)
}

// sliceLibrary is a value library with an uncomparable type.
type sliceLibrary struct {
	*nativemock.MockLibrary
	names []string
}

// anyLibrary has a comparable type but can hold uncomparable values.
type anyLibrary struct {
	*nativemock.MockLibrary
	extra any
}

func TestRuntimeInvalidLibrary(t *testing.T) {
	tests := map[string]struct {
		lib func(m *nativemock.MockLibrary) native.Library
	}{
		"A nil library should fail.": {
			lib: func(*nativemock.MockLibrary) native.Library { return nil },
		},

		"An uncomparable library type should fail.": {
			lib: func(m *nativemock.MockLibrary) native.Library {
				return sliceLibrary{MockLibrary: m, names: []string{"a"}}
			},
		},

		"A comparable library type holding uncomparable values should fail.": {
			lib: func(m *nativemock.MockLibrary) native.Library {
				return anyLibrary{MockLibrary: m, extra: []string{"a"}}
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := &nativemock.MockLibrary{}
			lib := test.lib(m)

			err := native.Acquire(lib)
			assert.ErrorIs(err, native.ErrInvalidLibrary)
			assert.ErrorIs(err, model.ErrNotValid)
			assert.Equal(0, native.References(lib))
			native.Release(lib)

			m.AssertNotCalled(t, "Init")
			m.AssertNotCalled(t, "Cleanup")
		})
	}
}

// valueLibrary is a comparable value library.
type valueLibrary struct {
	*nativemock.MockLibrary
	name string
}

func TestRuntimeValueLibrary(t *testing.T) {
	assert := assert.New(t)

	m := &nativemock.MockLibrary{}
	m.On("Init").Once().Return(nil)
	m.On("Cleanup").Once().Return()

	assert.NoError(native.Acquire(valueLibrary{MockLibrary: m, name: "a"}))
	assert.Equal(1, native.References(valueLibrary{MockLibrary: m, name: "a"}))

	native.Release(valueLibrary{MockLibrary: m, name: "a"})
	assert.Equal(0, native.References(valueLibrary{MockLibrary: m, name: "a"}))

	m.AssertExpectations(t)
}
