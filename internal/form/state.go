package form

import (
	"bytes"
	"io"
	"strconv"
	"sync/atomic"
	"time"
)

// MaxAdvisoryFileSize is the size users are told to stay under. It is not
// enforced.
const MaxAdvisoryFileSize = 5 << 20

// FileRef is an attached document. Open may be called more than once.
type FileRef struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func (f *FileRef) Oversized() bool {
	return f.Size > MaxAdvisoryFileSize
}

// BytesFile wraps an in-memory document.
func BytesFile(name, contentType string, data []byte) *FileRef {
	return &FileRef{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// State holds the field values of one registrant's form. Age is derived from
// the date of birth on every change and cannot be set directly.
type State struct {
	schema     *Schema
	values     map[string]string
	files      map[string]*FileRef
	today      func() time.Time
	submitting atomic.Bool
}

func NewState(schema *Schema) *State {
	return &State{
		schema: schema,
		values: map[string]string{},
		files:  map[string]*FileRef{},
		today:  time.Now,
	}
}

// SetClock replaces the clock used for age derivation.
func (s *State) SetClock(today func() time.Time) {
	s.today = today
	s.deriveAge()
}

func (s *State) Schema() *Schema {
	return s.schema
}

func (s *State) Get(field string) string {
	return s.values[field]
}

func (s *State) Set(field, value string) {
	if field == s.schema.AgeField {
		return
	}
	s.values[field] = value
	if field == s.schema.DOBField {
		s.deriveAge()
	}
}

func (s *State) deriveAge() {
	dob, err := ParseDate(s.values[s.schema.DOBField])
	if err != nil {
		delete(s.values, s.schema.AgeField)
		return
	}
	s.values[s.schema.AgeField] = strconv.Itoa(DeriveAge(dob, s.today()))
}

// Age returns the derived age, if a valid date of birth is set.
func (s *State) Age() (int, bool) {
	v, ok := s.values[s.schema.AgeField]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// Attach sets or, with a nil file, clears a document field.
func (s *State) Attach(field string, f *FileRef) {
	if f == nil {
		delete(s.files, field)
		return
	}
	s.files[field] = f
}

func (s *State) File(field string) *FileRef {
	return s.files[field]
}

// Values returns a copy of the field values.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Reset clears every field and attached document.
func (s *State) Reset() {
	s.values = map[string]string{}
	s.files = map[string]*FileRef{}
}

// BeginSubmit marks the form as submitting. It returns false when a
// submission is already in flight.
func (s *State) BeginSubmit() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *State) EndSubmit() {
	s.submitting.Store(false)
}

func (s *State) Submitting() bool {
	return s.submitting.Load()
}
