package entity

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultClassNames is the label order the shipped model was trained with.
var DefaultClassNames = []string{
	"apple",
	"banana",
	"bell-pepper",
	"carrot",
	"eggs",
	"instant-noodle",
	"lemon",
	"milk",
	"toilet-paper",
	"tuna-can",
	"yanyan-cracker",
	"yogurt",
}

var ErrEmptyClassTable = errors.New("class table must have at least one label")

// UnknownClassError means the detector produced a class id the table has no
// label for, i.e. the model and the table are out of sync.
type UnknownClassError struct {
	ClassID int
	Size    int
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("class id %d is outside the class table (size %d)", e.ClassID, e.Size)
}

// ClassTable maps detector class ids to labels. It is immutable once built.
type ClassTable struct {
	names []string
}

func NewClassTable(names []string) (*ClassTable, error) {
	if len(names) == 0 {
		return nil, ErrEmptyClassTable
	}

	seen := make(map[string]int, len(names))
	cleaned := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("class id %d has an empty label", i)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("label %q is used by class ids %d and %d", name, prev, i)
		}
		seen[name] = i
		cleaned[i] = name
	}

	return &ClassTable{names: cleaned}, nil
}

func (t *ClassTable) Name(classID int) (string, error) {
	if classID < 0 || classID >= len(t.names) {
		return "", &UnknownClassError{ClassID: classID, Size: len(t.names)}
	}
	return t.names[classID], nil
}

func (t *ClassTable) Len() int {
	return len(t.names)
}

// Names returns the labels in class id order.
func (t *ClassTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Validate fails when the detector emits a different number of classes than
// the table knows about.
func (t *ClassTable) Validate(detectorClasses int) error {
	if detectorClasses != len(t.names) {
		return fmt.Errorf("class table has %d labels but the detector reports %d classes", len(t.names), detectorClasses)
	}
	return nil
}
