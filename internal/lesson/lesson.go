// Package lesson bundles the introductory Solidity lessons.
package lesson

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

//go:embed sol/*.sol
var files embed.FS

// Lesson is one bundled Solidity example.
type Lesson struct {
	Number      int
	Title       string
	Description string
	Contract    string // main contract name
	file        string
}

var lessons = []Lesson{
	{1, "Simple Add Function", "Returns the sum of two integers passed to it.", "Adder", "01_adder.sol"},
	{2, "Simple If-Else", `Returns "Pass" or "Fail" based on input marks.`, "Grade", "02_grade.sol"},
	{3, "Simple Store/Retrieve", "Stores and retrieves a single value.", "StoreRetrieve", "03_store_retrieve.sol"},
	{4, "Greet with Name", `Combines "Hello, " with the given name.`, "Greeter", "04_greeter.sol"},
	{5, "Loop-based Sum", "Returns the sum of all elements in an array (try 1,2,3).", "LoopSum", "05_loop_sum.sol"},
	{6, "Struct Example", "Stores student records, each with an ID and name.", "StudentRegistry", "06_struct.sol"},
	{7, "Student Mapping", "Stores student names mapped by ID.", "StudentRegistry", "07_mapping.sol"},
}

// All returns the lessons in order.
func All() []Lesson {
	out := make([]Lesson, len(lessons))
	copy(out, lessons)
	return out
}

// Get returns lesson n (1-based).
func Get(n int) (Lesson, error) {
	if n < 1 || n > len(lessons) {
		return Lesson{}, fmt.Errorf("no lesson %d (lessons are 1-%d)", n, len(lessons))
	}
	return lessons[n-1], nil
}

// Parse resolves a lesson number given as text.
func Parse(s string) (Lesson, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson must be a number, got %q", s)
	}
	return Get(n)
}

// FileName is the lesson's file name, e.g. "03_store_retrieve.sol".
func (l Lesson) FileName() string { return l.file }

// Source returns the Solidity source.
func (l Lesson) Source() string {
	data, err := files.ReadFile("sol/" + l.file)
	if err != nil {
		// Every entry above has an embedded file.
		panic(err)
	}
	return string(data)
}

// Save writes the source into dir and returns the file path. Existing files
// are not overwritten.
func (l Lesson) Save(dir string) (string, error) {
	path := filepath.Join(dir, l.file)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(l.Source()); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
