package fileid

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestResumeID(t *testing.T) {
	id1 := ResumeID("/foo/jane.doe.pdf")
	id2 := ResumeID("/foo/jane.doe.pdf")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, "jane_doe_pdf-") {
		t.Errorf("ID should start with the sanitized file name: %q", id1)
	}
	if len(id1) != len("jane_doe_pdf-")+hashLen {
		t.Errorf("unexpected ID length: %q", id1)
	}
}

func TestResumeID_differentDirs(t *testing.T) {
	if ResumeID("/a/cv.pdf") == ResumeID("/b/cv.pdf") {
		t.Error("same file name in different directories should give different IDs")
	}
}

func TestResumeID_normalized(t *testing.T) {
	id1 := ResumeID("/foo/bar.txt")
	id2 := ResumeID("/foo/./bar.txt")
	id3 := ResumeID("/foo/baz/../bar.txt")
	if id1 != id2 || id1 != id3 {
		t.Errorf("equivalent paths should match: %q %q %q", id1, id2, id3)
	}
}

func TestResumeID_relativeMatchesAbsolute(t *testing.T) {
	abs, err := filepath.Abs("cv.txt")
	if err != nil {
		t.Fatal(err)
	}
	if ResumeID("cv.txt") != ResumeID(abs) {
		t.Error("relative path should resolve to the same ID as its absolute form")
	}
}
