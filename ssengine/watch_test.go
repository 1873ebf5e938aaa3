package ssengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/goleak"

	"github.com/robfig/ssview/template"
)

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	var dir = t.TempDir()
	var file = filepath.Join(dir, "Page.ss")
	if err := os.WriteFile(file, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	var changed = make(chan string, 10)
	var e = New(template.NewLoader(afero.NewOsFs(), Ext, dir), OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	}))
	if err := e.Watch(); err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	var render = func() string {
		out, err := e.Process(template.Candidates(template.Main, "Page"), nil, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	if out := render(); out != "v1" {
		t.Fatalf("got %q", out)
	}

	if err := os.WriteFile(file, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case path := <-changed:
		if path != file {
			t.Errorf("changed %q, expected %q", path, file)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the template to be invalidated")
	}

	// the file may be seen mid-write; wait for the final content
	var deadline = time.Now().Add(5 * time.Second)
	for out := render(); out != "v2"; out = render() {
		if time.Now().After(deadline) {
			t.Fatalf("got %q, expected v2", out)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
