package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, db: filepath.Join(t.TempDir(), "tasks.db")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--db", h.db}, args...)
	err := run(context.Background(), full, &out, &errOut)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("taskctl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestRun_PersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	if out := h.mustRun("add", "Write", "report", "--priority", "2", "--deadline", "2025-01-10"); !strings.Contains(out, "created task 1") {
		t.Errorf("add output = %q", out)
	}
	if out := h.mustRun("add", "Buy milk", "--category", "errand"); !strings.Contains(out, "created task 2") {
		t.Errorf("add output = %q", out)
	}
	h.mustRun("delete", "1")
	h.mustRun("update", "2", "--deadline", "2025-01-11", "--status", "done")

	out := h.mustRun("list")
	if strings.Contains(out, "Write report") {
		t.Errorf("deleted task listed:\n%s", out)
	}
	for _, want := range []string{"Buy milk", "Errand", "2025-01-11", "done"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	// The counter is rebuilt from the highest saved id.
	if out := h.mustRun("add", "Third"); !strings.Contains(out, "created task 3") {
		t.Errorf("add after restart = %q", out)
	}
}

func TestRun_ImportAdvancesCounter(t *testing.T) {
	h := newHarness(t)
	h.mustRun("import", "5", "Imported", "--category", "x", "--start", "10:00")
	if out := h.mustRun("add", "next"); !strings.Contains(out, "created task 6") {
		t.Errorf("add after import = %q", out)
	}
}

func TestRun_ListFilters(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "alpha", "--category", "work")
	h.mustRun("add", "beta", "--category", "home")
	h.mustRun("done", "2")

	out := h.mustRun("list", "--status", "done")
	if !strings.Contains(out, "beta") || strings.Contains(out, "alpha") {
		t.Errorf("list --status done:\n%s", out)
	}
	out = h.mustRun("list", "--category", "work")
	if !strings.Contains(out, "alpha") || strings.Contains(out, "beta") {
		t.Errorf("list --category work:\n%s", out)
	}
}

func TestRun_Reset(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "one")
	h.mustRun("reset")
	if out := h.mustRun("list"); !strings.Contains(out, "no tasks") {
		t.Errorf("list after reset = %q", out)
	}
	if out := h.mustRun("add", "fresh"); !strings.Contains(out, "created task 1") {
		t.Errorf("add after reset = %q", out)
	}
}

func TestRun_Errors(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run(); !errors.Is(err, errUsage) {
		t.Errorf("no command: err = %v, want usage", err)
	}
	if _, err := h.run("bogus"); !errors.Is(err, errUsage) {
		t.Errorf("unknown command: err = %v, want usage", err)
	}
	if _, err := h.run("delete", "42"); err == nil {
		t.Error("delete missing task: expected error")
	}
	if _, err := h.run("update", "x"); err == nil {
		t.Error("update bad id: expected error")
	}
	h.mustRun("add", "one")
	if _, err := h.run("update", "1", "--category", "home"); err == nil {
		t.Error("update category: expected error")
	}
	if _, err := h.run("update", "1", "--category", "home", "--status", "done"); err == nil {
		t.Error("update category with status: expected error")
	}
	if out := h.mustRun("list", "--status", "done"); !strings.Contains(out, "no tasks") {
		t.Errorf("rejected update changed status:\n%s", out)
	}
	if _, err := h.run("quick", "p1", "tomorrow"); err == nil {
		t.Error("quick without name: expected error")
	}
	if _, err := h.run("import", "0", "zero"); err == nil {
		t.Error("import id 0: expected error")
	}
}

func TestRun_ImportMergesGivenFlags(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "keep", "--priority", "1", "--duration", "45", "--deadline", "2025-01-10")
	if out := h.mustRun("import", "1", "other", "--start", "08:00"); !strings.Contains(out, "imported task 1") {
		t.Errorf("import output = %q", out)
	}

	want := []string{"1", "keep", "General", "1", "2025-01-10", "08:00", "45", "active"}
	got := taskLine(t, h.mustRun("list"), "keep")
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("task row = %q, want %q", got, want)
	}
}

func TestRun_ListSorted(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "finished", "--priority", "1")
	h.mustRun("add", "low", "--priority", "5")
	h.mustRun("add", "later", "--priority", "1", "--deadline", "2025-02-01")
	h.mustRun("add", "sooner", "--priority", "1", "--deadline", "2025-01-15")
	h.mustRun("done", "1")

	out := h.mustRun("list")
	order := []string{"sooner", "later", "low", "finished"}
	last := -1
	for _, name := range order {
		i := strings.Index(out, name)
		if i < 0 {
			t.Fatalf("list missing %q:\n%s", name, out)
		}
		if i < last {
			t.Errorf("%q listed out of order:\n%s", name, out)
		}
		last = i
	}
}

func TestRun_Quick(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("quick", "report tomorrow 2pm 1h p2 work")
	if !strings.Contains(out, "created task 1: report") {
		t.Errorf("quick output = %q", out)
	}
	row := taskLine(t, h.mustRun("list"), "report")
	want := map[int]string{1: "report", 2: "Work", 3: "2", 5: "14:00", 6: "60", 7: "active"}
	if len(row) != 8 {
		t.Fatalf("task row = %q", row)
	}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("column %d = %q, want %q (row %q)", i, row[i], w, row)
		}
	}
}

// taskLine returns the whitespace-separated columns of the list row naming
// name.
func taskLine(t *testing.T, out, name string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Fields(line)
		if len(cols) > 1 && cols[1] == name {
			return cols
		}
	}
	t.Fatalf("no row for %q in:\n%s", name, out)
	return nil
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"version"}, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "taskctl dev") {
		t.Errorf("version output = %q", out.String())
	}
}
