package main

import (
	"bytes"
	"catalog_importer/pkg/logger"
	"strings"
	"sync/atomic"
	"testing"
)

func TestParseCommand(t *testing.T) {
	codes := []string{"generalclimate", "euroklimate", "mhi"}
	tests := []struct {
		args []string
		want command
		ok   bool
	}{
		{args: []string{"run", "mhi"}, want: command{name: cmdRun, supplier: "mhi"}, ok: true},
		{args: []string{"euroklimate"}, want: command{name: cmdRun, supplier: "euroklimate"}, ok: true},
		{args: []string{"run-all"}, want: command{name: cmdRunAll}, ok: true},
		{args: []string{"migrate"}, want: command{name: cmdMigrate}, ok: true},
		{args: []string{"schedule"}, want: command{name: cmdSchedule}, ok: true},
		{args: nil},
		{args: []string{"run"}},
		{args: []string{"run", "unknown"}},
		{args: []string{"run-all", "extra"}},
		{args: []string{"unknown"}},
	}
	for _, tt := range tests {
		got, ok := parseCommand(tt.args, codes)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseCommand(%v): want=%+v,%v got=%+v,%v", tt.args, tt.want, tt.ok, got, ok)
		}
	}
}

func TestRunPrintsUsageOnBadArgs(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"run", "nobody"}, &out); code != 0 {
		t.Fatalf("exit code: want=0 got=%d", code)
	}
	if !strings.Contains(out.String(), "generalclimate, euroklimate, mhi") {
		t.Fatalf("usage does not list suppliers: %s", out.String())
	}
}

func TestRunMigrateOnTempDatabase(t *testing.T) {
	t.Setenv("CATALOG_CONFIG", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", t.TempDir()+"/central.db")
	t.Setenv("PROMETHEUS_PUSHGATEWAY_URL", "")

	var out bytes.Buffer
	if code := run([]string{"migrate"}, &out); code != 0 {
		t.Fatalf("exit code: want=0 got=%d, log: %s", code, out.String())
	}
}

func TestSkipIfRunningDropsOverlappingRuns(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var calls atomic.Int32
	job := skipIfRunning(logger.NewNop(), func() {
		calls.Add(1)
		started <- struct{}{}
		<-release
	})

	done := make(chan struct{})
	go func() {
		job()
		close(done)
	}()
	<-started

	job()
	if n := calls.Load(); n != 1 {
		t.Fatalf("overlapping run: want calls=1 got=%d", n)
	}

	close(release)
	<-done
	job()
	if n := calls.Load(); n != 2 {
		t.Fatalf("run after finish: want calls=2 got=%d", n)
	}
}
