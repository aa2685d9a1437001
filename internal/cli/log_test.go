package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcbuilder/pkg/catalog/catalogtest"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("Installed 3 mods") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("fetched", "file", "curseforge:1") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("fetched", "file", "curseforge:1") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("dependency skipped") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-1500 * time.Millisecond)
	p.done("Installed 3 mods")

	out := buf.String()
	if !strings.Contains(out, "Installed 3 mods (1.5") {
		t.Errorf("done() = %q, want message with elapsed time", out)
	}
}

func TestProgressMessage(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "Downloading jei.jar. 0% Done"},
		{42.5, "Downloading jei.jar. 42.5% Done"},
		{100, "Downloading jei.jar. 100% Done"},
	}
	for _, tt := range tests {
		if got := progressMessage("jei.jar", tt.percent); got != tt.want {
			t.Errorf("progressMessage(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestDownloadProgress(t *testing.T) {
	src := pack.NewCurseSource(catalogtest.New(), "1.12.2")
	f, err := src.NewNamed(pack.NewReference(1, 10), "jei.jar")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	report := downloadProgress(newLogger(&buf, log.InfoLevel))

	report(f, 50)
	if buf.Len() != 0 {
		t.Errorf("intermediate progress logged at info level: %q", buf.String())
	}

	report(f, 100)
	if !strings.Contains(buf.String(), "Downloading jei.jar. 100% Done") {
		t.Errorf("completion not logged: %q", buf.String())
	}
}
