package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDistFSServesIndex(t *testing.T) {
	data, err := fs.ReadFile(DistFS(), "index.html")
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(data), "SmartB3") {
		t.Error("index.html does not look like the dashboard page")
	}
	if _, err := fs.Stat(DistFS(), "assets/app.js"); err != nil {
		t.Errorf("assets/app.js missing: %v", err)
	}
}
