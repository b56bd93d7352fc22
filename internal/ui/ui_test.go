package ui

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestStatusIcon(t *testing.T) {
	color.NoColor = true
	if !strings.Contains(StatusIcon(true), "✓") {
		t.Error("expected check mark for ok status")
	}
	if !strings.Contains(StatusIcon(false), "✗") {
		t.Error("expected cross for failed status")
	}
	if !strings.Contains(WarnIcon(), "⚠") {
		t.Error("expected warning sign")
	}
}
