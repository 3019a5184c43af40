package segment

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateComputesReportsAndStats(t *testing.T) {
	segments := []string{
		strings.Repeat("a", 100),
		strings.Repeat("b", 270),
		strings.Repeat("c", 40),
	}
	reports, stats, err := Validate(segments, 280, 260)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if reports[0].Order != 1 || reports[0].CharacterCount != 100 || reports[0].Remaining != 180 {
		t.Fatalf("unexpected first report: %+v", reports[0])
	}
	if !reports[1].IsWarning {
		t.Fatalf("expected warning for 270-char segment")
	}
	if reports[0].IsWarning || reports[2].IsWarning {
		t.Fatalf("unexpected warnings: %+v", reports)
	}

	if stats.Count != 3 || stats.MinLength != 40 || stats.MaxLength != 270 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	wantAvg := float64(100+270+40) / 3
	if stats.AvgLength != wantAvg {
		t.Fatalf("expected avg %v, got %v", wantAvg, stats.AvgLength)
	}
	if stats.OverLimit != 0 || stats.NearLimit != 1 {
		t.Fatalf("unexpected limit counts: %+v", stats)
	}
}

func TestValidateRejectsOverflowingThread(t *testing.T) {
	segments := []string{"ok", strings.Repeat("x", 300), "also ok"}
	reports, stats, err := Validate(segments, 280, 260)

	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected OverflowError, got %v", err)
	}
	if overflow.Order != 2 || overflow.Overflow() != 20 {
		t.Fatalf("unexpected overflow detail: %+v", overflow)
	}
	if reports[1].Remaining != -20 {
		t.Fatalf("expected negative remaining, got %d", reports[1].Remaining)
	}
	if stats.OverLimit != 1 {
		t.Fatalf("expected one over-limit segment, got %d", stats.OverLimit)
	}
}

func TestValidateGraphemeAware(t *testing.T) {
	// Five family emoji read as five characters even though the raw
	// string is dozens of bytes.
	segment := strings.Repeat("\U0001F468‍\U0001F469‍\U0001F467", 5)
	reports, _, err := Validate([]string{segment}, 5, 4)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if reports[0].CharacterCount != 5 {
		t.Fatalf("expected count 5, got %d", reports[0].CharacterCount)
	}
}

func TestValidateEmpty(t *testing.T) {
	if _, _, err := Validate(nil, 280, 260); err != ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}
