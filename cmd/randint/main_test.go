package main

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"testing"
)

func TestRunPrintsValueInRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		var out strings.Builder
		if err := run(strings.NewReader("3 7\n"), &out); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		line := strings.TrimPrefix(out.String(), "Enter two integers (min max): ")
		prefix := "Random integer in [3, 7]: "
		if !strings.HasPrefix(line, prefix) {
			t.Fatalf("unexpected output %q", out.String())
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix)))
		if err != nil {
			t.Fatalf("result not an integer: %q", line)
		}
		if n < 3 || n > 7 {
			t.Fatalf("result %d outside [3, 7]", n)
		}
	}
}

func TestRunRepromptsUntilValid(t *testing.T) {
	var out strings.Builder
	input := "1\nfoo bar\n9 2\n-5 -5\n"
	if err := run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	if n := strings.Count(got, "Please enter exactly two integers separated by whitespace."); n != 2 {
		t.Errorf("expected 2 format errors, got %d:\n%s", n, got)
	}
	if n := strings.Count(got, "The first number must be less than or equal to the second."); n != 1 {
		t.Errorf("expected 1 order error, got %d:\n%s", n, got)
	}
	if !strings.HasSuffix(got, "Random integer in [-5, -5]: -5\n") {
		t.Errorf("unexpected result:\n%s", got)
	}
}

func TestRunAcceptsFinalLineWithoutNewline(t *testing.T) {
	var out strings.Builder
	if err := run(strings.NewReader("0 0"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasSuffix(out.String(), "Random integer in [0, 0]: 0\n") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunEOFCancels(t *testing.T) {
	var out strings.Builder
	if err := run(strings.NewReader("5 1\n"), &out); !errors.Is(err, errCancelled) {
		t.Fatalf("expected errCancelled, got %v", err)
	}
	if err := run(strings.NewReader("5 1"), &out); !errors.Is(err, errCancelled) {
		t.Fatalf("expected errCancelled on unterminated invalid line, got %v", err)
	}
}

func TestRunAcceptsBoundsBeyondInt64(t *testing.T) {
	var out strings.Builder
	lo := "-99999999999999999999999"
	hi := "99999999999999999999999"
	if err := run(strings.NewReader(lo+" "+hi+"\n"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	prefix := "Enter two integers (min max): Random integer in [" + lo + ", " + hi + "]: "
	if !strings.HasPrefix(out.String(), prefix) {
		t.Fatalf("unexpected output %q", out.String())
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(strings.TrimPrefix(out.String(), prefix)), 10)
	if !ok {
		t.Fatalf("result not an integer: %q", out.String())
	}
	loBound, _ := new(big.Int).SetString(lo, 10)
	hiBound, _ := new(big.Int).SetString(hi, 10)
	if n.Cmp(loBound) < 0 || n.Cmp(hiBound) > 0 {
		t.Errorf("result %s outside bounds", n)
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi string
		ok     bool
	}{
		{"1 2", "1", "2", true},
		{"  -9\t 9 ", "-9", "9", true},
		{"99999999999999999999 1", "99999999999999999999", "1", true},
		{"1", "", "", false},
		{"1 2 3", "", "", false},
		{"1.5 2", "", "", false},
		{"0x10 2", "", "", false},
	}
	for _, tt := range tests {
		lo, hi, ok := parseBounds(tt.in)
		if ok != tt.ok {
			t.Errorf("parseBounds(%q) ok = %v; want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (lo.String() != tt.lo || hi.String() != tt.hi) {
			t.Errorf("parseBounds(%q) = %s, %s; want %s, %s", tt.in, lo, hi, tt.lo, tt.hi)
		}
	}
}
