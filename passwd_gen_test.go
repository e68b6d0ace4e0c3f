package main

import (
	"strings"
	"testing"
)

func TestGenPasswordLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{4, 12, 24, 64} {
		pass, err := genPassword(length, true, true, true, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(pass) != length {
			t.Errorf("want length %d, got %d", length, len(pass))
		}
	}
}

func TestGenPasswordClasses(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		pass, err := genPassword(4, true, true, true, true)
		if err != nil {
			t.Fatal(err)
		}

		for _, class := range []string{upperChars, lowerChars, numberChars, symbolChars} {
			if !strings.ContainsAny(pass, class) {
				t.Errorf("password %q missing a character from %q", pass, class)
			}
		}
	}
}

func TestGenPasswordOnlyEnabledClasses(t *testing.T) {
	t.Parallel()

	pass, err := genPassword(32, false, true, true, false)
	if err != nil {
		t.Fatal(err)
	}

	if strings.ContainsAny(pass, upperChars) || strings.ContainsAny(pass, symbolChars) {
		t.Errorf("password %q contains disabled classes", pass)
	}
}

func TestGenPasswordImpossible(t *testing.T) {
	t.Parallel()

	if _, err := genPassword(16, false, false, false, false); err != errPasswordImpossible {
		t.Errorf("want errPasswordImpossible, got %v", err)
	}
	if _, err := genPassword(2, true, true, true, true); err != errPasswordImpossible {
		t.Errorf("want errPasswordImpossible, got %v", err)
	}
}
