package main

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	upperChars  = `ABCDEFGHIJKLMNOPQRSTUVWXYZ`
	lowerChars  = `abcdefghijklmnopqrstuvwxyz`
	numberChars = `0123456789`
	symbolChars = `!@#$%^&*()_+-=<>,.?`
)

var errPasswordImpossible = errors.New("password cannot be generated")

// genPassword produces a random password containing at least one
// character from each enabled class.
func genPassword(length int, upper, lower, numbers, symbols bool) (string, error) {
	var classes []string
	if upper {
		classes = append(classes, upperChars)
	}
	if lower {
		classes = append(classes, lowerChars)
	}
	if numbers {
		classes = append(classes, numberChars)
	}
	if symbols {
		classes = append(classes, symbolChars)
	}

	if len(classes) == 0 || length < len(classes) {
		return "", errPasswordImpossible
	}

	all := strings.Join(classes, "")
	password := make([]byte, length)

	for i, class := range classes {
		c, err := randChar(class)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	for i := len(classes); i < length; i++ {
		c, err := randChar(all)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	// The guaranteed class characters sit at the front, shuffle them in
	for i := length - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randChar(alphabet string) (byte, error) {
	n, err := randInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[n], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
