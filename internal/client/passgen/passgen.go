// Package passgen generates random passwords and scores their strength.
package passgen

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"
)

// Options selects the character classes included in a generated password.
type Options struct {
	Length  int
	Lower   bool
	Upper   bool
	Digits  bool
	Symbols bool
}

// DefaultOptions covers all classes at 16 characters.
func DefaultOptions() Options {
	return Options{Length: 16, Lower: true, Upper: true, Digits: true, Symbols: true}
}

var errNoCharset = errors.New("at least one character class must be enabled")

// Generate produces a random password. Every enabled class is guaranteed at
// least one character when the length allows it.
func Generate(opts Options) (string, error) {
	if opts.Length < 1 {
		return "", errors.New("length must be positive")
	}
	var classes []string
	if opts.Lower {
		classes = append(classes, lowerChars)
	}
	if opts.Upper {
		classes = append(classes, upperChars)
	}
	if opts.Digits {
		classes = append(classes, digitChars)
	}
	if opts.Symbols {
		classes = append(classes, symbolChars)
	}
	if len(classes) == 0 {
		return "", errNoCharset
	}
	all := strings.Join(classes, "")

	out := make([]byte, opts.Length)
	for i := range out {
		c, err := randByte(all)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	// ensure class coverage by overwriting distinct random positions
	if opts.Length >= len(classes) {
		perm, err := randPerm(opts.Length, len(classes))
		if err != nil {
			return "", err
		}
		for i, class := range classes {
			c, err := randByte(class)
			if err != nil {
				return "", err
			}
			out[perm[i]] = c
		}
	}
	return string(out), nil
}

func randByte(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// randPerm picks k distinct indices in [0, n).
func randPerm(n, k int) ([]int, error) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(n-i)))
		if err != nil {
			return nil, err
		}
		pos := i + int(j.Int64())
		idx[i], idx[pos] = idx[pos], idx[i]
	}
	return idx[:k], nil
}

// Strength is a coarse 0..4 score with a human label.
type Strength struct {
	Score int
	Label string
}

var strengthLabels = [...]string{"very weak", "weak", "fair", "strong", "very strong"}

// Score rates a password by length and character variety.
func Score(password string) Strength {
	if password == "" {
		return Strength{0, strengthLabels[0]}
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	variety := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			variety++
		}
	}

	score := 0
	switch {
	case len(password) >= 16:
		score = 2
	case len(password) >= 12:
		score = 1
	case len(password) >= 8:
		score = 0
	default:
		return Strength{0, strengthLabels[0]}
	}
	score += variety / 2
	if score > 4 {
		score = 4
	}
	return Strength{score, strengthLabels[score]}
}
