package main

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	errPINNotConfigured = errors.New("parent PIN is not configured (set gamification.parent_pin_hash)")
	errWrongPIN         = errors.New("wrong parent PIN")
)

const (
	minPINLength = 4
	maxPINLength = 12
)

func validPIN(pin string) bool {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hashPIN(pin string) (string, error) {
	if !validPIN(pin) {
		return "", fmt.Errorf("%w: PIN must be %d-%d digits", errUsage, minPINLength, maxPINLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(hash), nil
}

// checkPIN refuses destructive commands unless pin matches the configured hash.
func checkPIN(hash, pin string) error {
	if hash == "" {
		return errPINNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return errWrongPIN
	}
	return nil
}
