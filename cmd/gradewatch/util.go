package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// prompt prints label and reads one trimmed line
func prompt(label string) (string, error) {
	fmt.Print(label)
	input, err := stdin.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func readPassword() (string, error) {
	// Try to read without echo
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	return prompt("")
}

func confirm(question string) bool {
	answer, err := prompt(question + " (y/N): ")
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(answer), "y")
}
