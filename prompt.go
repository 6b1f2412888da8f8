package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Accepted confirmation answers, English and Spanish.
var affirmatives = map[string]bool{
	"y": true, "yes": true,
	"s": true, "si": true, "sí": true,
}

// promptYes prints the question and reads one line from in. Anything other
// than an affirmative answer counts as no.
func promptYes(in io.Reader, question string) bool {
	fmt.Print(question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return isAffirmative(line)
}

func isAffirmative(answer string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(answer))]
}
