package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ever-after-studio/wedding-site-api/internal/app/adminauth"
)

// Prints the bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	adminhash 'correct horse battery staple'
//	echo -n 'correct horse battery staple' | adminhash
func main() {
	password, err := readPassword(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminhash: %v\n", err)
		os.Exit(2)
	}
	hash, err := adminauth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminhash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword(args []string) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("usage: adminhash [password]")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
