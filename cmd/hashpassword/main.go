// Command hashpassword prints a bcrypt hash for OPERATOR_PASSWORD_HASH.
//
// Usage:
//
//	echo -n 'secret password' | hashpassword
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mmynk/khata/internal/auth"
	"github.com/mmynk/khata/pkg/logging"
)

func main() {
	logging.Setup("info", "pretty")

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		slog.Error("Failed to read password from stdin", "error", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(strings.TrimRight(password, "\r\n"))
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
