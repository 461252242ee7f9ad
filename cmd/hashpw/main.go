// Command hashpw reads a password from the terminal without echo and prints
// its argon2id hash. Useful for seeding accounts or resetting a credential
// directly in the database.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/medvault/internal/server/auth"
)

func main() {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	repeat, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}

	if string(password) != string(repeat) {
		log.Fatal("passwords do not match")
	}

	hash, err := auth.HashPassword(string(password), auth.DefaultPasswordParams())
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	fmt.Println(hash)
}
