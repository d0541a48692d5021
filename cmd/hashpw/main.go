package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "Password to hash")
	cost := flag.Int("cost", bcrypt.DefaultCost, "Bcrypt cost factor")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "Usage: hashpw -password <password> [-cost <4-31>]")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hashing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
