package main

import (
	"os"
	"path/filepath"

	"github.com/enea-iemap/iemap-mi/internal/cmd"
)

func main() {
	args := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	os.Exit(cmd.Main(args))
}
