package main

import (
	"os"

	"github.com/jonesrussell/content-extraction/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Start())
}
