package main

import (
	"os"

	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/spf13/afero"
)

func main() {
	if err := newApp(afero.NewOsFs()).execute(os.Args[1:], nil, nil); err != nil {
		logger.Log.Error("memprep failed", "error", err)
		os.Exit(1)
	}
}
