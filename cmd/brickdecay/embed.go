package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/brickdecay/internal/server"
)

//go:embed all:shell
var shellFiles embed.FS

func init() {
	sub, err := fs.Sub(shellFiles, "shell")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
