package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/* js/* data/*
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}
