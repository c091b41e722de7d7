package main

import (
	"fmt"

	"github.com/pelletier/go-toml"
)

// manifest is a batch of jobs described by a TOML document:
//
//	[[job]]
//	input = ["sprite.png"]
//	format = "rgb565"
//	mipmap = true
//	compress = true
//
//	[[job]]
//	input = ["tiles.png"]
//	output = "tiles.tex"
//	format = "pal8bpp"
type manifest struct {
	Job []job `toml:"job"`
}

// runManifest runs every job in path in order, aborting on the first
// failure — a batch has no partial-success semantics.
func runManifest(path string, verbose bool) error {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return fmt.Errorf("dtexconv: reading manifest %s: %w", path, err)
	}

	var m manifest
	if err := tree.Unmarshal(&m); err != nil {
		return fmt.Errorf("dtexconv: parsing manifest %s: %w", path, err)
	}
	if len(m.Job) == 0 {
		return fmt.Errorf("dtexconv: manifest %s has no [[job]] entries", path)
	}

	for i, j := range m.Job {
		if len(j.Input) == 0 {
			return fmt.Errorf("dtexconv: manifest %s job %d: no input files", path, i)
		}
		if j.Format == "" {
			return fmt.Errorf("dtexconv: manifest %s job %d: format is required", path, i)
		}
		if err := runJob(j, verbose); err != nil {
			return fmt.Errorf("dtexconv: manifest %s job %d: %w", path, i, err)
		}
	}
	return nil
}
