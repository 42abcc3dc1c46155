//go:build tools

package main

// Build-time tooling kept on the module graph.
import (
	_ "github.com/swaggo/swag"
)
