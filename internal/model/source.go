// Package model defines the data structures shared by the scanner, synthesizers and workflow.
package model

// Path represents a file system path.
type Path string
