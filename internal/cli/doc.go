// Package cli implements the command-line presentation layer: colored
// reports, machine-readable outputs, the interactive prompt, shell
// completion scripts and the spinners shown in watch and batch modes.
package cli
