// Package ui hosts the thin interactive surfaces: the console command-event
// logger and the terminal confirmation prompter.
package ui
