// Package main provides the formsubmit CLI: a local dev server for the form,
// an interactive terminal session and an offline validator.
package main

func main() {
	Execute()
}
