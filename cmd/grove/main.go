// Package main provides the grove CLI for training and inspecting models.
package main

func main() {
	Execute()
}
