/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/espcarve/espcarve/cmd/espcarve/cmd"

func main() {
	cmd.Execute()
}
