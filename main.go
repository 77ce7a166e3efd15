/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/venusseo127/dentalApp/cmd"

func main() {
	cmd.Execute()
}
