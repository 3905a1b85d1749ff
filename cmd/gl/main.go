package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("ganttloom")
	if err != nil {
		fmt.Fprintln(os.Stderr, "gl: ganttloom not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"ganttloom"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "gl: %v\n", err)
		os.Exit(1)
	}
}
