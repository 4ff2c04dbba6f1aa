package main

import "github.com/alpaylan/ruggle/cmd"

func main() {
	cmd.Execute()
}
