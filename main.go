package main

import "github.com/andresmejia3/facebatch/cmd"

func main() {
	cmd.Execute()
}
