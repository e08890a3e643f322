package main

import (
	"github.com/ValentinKolb/zMap/cmd"
)

func main() {
	cmd.Execute()
}
