package main

import (
	_ "time/tzdata"

	"github.com/Alijeyrad/nutriplan_backend/cmd"
)

func main() {
	cmd.Execute()
}
