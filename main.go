package main

import "github.com/inovacc/patientdesk/cmd"

func main() {
	cmd.Execute()
}
