package main

import "fmt"

type versionCmd struct{ *root }

func (v *versionCmd) Run() error {
	fmt.Printf("%s version %s\n", v.program, version)
	if commit != "" {
		fmt.Printf("commit %s built %s\n", commit, date)
	}
	return nil
}
