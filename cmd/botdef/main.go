// Command botdef loads a declarative bot project, resolves the interfaces its
// integrations implement and validates, describes and publishes the result.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
