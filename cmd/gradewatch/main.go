package main

import (
	// Embedded zone database so LOG_TIMEZONE works in minimal containers.
	_ "time/tzdata"
)

func main() {
	Execute()
}
