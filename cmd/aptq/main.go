// Command aptq queries the package cache of a Debian system, or of a
// filesystem tree laid out like one.
package main

func main() {
	execute()
}
