// Package version contains information on the current version of the
// library and its command-line tools. It is split from the main packages
// for easy use.
package version

// Current is the string representing the current version of lens.
const Current = "0.1.0"
