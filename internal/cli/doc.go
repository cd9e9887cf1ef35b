// Package cli parses the inpinfo command line into a deck list and a
// configuration, and carries the process exit codes.
package cli
