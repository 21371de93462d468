// Package logs reads the lingq log file for `lingq logs`.
//
// Last returns the final lines of the file and Follow polls for lines
// appended after an offset until its context ends.
package logs
