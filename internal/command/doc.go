// Package command implements a line-oriented command dispatcher for text
// files made of keyword sections.
//
// A file is a sequence of physical lines. Some lines begin a command and
// carry parameters; the lines that follow are data for that command until
// the next command line. A Classifier decides which lines are commands. The
// Reader looks the command up in the table on top of its context stack and
// calls the registered Handler, which consumes its own data lines and pushes
// back the first line that does not belong to it.
//
// Handlers may open a nested vocabulary with Enter. The nested table is
// consulted instead of the enclosing one until the scope ends, and it is
// always popped before Enter returns, so the stack depth seen by the
// dispatch loop never changes across a handler call.
//
// Errors are latched: the first fatal error is kept and later ones are
// dropped. Warnings accumulate. An abort requested through Abort or a
// cancelled context stops the read with ErrAborted, which is not an error
// status.
package command
