// Package util holds small helpers shared across packages: size strings,
// input sanitizing and pointers.
package util
