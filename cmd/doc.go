// Package cmd contains the command-line utilities of wildbench: collecting results, searching step parameters,
// generating permutations, plotting and splitting datasets. It also contains the flags and setup shared by these
// utilities.
package cmd
