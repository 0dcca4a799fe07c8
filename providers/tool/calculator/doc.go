// Package calculator provides the calculate tool, a locally executed
// arithmetic tool supporting addition, subtraction, multiplication and
// division. Its operator parameter is an enumeration.
package calculator
