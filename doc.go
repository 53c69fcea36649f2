// Package bigcalc implements an arbitrary-precision floating-point calculator.
//
// Expressions are made of decimal numbers, the operators + - * / % and **,
// postfix ! for factorial, parentheses, the constants pi, inf, and nan, and
// the functions sin, cos, tan, exp, and sqrt, which always take their
// argument in parentheses. Evaluation follows IEEE-754 conventions for
// infinities and NaN at a configurable precision, 64 bits by default.
//
// Operator binding is unusual in one respect: binary + shares a level with
// *, / and %, while binary - binds loosest of all. So "1 + 2 * 3" is 9 and
// "1 - 2 + 3" is -4. Use parentheses when that matters.
//
// Parse an expression once and evaluate it with any number of contexts, or
// use EvalString to do both at once.
package bigcalc
