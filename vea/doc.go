// Package vea implements the vea scripting language: a recovering lexer, a
// Pratt parser producing a span-tagged AST, and a tree-walking interpreter.
//
// The language supports:
//   - Bindings via `let name = expr;` and mutation via `=` and the compound
//     operators (`+=`, `-=`, `*=`, `/=`, `%=`, `<<=`, `>>=`, `&=`, `|=`, `^=`).
//   - Integers, single-quoted strings, booleans and the `_` none literal.
//   - Arithmetic, bitwise, shift and comparison operators.
//   - `if`/`else`, `while`, blocks, and `print(expr);`.
//   - Functions via `fn name(args) { ... return expr; }`, closing over the
//     scope they were declared in.
//   - Object literals (`struct { let a = 1; }`) read via `obj.a` or
//     `obj['a']`, and set literals (`set { 1, 2 }`).
//
// Comments begin with `//`. Every token, node and diagnostic carries a byte
// span into the source so hosts can render their own reports.
package vea
