// Package scenario defines the shared shape of every planning calculator:
// a snapshot of inputs goes in, a derived metrics snapshot comes out.
//
// Each tool supplies its own formulas as an Evaluator; the Registry and Batch
// helpers carry the scaffolding so it is not repeated per tool.
package scenario
