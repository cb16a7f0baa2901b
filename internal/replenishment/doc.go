// Package replenishment implements the inventory replenishment and risk
// planning calculator: from one SKU's stock, demand, supply-chain timing and
// unit economics it derives the reorder point, safety stock, an order-up-to
// quantity, the projected stockout date, a risk status and the revenue at
// risk when stock runs out before replenishment can land.
//
// Evaluate is a pure function. Inputs are expected to pass Snapshot.Validate
// before they reach it.
package replenishment
