// Package ir provides the data types shared by every enginehost package.
//
// This package contains definitions only. All other internal packages import
// ir; ir imports nothing internal, so the definition types stay the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Optional structure is explicit: a nil *Dependencies means "no services"
//     and a nil Engines map means the host declared no engine grants at all.
//   - Definitions are frozen by value: Clone returns deep copies so that a
//     registered definition never aliases caller-owned slices or maps.
//   - All JSON tags use snake_case.
//   - Journal ordering uses a logical clock (seq), never wall-clock time.
package ir
