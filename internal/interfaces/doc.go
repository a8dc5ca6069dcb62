// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Data Access Interfaces
//
//   - BookCatalog: Book lookup for the lifecycle service (internal/reading/service.go)
//   - SessionStore: Reading session persistence (internal/reading/service.go)
//   - ProgressStore: Progress log persistence (internal/reading/service.go)
//   - BookStore: Book management over HTTP (internal/http/books.go)
//   - BoundsSource: Neighbouring-entry lookups for validation (internal/timeline/validator.go)
//
// ## Statistics Interfaces
//
//   - SessionSource: Completion counts (internal/stats/aggregator.go)
//   - ProgressSource: Page sums and day totals (internal/stats/aggregator.go)
//   - PageReader: Highest recorded page per book (internal/http/books.go)
//   - Recalculator: Stored-percentage recomputation (internal/http/books.go)
//
// ## Background Task Interfaces
//
//   - PercentageRecalculator: Worker-side recomputation (internal/tasks/recalculate.go)
//   - SweepRunner: Consistency audit execution (internal/tasks/consistency_sweep.go)
//   - SweepRecorder: Sweep outcome persistence (internal/tasks/consistency_sweep.go)
//
// ## Settings Interfaces
//
//   - GoalSource: Reading goal lookups (internal/http/stats.go)
//
// # Adding a New Consistency Rule
//
// To audit a new invariant during the nightly sweep:
//
//  1. Add an IssueKind constant in internal/consistency/checker.go
//
//  2. Add a check method and call it from Run:
//
//     func (c *Checker) checkSomething(report *Report, ...) {
//         report.Issues = append(report.Issues, Issue{Kind: IssueSomething, ...})
//     }
//
// Issues surface in the sweep summary stored in the settings table and in
// the check-consistency command output.
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
