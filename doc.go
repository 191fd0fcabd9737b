// Package medallion implements a layered batch pipeline over per-project
// financial records. Raw budget CSV files and SQLite expense databases are
// ingested (bronze), cleaned and converted to EUR with a live exchange-rate
// snapshot (silver), joined into a denormalized reporting table (gold), and
// finally exploded into a small star schema of dimension tables plus a fact
// table, all written as CSV files.
//
// The stages are plain functions over typed record slices:
//   - Bronze: BronzeBudget, BronzeExpenses
//   - Silver: SilverBudget, SilverExpenses
//   - Gold:   Gold
//   - Star:   BuildStar, WriteOutputs
//
// Pipeline ties them together for the `mdp` command-line tool.
//
// Everything is recomputed on every run; there is no state between runs
// beyond the output files. The exchange rate is fetched once per run and
// applied to all historical rows, a documented approximation of the rate
// provider's latest-only endpoint (see RateProvider).
package medallion
