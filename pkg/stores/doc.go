// Package stores persists the bootstrap journal: one row per run and one
// row per executed stage, kept in a local SQLite database so `dockstrap
// history` can show what happened on previous invocations. Journal
// failures never gate the pipeline.
package stores
