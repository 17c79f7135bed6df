// Package scripts discovers the script files of a deployment and works out the
// order they run in.
//
// Scripts live in three phase directories:
//
//	Database/Deltas/    versioned, run once (*.up)
//	Database/Current/   idempotent objects, rerun when their content changes
//	Database/Post/      run on every deployment
//
// Current and Post scripts declare their dependencies inline with {{name}} markers,
// where name is the file name of another script without its extension. The markers
// are usually placed in SQL comments:
//
//	--{{fn_order_total}}
//	CREATE VIEW vw_orders AS SELECT id, dbo.fn_order_total(id) AS total FROM orders
//
// ExtractDependencies turns those markers into the reverse-dependency map consumed
// by graph.Rank, and Order sorts the files by the resulting ranks.
package scripts
