// Package project manages the on-disk layout of a dbmgr project.
//
// A project is a directory holding dbmgr.yaml and a Database tree with one
// directory per deployment phase:
//
//	dbmgr.yaml
//	Database/
//	  default.db.token.config
//	  Deltas/                   versioned *.up scripts, run once each
//	    Blue/                   optional blue/green split
//	    Green/
//	  Current/                  idempotent object definitions
//	    Views/vw_orders.sql
//	    StoredProcedures/sp_place_order.sql
//	  Post/                     scripts run on every deployment
//
// The package creates that layout (Initialize), generates new delta scripts
// from embedded templates (NewDelta), writes extracted object definitions
// (GenerateImage and Overlay), and hands the phase directories to a
// scripts.Repository (Repository).
//
// Example usage:
//
//	proj := project.New(".")
//
//	d, err := dialect.Get("mssql")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := proj.Initialize(project.InitOptions{Dialect: d}); err != nil {
//		log.Fatal(err)
//	}
//
//	base, err := proj.NewDelta("add orders table", project.DeltaOptions{Down: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println("created", base)
package project
