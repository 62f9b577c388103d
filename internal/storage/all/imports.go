// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "sqlite"   (orderetl/internal/storage/sqlite)
//   - "postgres" (orderetl/internal/storage/postgres)
//
// Typical usage (in a wiring layer such as cmd/orderetl):
//
//	import _ "orderetl/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:    cfg.Load.Kind,
//	    DSN:     cfg.Load.DB.DSN,
//	    Table:   cfg.Load.DB.Table,
//	    Columns: records.OutputColumns(),
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//
//	if cfg.Load.DB.AutoCreateTable {
//	    if err := storage.EnsureTable(ctx, cfg.Load.Kind, cfg.Load.DB.Table, repo); err != nil {
//	        // handle DDL error
//	    }
//	}
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the storage
// abstraction rather than individual backends. A binary that supports only a
// subset of backends can blank-import the required backend packages directly
// instead of this package.
package all

import (
	_ "orderetl/internal/storage/postgres"
	_ "orderetl/internal/storage/sqlite"
)
