// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mysqlbulk implements the bulk-ingestion core of a MySQL/MariaDB
// client-side driver: the LOAD DATA [LOCAL] INFILE responder (BulkLoader)
// and a row-level write-to-server façade (BulkCopy) built on top of it.
//
// The package does not open connections, authenticate, or parse ordinary
// result sets; it consumes a Session supplied by the surrounding driver and
// a RowSource supplied by the caller.
package mysqlbulk
