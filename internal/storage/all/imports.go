// Package all registers every built-in storage backend with the storage
// factory. Import it for side effects from the wiring layer:
//
//	import _ "ccerddap/internal/storage/all"
//
// after which storage.New accepts the kinds "sqlite", "postgres", "mssql"
// and "mysql".
package all

import (
	_ "ccerddap/internal/storage/mssql"
	_ "ccerddap/internal/storage/mysql"
	_ "ccerddap/internal/storage/postgres"
	_ "ccerddap/internal/storage/sqlite"
)
