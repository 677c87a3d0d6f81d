package main

import (
	_ "github.com/go-sql-driver/mysql" // Register MySQL driver
	_ "github.com/lib/pq"              // Register Postgres driver
	_ "modernc.org/sqlite"             // Register SQLite driver
)

func main() {
	Execute()
}
