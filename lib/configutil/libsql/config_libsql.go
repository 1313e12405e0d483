package configlibsql

import (
	"database/sql"
	devenv "dealcrawl-backend/dev/env"
	"dealcrawl-backend/lib/sqliteutil"
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the local sqlite file at `file` unless `url` points to a
// remote libsql database.
func (config Struct) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a database file was not specified")
		}
		dbpath, err := devenv.ResolvePath(config.File)
		if err != nil {
			return nil, err
		}
		return sqliteutil.OpenDB(dbpath)
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	db, err := sql.Open("libsql", config.Url+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
