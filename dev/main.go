package main

import (
	"context"
	devenv "dealcrawl-backend/dev/env"
	"dealcrawl-backend/lib/dealstore/db"
	"dealcrawl-backend/lib/sqliteutil"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func createDb(path, schema string) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	database, err := sqliteutil.OpenDB(path)
	if err != nil {
		return err
	}
	defer database.Close()
	_, err = database.ExecContext(context.Background(), schema)
	return err
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil {
		return err
	}

	path, err := devenv.ResolvePath("<dev_state>/main.sqlite")
	if err != nil {
		return err
	}
	err = createDb(path, db.Schema)
	if err != nil {
		return err
	}

	fmt.Println("copy cmd/dealcrawl/config.example.json5 to config.json5 to configure dealcrawl")
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
