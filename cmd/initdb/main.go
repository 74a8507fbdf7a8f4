package main

import (
	"fmt"

	"github.com/d60-Lab/techtrends/config"
	"github.com/d60-Lab/techtrends/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	db := must(database.Open(cfg.Database.Path))
	defer database.Close(db)

	if err := database.InitSchema(db); err != nil {
		panic(err)
	}
	n := must(database.Seed(db, database.DefaultPosts))
	if n == 0 {
		fmt.Printf("%s already has posts, nothing seeded\n", cfg.Database.Path)
		return
	}
	fmt.Printf("initialized %s with %d posts\n", cfg.Database.Path, n)
}
