// Command hakanacore drives one offline analysis pass: load project
// config, decode a pre-parsed set of files (the scanner front end is
// out of this module's scope), run the pipeline, persist the
// result to the on-disk cache, and report what happened.
package main

import (
	"context"
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/cache"
	"github.com/slackhq/hakana-sub001/internal/clog"
	"github.com/slackhq/hakana-sub001/internal/config"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/pipeline"
)

// buildChecksum invalidates the cache across binary upgrades; set at
// link time with -ldflags "-X main.buildChecksum=...".
var buildChecksum = "dev"

func main() {
	filesPath := flag.String("files", "", "gob-encoded []*ast.File to analyze")
	projectDir := flag.String("dir", ".", "project directory (used to discover hakana.json/.yaml)")
	cachePath := flag.String("cache", "hakana-cache.db", "sqlite cache database path")
	flag.Parse()

	log := clog.Stderr()
	if err := run(*filesPath, *projectDir, *cachePath, log); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run(filesPath, projectDir, cachePath string, log *clog.Logger) error {
	if filesPath == "" {
		return fmt.Errorf("hakanacore: -files is required (gob-encoded []*ast.File)")
	}

	cfg := config.Default()
	if cfgPath, err := config.Find(projectDir); err != nil {
		return fmt.Errorf("locating config: %w", err)
	} else if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log.Infof("loaded config from %s", cfgPath)
	}

	files, err := decodeFiles(filesPath)
	if err != nil {
		return err
	}
	log.Infof("loaded %d files", len(files))

	store, err := cache.Open(cachePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer store.Close()

	start := time.Now()
	ctx := context.Background()
	in := interner.New()

	cb, err := pipeline.Scan(ctx, in, files)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	result, err := pipeline.Run(ctx, cb, pipeline.Options{Config: cfg, Log: log})
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	elapsed := time.Since(start)

	for _, iss := range result.Issues {
		fmt.Println(iss.String())
	}

	payload, err := cache.Encode(buildChecksum, result.Issues)
	if err != nil {
		return fmt.Errorf("encoding cache payload: %w", err)
	}
	if err := store.Put(filesPath, buildChecksum, buildChecksum, payload); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}

	log.Infof("analyzed %d functionlikes in %s, found %d issues, cached %s",
		len(cb.AllFunctionLikes()), elapsed.Round(time.Millisecond), len(result.Issues), humanize.Bytes(uint64(len(payload))))
	return nil
}

func decodeFiles(path string) ([]*ast.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var files []*ast.File
	if err := gob.NewDecoder(f).Decode(&files); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return files, nil
}
