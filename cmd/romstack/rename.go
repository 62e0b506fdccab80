package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/organize"
	"github.com/romstackapp/romstack/internal/scanner"
)

// runRename previews a rename pass over the collection and applies it
// when -apply is set. Renaming only needs file names, so the command
// walks the tree instead of running a full hashing scan.
func runRename(ctx context.Context, a *app) error {
	root, err := a.collectionRoot()
	if err != nil {
		return err
	}

	walker := scanner.NewWalker(a.log.Logger, a.cfg.Library.Extensions, a.cfg.Output.Dir)
	var paths []string
	for wr := range walker.Walk(ctx, root) {
		if wr.Error != nil || wr.Skipped {
			continue
		}
		paths = append(paths, wr.Path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r := do.MustInvoke[*organize.Renamer](a.injector)
	plans, err := r.Preview(paths, a.cfg.Rename.Convention, a.cfg.Rename.Template)
	if err != nil {
		return err
	}

	if len(plans) == 0 {
		fmt.Println("Nothing to rename, names already follow the convention.")
		return nil
	}

	fmt.Printf("%d renames planned (%s):\n", len(plans), a.cfg.Rename.Convention)
	for _, p := range plans {
		fmt.Printf("  %s -> %s\n", filepath.Base(p.OldPath), filepath.Base(p.NewPath))
	}

	if !a.cfg.Rename.Apply {
		fmt.Println("\nPreview only. Re-run with -apply to rename.")
		return nil
	}

	if !a.cfg.Organize.AssumeYes {
		if !a.promptYesNo(fmt.Sprintf("Apply %d renames? [y/N]: ", len(plans))) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	renamed, err := r.Apply(ctx, plans)
	if err != nil {
		return err
	}
	fmt.Printf("Renamed %d files.\n", renamed)
	return nil
}
