// Command vullpack is a thin CLI exercising the vpak writer and reader
// end to end: pack a directory's files into an archive, or list and
// extract entries from one. Its flags and exit codes are not part of
// any compatibility surface.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vull-engine/vull/vpak"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "pack":
		err = runPack(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "vullpack:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vullpack pack|list|extract ...")
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	out := fs.String("o", "out.vpak", "output archive path")
	level := fs.String("level", "normal", "compression level: fast|normal|ultra")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, err := vpak.NewWriter(*out, parseLevel(*level))
	if err != nil {
		return err
	}

	for _, dir := range fs.Args() {
		if err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			es := w.AddEntry(rel, vpak.EntryBlob)
			if _, err := io.Copy(es, f); err != nil {
				return err
			}
			return es.Finish()
		}); err != nil {
			return err
		}
	}

	return w.Finish()
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("list requires an archive path")
	}

	r, err := vpak.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	for _, name := range r.Names() {
		stat, err := r.Stat(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-8d %s\n", stat.Size, stat.Name)
	}
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	destDir := fs.String("C", ".", "destination directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("extract requires an archive path")
	}

	r, err := vpak.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	for _, name := range r.Names() {
		data, err := vpak.ReadAll(r, name)
		if err != nil {
			return err
		}
		dest := filepath.Join(*destDir, name)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func parseLevel(s string) vpak.Level {
	switch s {
	case "fast":
		return vpak.LevelFast
	case "ultra":
		return vpak.LevelUltra
	default:
		return vpak.LevelNormal
	}
}
