// Command h5view prints the structure of an HDF5 file as an indented
// tree: groups, datasets with shape, element type and storage layout,
// and optionally attributes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/scigolib/h5view"
)

var showAttrs = flag.Bool("attrs", false, "print entity attributes")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-attrs] <file.h5>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	path := flag.Arg(0)

	info, err := h5view.Load(path)
	if err != nil {
		logger.Error("load failed", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%s)\n", info.Name, humanize.IBytes(info.Size))

	if *showAttrs {
		for _, e := range info.Entities {
			printEntity(e, 1)
		}
		return
	}
	for _, node := range info.ViewNodes() {
		printViewNode(node, 1)
	}
}

func printViewNode(node h5view.ViewNode, depth int) {
	fmt.Printf("%s%s\n", indent(depth), node.Label)
	for _, child := range node.Children {
		printViewNode(child, depth+1)
	}
}

// printEntity renders the full entity tree including attribute lines,
// which the view projection drops.
func printEntity(e h5view.Entity, depth int) {
	switch v := e.(type) {
	case *h5view.GroupInfo:
		fmt.Printf("%s%s/ (%s)\n", indent(depth), v.Name, v.LinkKind)
		printAttrs(v.Attrs, depth+1)
		for _, child := range v.Entities {
			printEntity(child, depth+1)
		}
	case *h5view.DatasetInfo:
		fmt.Printf("%s%s shape=%v %s %s (%s)\n",
			indent(depth), v.Name, v.Shape, v.Dtype, v.Layout, v.LinkKind)
		printAttrs(v.Attrs, depth+1)
	}
}

func printAttrs(attrs map[string]string, depth int) {
	keys := lo.Keys(attrs)
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s@%s = %s\n", indent(depth), key, attrs[key])
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
