package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagekit/docload"
	"github.com/pagekit/docload/raster"
)

func main() {
	args := os.Args[1:]

	var cfg docload.FileConfig
	if len(args) >= 2 && args[0] == "-config" {
		loaded, err := docload.LoadConfig(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
		args = args[2:]
	}

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	loader := docload.New(cfg.Loader)
	renderer := raster.New(cfg.Raster)

	switch args[0] {
	case "text":
		cmdText(loader, args[1:])
	case "image":
		cmdImage(renderer, args[1:])
	case "images":
		cmdImages(renderer, args[1:])
	case "quality":
		cmdQuality(loader, args[1:])
	case "formats":
		cmdFormats()
	case "mcp":
		cmdMCP(loader, renderer)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `docload — per-page document text extraction and rasterization

usage:
  docload [-config file.yaml] <command> [args]

commands:
  text    <file>         Extract per-page text, printed page by page.
  image   <file> <page>  Render one page as base64 JPEG to stdout.
  images  <file>         Render every PDF page, JSON page map to stdout.
  quality <file>         Score PDF extraction quality (JSON).
  formats                List supported extensions and MIME types.
  mcp                    Serve the loader as MCP tools over stdio.
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func cmdText(loader *docload.Loader, args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("text requires a file path"))
	}
	pages, err := loader.ConvertToText(context.Background(), args[0])
	if err != nil {
		fatal(err)
	}

	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		fmt.Printf("--- page %d ---\n%s\n", n, pages[n])
	}
}

func cmdImage(renderer *raster.Renderer, args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("image requires a file path and a page number"))
	}
	page, err := strconv.Atoi(args[1])
	if err != nil || page < 1 {
		fatal(fmt.Errorf("page must be a positive integer"))
	}
	res, err := renderer.ConvertPage(context.Background(), args[0], page)
	if err != nil {
		fatal(err)
	}
	if res.Status != raster.StatusOK {
		fatal(fmt.Errorf("page %d: %s", page, res.Status))
	}
	fmt.Println(res.Data)
}

func cmdImages(renderer *raster.Renderer, args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("images requires a file path"))
	}
	pages, err := renderer.ConvertDocument(context.Background(), args[0])
	if err != nil {
		fatal(err)
	}
	out, err := json.Marshal(pages)
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func cmdQuality(loader *docload.Loader, args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("quality requires a file path"))
	}
	q, err := loader.AnalyzePDF(context.Background(), args[0])
	if err != nil {
		fatal(err)
	}
	out, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func cmdFormats() {
	out, err := json.MarshalIndent(map[string]any{
		"extensions": docload.SupportedFileTypes(),
		"mime_types": docload.SupportedMIMETypes(),
	}, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func cmdMCP(loader *docload.Loader, renderer *raster.Renderer) {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "docload",
		Version: "0.1.0",
	}, nil)
	docload.RegisterMCP(srv, loader, renderer)

	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		fatal(err)
	}
}
