package docload

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagekit/docload/raster"
)

// MCP tool argument and result types.

type textArgs struct {
	Path string `json:"path" jsonschema:"Path to the document to extract"`
}

type textResult struct {
	Pages PageTextMap `json:"pages"`
}

type pageImageArgs struct {
	Path string `json:"path" jsonschema:"Path to the document"`
	Page int    `json:"page" jsonschema:"1-indexed page number"`
}

type pageImageResult struct {
	Data   string `json:"data"`
	Status string `json:"status"`
}

type imagesArgs struct {
	Path string `json:"path" jsonschema:"Path to the document"`
}

type imagesResult struct {
	Pages raster.PageImageMap `json:"pages"`
}

type detectArgs struct {
	Path string `json:"path" jsonschema:"Path to the document"`
}

type detectResult struct {
	Format string `json:"format"`
}

type formatsResult struct {
	Extensions []string          `json:"extensions"`
	MIMETypes  map[string]string `json:"mime_types"`
}

// RegisterMCP registers document loading tools on an MCP server.
func RegisterMCP(srv *mcp.Server, loader *Loader, renderer *raster.Renderer) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docload_text",
		Description: "Extract per-page text from a document (pdf, docx, pptx, txt).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args textArgs) (*mcp.CallToolResult, textResult, error) {
		pages, err := loader.ConvertToText(ctx, args.Path)
		if err != nil {
			return nil, textResult{}, err
		}
		return nil, textResult{Pages: pages}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docload_page_image",
		Description: "Render one page of a document as a base64-encoded JPEG.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pageImageArgs) (*mcp.CallToolResult, pageImageResult, error) {
		res, err := renderer.ConvertPage(ctx, args.Path, args.Page)
		if err != nil {
			return nil, pageImageResult{}, err
		}
		return nil, pageImageResult{Data: res.Data, Status: string(res.Status)}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docload_images",
		Description: "Render every page of a PDF as base64-encoded JPEGs.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args imagesArgs) (*mcp.CallToolResult, imagesResult, error) {
		pages, err := renderer.ConvertDocument(ctx, args.Path)
		if err != nil {
			return nil, imagesResult{}, err
		}
		return nil, imagesResult{Pages: pages}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docload_detect",
		Description: "Detect the routing format of a document from its extension.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args detectArgs) (*mcp.CallToolResult, detectResult, error) {
		format, err := loader.Detect(args.Path)
		if err != nil {
			return nil, detectResult{}, err
		}
		return nil, detectResult{Format: string(format)}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docload_formats",
		Description: "List supported document extensions and MIME types.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, formatsResult, error) {
		return nil, formatsResult{
			Extensions: SupportedFileTypes(),
			MIMETypes:  SupportedMIMETypes(),
		}, nil
	})
}
