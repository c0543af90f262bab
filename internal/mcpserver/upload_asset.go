package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// Assets land under attachments/ inside the vault and are served back at
// /attachments/<name> by the HTTP API.
const (
	assetDir       = "attachments"
	assetSizeLimit = 10 << 20 // 10 MB
)

var extByMIME = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

var assetExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".webp": true, ".svg": true, ".pdf": true,
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type assetSaved struct {
	Path     string `json:"path"`
	Markdown string `json:"markdown"`
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, _ := req.RequireString("filename")

	var body []byte
	var hintExt string
	if strings.HasPrefix(src, "data:") {
		body, hintExt, err = assetFromDataURI(src)
	} else {
		body, hintExt, err = assetFromURL(ctx, src)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(body) > assetSizeLimit {
		return mcp.NewToolResultError(fmt.Sprintf("asset too large: %d bytes (limit %d)", len(body), assetSizeLimit)), nil
	}

	if name == "" {
		name = assetName(src, hintExt)
	}
	name = cleanAssetName(name)

	ext := strings.ToLower(filepath.Ext(name))
	if !assetExts[ext] {
		return mcp.NewToolResultError("unsupported extension " + ext + " (png, jpg, jpeg, gif, webp, svg, pdf)"), nil
	}
	if err := sniffAsset(body, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel := filepath.Join(assetDir, name)
	if _, readErr := s.store.Read(rel); readErr == nil {
		return mcp.NewToolResultError("asset already exists: " + rel), nil
	}
	if err := s.store.Write(rel, body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save asset: %v", err)), nil
	}

	servedAt := "/" + assetDir + "/" + name
	out, _ := json.Marshal(assetSaved{
		Path:     servedAt,
		Markdown: fmt.Sprintf("![%s](%s)", name, servedAt),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// assetFromDataURI decodes a base64 data:<mime>;base64,<payload> URI and
// returns the payload plus the extension implied by its MIME type.
func assetFromDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("data URI must be base64 encoded")
	}

	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if body, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", fmt.Errorf("decode data URI: %w", err)
		}
	}

	mime, _, _ := strings.Cut(strings.TrimSuffix(meta, ";base64"), ";")
	ext, ok := extByMIME[mime]
	if !ok {
		return nil, "", fmt.Errorf("unsupported MIME type %q in data URI", mime)
	}
	return body, ext, nil
}

// assetFromURL downloads an http(s) URL, refusing loopback and cloud
// metadata destinations including across redirects.
func assetFromURL(ctx context.Context, src string) ([]byte, string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err := refuseHost(u.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			return refuseHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, assetSizeLimit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if len(body) > assetSizeLimit {
		return nil, "", fmt.Errorf("asset too large: exceeds %d bytes", assetSizeLimit)
	}

	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return body, extByMIME[mime], nil
}

// refuseHost rejects loopback and cloud metadata addresses.
func refuseHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("refused host %q", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		resolved, err := net.LookupIP(host)
		if err != nil || len(resolved) == 0 {
			// DNS failures surface from the client itself.
			return nil
		}
		ip = resolved[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("refused host %q: loopback address", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("refused host %q: cloud metadata address", host)
	}
	return nil
}

// assetName derives a filename from the source URL, falling back to a UUID
// with the MIME-derived extension.
func assetName(src, hintExt string) string {
	if !strings.HasPrefix(src, "data:") {
		if u, err := url.Parse(src); err == nil {
			base := path.Base(u.Path)
			if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	if hintExt == "" {
		hintExt = ".bin"
	}
	return uuid.New().String() + hintExt
}

// cleanAssetName strips path components and unsafe characters.
func cleanAssetName(name string) string {
	name = unsafeNameRe.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." {
		name = uuid.New().String()
	}
	return name
}

// sniffAsset checks that the payload matches its claimed extension.
func sniffAsset(body []byte, ext string) error {
	if ext == ".svg" {
		head := body
		if len(head) > 1024 {
			head = head[:1024]
		}
		if !bytes.Contains(head, []byte("<svg")) {
			return fmt.Errorf("payload is not an SVG document")
		}
		return nil
	}

	mime, _, _ := strings.Cut(http.DetectContentType(body), ";")
	sniffed := extByMIME[mime]

	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if sniffed != ext {
		return fmt.Errorf("payload does not match extension %s (detected %s)", ext, mime)
	}
	return nil
}
