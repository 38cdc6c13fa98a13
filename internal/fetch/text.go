// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// dropSelectors removes markup that never carries filing prose. Inline XBRL
// filings hide their machine-readable header in a display:none block.
const dropSelectors = `script, style, head, noscript, [style*="display:none"], [style*="display: none"]`

// blockSelectors end a line of text.
const blockSelectors = "p, div, br, tr, li, h1, h2, h3, h4, h5, h6, table, td"

// IsHTML reports whether a downloaded document should be run through
// HTMLToText, judging by its name first and its leading bytes second.
func IsHTML(name string, body []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".htm", ".html", ".xhtml":
		return true
	case ".txt":
		return false
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.Contains(head, []byte("<html"))
}

// HTMLToText extracts readable text from a filing document. Block elements
// end lines, runs of whitespace collapse to one space and blank lines are
// dropped.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find(dropSelectors).Remove()
	doc.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return goquery.NodeName(sel) == "ix:header"
	}).Remove()
	doc.Find(blockSelectors).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, line := range strings.Split(root.Text(), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
