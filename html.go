// Copyright 2026 The mdinline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdinline

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// parseHTMLTag recognizes one of the six [raw HTML] forms at
// source[i:], where source[i] == '<': open tag, closing tag, comment,
// processing instruction, declaration, or CDATA section. Recognition
// is structural only; nothing is validated beyond the form's bounds.
//
// [raw HTML]: https://spec.commonmark.org/0.30/#raw-html
func parseHTMLTag(source []byte, i int) (end int, ok bool) {
	const (
		cdataPrefix = "<![CDATA["
		cdataSuffix = "]]>"
	)

	if i+1 >= len(source) {
		return 0, false
	}
	switch source[i+1] {
	case '?':
		// Processing instruction.
		j := indexAfter(source[i+2:], "?>")
		if j < 0 {
			return 0, false
		}
		return i + 2 + j, true
	case '!':
		rest := source[i+2:]
		switch {
		case len(rest) > 0 && isASCIILetter(rest[0]):
			// Declaration.
			for j := i + 2; j < len(source); j++ {
				if source[j] == '>' {
					return j + 1, true
				}
			}
			return 0, false
		case hasBytePrefix(rest, "--"):
			// Comment. The text may not start with '>' or '->',
			// may not contain "--", and must end with "-->".
			textStart := i + 4
			if text := source[textStart:]; hasBytePrefix(text, ">") || hasBytePrefix(text, "->") {
				return 0, false
			}
			for j := textStart; j < len(source); j++ {
				if !hasBytePrefix(source[j:], "--") {
					continue
				}
				if !hasBytePrefix(source[j:], "-->") {
					return 0, false
				}
				return j + 3, true
			}
			return 0, false
		case hasBytePrefix(source[i:], cdataPrefix):
			j := indexAfter(source[i+len(cdataPrefix):], cdataSuffix)
			if j < 0 {
				return 0, false
			}
			return i + len(cdataPrefix) + j, true
		default:
			return 0, false
		}
	case '/':
		return parseHTMLClosingTag(source, i)
	default:
		return parseHTMLOpenTag(source, i)
	}
}

// indexAfter returns the offset just past the first occurrence of
// search in b, or -1 if absent.
func indexAfter(b []byte, search string) int {
	i := strings.Index(string(b), search)
	if i < 0 {
		return -1
	}
	return i + len(search)
}

// parseHTMLOpenTag parses an [open tag] at source[i:],
// where source[i] == '<'.
//
// [open tag]: https://spec.commonmark.org/0.30/#open-tag
func parseHTMLOpenTag(source []byte, i int) (end int, ok bool) {
	j, ok := parseHTMLTagName(source, i+1)
	if !ok {
		return 0, false
	}
	for {
		beforeSpace := j
		j, ok = skipLinkSpace(source, j)
		if !ok || j >= len(source) {
			return 0, false
		}
		switch source[j] {
		case '/':
			if j+1 >= len(source) || source[j+1] != '>' {
				return 0, false
			}
			return j + 2, true
		case '>':
			return j + 1, true
		}
		if j == beforeSpace {
			return 0, false
		}
		j, ok = parseHTMLAttribute(source, j)
		if !ok {
			return 0, false
		}
	}
}

// parseHTMLClosingTag parses a [closing tag] at source[i:],
// where source[i] == '<'.
//
// [closing tag]: https://spec.commonmark.org/0.30/#closing-tag
func parseHTMLClosingTag(source []byte, i int) (end int, ok bool) {
	j, ok := parseHTMLTagName(source, i+2)
	if !ok {
		return 0, false
	}
	j, ok = skipLinkSpace(source, j)
	if !ok || j >= len(source) || source[j] != '>' {
		return 0, false
	}
	return j + 1, true
}

func parseHTMLTagName(source []byte, i int) (end int, ok bool) {
	if i >= len(source) || !isASCIILetter(source[i]) {
		return 0, false
	}
	i++
	for i < len(source) && (isLetterDigit(source[i]) || source[i] == '-') {
		i++
	}
	return i, true
}

// parseHTMLAttribute parses an attribute name with an optional value.
// The name matches [a-zA-Z_:][a-zA-Z0-9_.:-]*; the value may be
// unquoted, single-quoted, or double-quoted.
func parseHTMLAttribute(source []byte, i int) (end int, ok bool) {
	if c := source[i]; !isASCIILetter(c) && c != '_' && c != ':' {
		return 0, false
	}
	i++
	for i < len(source) && (isLetterDigit(source[i]) || strings.IndexByte("_.:-", source[i]) >= 0) {
		i++
	}

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since that would make future attributes fail.
	j, ok := skipLinkSpace(source, i)
	if !ok || j >= len(source) || source[j] != '=' {
		return i, true
	}
	j, ok = skipLinkSpace(source, j+1)
	if !ok || j >= len(source) {
		// There must be a value following the equals sign.
		return 0, false
	}
	switch c := source[j]; {
	case c == '\'' || c == '"':
		for k := j + 1; k < len(source); k++ {
			if source[k] == c {
				return k + 1, true
			}
		}
		return 0, false
	case isUnquotedAttributeValueByte(c):
		for j < len(source) && isUnquotedAttributeValueByte(source[j]) {
			j++
		}
		return j, true
	default:
		return 0, false
	}
}

func isUnquotedAttributeValueByte(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}

// HTMLTagName returns the lowercase tag name of an [HTMLTagKind] node,
// or "" if the node is of a different kind or is a comment,
// processing instruction, declaration, or CDATA section.
func (inline *Inline) HTMLTagName(source []byte) string {
	if inline.Kind() != HTMLTagKind {
		return ""
	}
	span := inline.Span()
	tag := source[span.Start:span.End]
	i := 1
	if i < len(tag) && tag[i] == '/' {
		i++
	}
	start := i
	for i < len(tag) && (isLetterDigit(tag[i]) || tag[i] == '-') {
		i++
	}
	if i == start {
		return ""
	}
	if a := atom.Lookup(tag[start:i]); a != 0 {
		return a.String()
	}
	return strings.ToLower(string(tag[start:i]))
}

// disallowedRawHTML is the [tag filter] set of GitHub-Flavored
// Markdown: tags whose raw occurrence downstream renderers escape.
//
// [tag filter]: https://github.github.com/gfm/#disallowed-raw-html-extension-
var disallowedRawHTML = map[string]bool{
	atom.Title.String():     true,
	atom.Textarea.String():  true,
	atom.Style.String():     true,
	atom.Xmp.String():       true,
	atom.Iframe.String():    true,
	atom.Noembed.String():   true,
	atom.Noframes.String():  true,
	atom.Script.String():    true,
	atom.Plaintext.String(): true,
}

// IsDisallowedRawHTML reports whether an [HTMLTagKind] node names a
// tag in the GitHub-Flavored Markdown tag filter set.
func (inline *Inline) IsDisallowedRawHTML(source []byte) bool {
	name := inline.HTMLTagName(source)
	return name != "" && disallowedRawHTML[name]
}
