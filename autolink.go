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

import "bytes"

// parseURIAutolink parses a [URI autolink] at source[i:],
// where source[i] == '<'.
// The scheme is capped at 32 characters;
// longer schemes degrade to literal text.
//
// [URI autolink]: https://spec.commonmark.org/0.30/#uri-autolink
func parseURIAutolink(source []byte, i int) (end int, ok bool) {
	j := i + 1
	if j >= len(source) || !isASCIILetter(source[j]) {
		return 0, false
	}
	j++
	for j < len(source) && isSchemeByte(source[j]) && j-(i+1) <= 32 {
		j++
	}
	if n := j - (i + 1); n < 2 || n > 32 {
		return 0, false
	}
	if j >= len(source) || source[j] != ':' {
		return 0, false
	}
	j++
	for j < len(source) && isURIByte(source[j]) {
		j++
	}
	if j >= len(source) || source[j] != '>' {
		return 0, false
	}
	return j + 1, true
}

// parseEmailAutolink parses an [email autolink] at source[i:],
// where source[i] == '<'.
// The address grammar is the HTML5 email regular expression.
//
// [email autolink]: https://spec.commonmark.org/0.30/#email-autolink
func parseEmailAutolink(source []byte, i int) (end int, ok bool) {
	j := i + 1
	if j >= len(source) || !isEmailUserByte(source[j]) {
		return 0, false
	}
	for j < len(source) && isEmailUserByte(source[j]) {
		j++
	}
	if j >= len(source) || source[j] != '@' {
		return 0, false
	}
	for {
		j++
		n, ok := skipDomainElem(source[j:])
		if !ok {
			return 0, false
		}
		j += n
		if j >= len(source) || source[j] != '.' && source[j] != '>' {
			return 0, false
		}
		if source[j] == '>' {
			return j + 1, true
		}
	}
}

// skipDomainElem reports the length of a leading domain element in s:
// letters, digits, and hyphens, up to 63 characters,
// with a letter or digit at both ends.
func skipDomainElem(s []byte) (int, bool) {
	if len(s) < 1 || !isLetterDigit(s[0]) {
		return 0, false
	}
	i := 1
	for i < len(s) && isLDH(s[i]) && i <= 63 {
		i++
	}
	if i > 63 || !isLetterDigit(s[i-1]) {
		return 0, false
	}
	return i, true
}

func isEmailUserByte(c byte) bool {
	// A-Za-z0-9 plus ".!#$%&'*+/=?^_`{|}~-"
	return c == '!' ||
		'#' <= c && c <= '\'' ||
		'*' <= c && c <= '+' ||
		'-' <= c && c <= '9' ||
		c == '=' ||
		c == '?' ||
		'A' <= c && c <= 'Z' ||
		'^' <= c && c <= '`' ||
		'a' <= c && c <= 'z' ||
		'{' <= c && c <= '~'
}

func isSchemeByte(c byte) bool {
	return isLetterDigit(c) || c == '+' || c == '.' || c == '-'
}

// isURIByte reports whether c may appear in an autolink URI:
// anything but control characters, space, '<', and '>'.
func isURIByte(c byte) bool {
	return c > ' ' && c != '<' && c != '>'
}

func isLetterDigit(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c)
}

func isLDH(c byte) bool {
	return isLetterDigit(c) || c == '-'
}

// GitHub Flavored Markdown autolinks extension
// https://github.github.com/gfm/#autolinks-extension-

// extendAutolinks rewrites bare URLs and email addresses inside text
// nodes into autolink nodes. It descends into emphasis spans but not
// into links, images, or code spans. Contiguous text nodes are scanned
// as one span, so a literal delimiter run does not cut a URL short.
func extendAutolinks(source []byte, nodes []*Inline) []*Inline {
	merged := make([]*Inline, 0, len(nodes))
	for _, node := range nodes {
		if k := len(merged) - 1; k >= 0 && node.kind == TextKind && merged[k].kind == TextKind && merged[k].span.End == node.span.Start {
			merged[k] = &Inline{kind: TextKind, span: Span{merged[k].span.Start, node.span.End}}
			continue
		}
		merged = append(merged, node)
	}
	nodes = merged

	var out []*Inline // allocated lazily when a node is rewritten
	for i, node := range nodes {
		switch node.kind {
		case TextKind:
			if rewrite := splitTextAutolinks(source, node.span); rewrite != nil {
				if out == nil {
					out = append(out, nodes[:i]...)
				}
				out = append(out, rewrite...)
				continue
			}
		case EmphasisKind, StrongEmphasisKind, StrikethroughKind:
			// The first and last children are the delimiters.
			last := len(node.children) - 1
			inner := extendAutolinks(source, node.children[1:last])
			node.children = append(append([]*Inline{node.children[0]}, inner...), node.children[last])
		}
		if out != nil {
			out = append(out, node)
		}
	}
	if out == nil {
		return nodes
	}
	return out
}

// splitTextAutolinks scans one text span for extended autolinks.
// It returns the replacement node list, or nil if the span has none.
func splitTextAutolinks(source []byte, span Span) []*Inline {
	var out []*Inline
	vd := validDomainChecker{source: source, limit: span.End}
	textStart := span.Start
	for i := span.Start; i < span.End; i++ {
		var link *Inline
		switch c := source[i]; {
		case c == '@':
			if start, end, ok := parseExtendedEmail(source, textStart, span.End, i); ok {
				link = &Inline{kind: EmailAutolinkKind, span: Span{start, end}}
			}
		case (c == 'h' || c == 'w' || c == 'm') && (i == span.Start || !isASCIILetter(source[i-1])):
			if end, ok := parseExtendedURL(source, span.End, i, &vd); ok {
				link = &Inline{kind: URIAutolinkKind, span: Span{i, end}}
			}
		}
		if link == nil {
			continue
		}
		if textStart < link.span.Start {
			out = append(out, &Inline{kind: TextKind, span: Span{textStart, link.span.Start}})
		}
		out = append(out, link)
		textStart = link.span.End
		i = link.span.End - 1
	}
	if out == nil {
		return nil
	}
	if textStart < span.End {
		out = append(out, &Inline{kind: TextKind, span: Span{textStart, span.End}})
	}
	return out
}

// parseExtendedURL parses an [extended URL autolink]
// or [extended www autolink] beginning at source[i:].
//
// [extended URL autolink]: https://github.github.com/gfm/#extended-url-autolink
// [extended www autolink]: https://github.github.com/gfm/#extended-www-autolink
func parseExtendedURL(source []byte, limit, i int, vd *validDomainChecker) (end int, ok bool) {
	rest := source[i:limit]
	var domainStart, min int
	switch {
	case hasBytePrefix(rest, "https://"):
		domainStart = i + len("https://")
		min = domainStart + 1
	case hasBytePrefix(rest, "http://"):
		domainStart = i + len("http://")
		min = domainStart + 1
	case hasBytePrefix(rest, "www."):
		domainStart = i
		min = i + len("www.")
	case hasBytePrefix(rest, "mailto:"):
		localStart := i + len("mailto:")
		j := localStart
		for j < limit && (isLDH(source[j]) || source[j] == '_' || source[j] == '+' || source[j] == '.') {
			j++
		}
		if j >= limit || source[j] != '@' {
			return 0, false
		}
		if start, end, ok := parseExtendedEmail(source, localStart, limit, j); ok && start == localStart {
			return end, true
		}
		return 0, false
	default:
		return 0, false
	}

	n, ok := vd.parseValidDomain(domainStart)
	if !ok {
		return 0, false
	}
	domEnd := domainStart + n

	// After a valid domain, zero or more non-space non-'<' bytes may follow.
	paren := 0
	j := domEnd
	for j < limit {
		c := source[j]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '<' {
			break
		}
		if c == '(' {
			paren++
		}
		if c == ')' {
			paren--
		}
		j++
	}

	// Trailing punctuation, unbalanced parentheses, and entity-like
	// tails are not part of the link.
	// https://github.github.com/gfm/#extended-autolink-path-validation
Trim:
	for j > domainStart {
		switch source[j-1] {
		case '?', '!', '.', ',', ':', '@', '_', '~':
			j--
			continue Trim
		case ')':
			if paren < 0 {
				for source[j-1] == ')' && paren < 0 {
					paren++
					j--
				}
				continue Trim
			}
		case ';':
			for k := j - 2; k > domainStart; k-- {
				if k < j-2 && source[k] == '&' {
					j = k
					continue Trim
				}
				if !isLetterDigit(source[k]) {
					j--
					break Trim
				}
			}
		}
		break Trim
	}

	// A www link whose domain is followed by anything other than a
	// slash keeps only the domain.
	if domainStart == i && j > domEnd && source[domEnd] != '/' {
		j = domEnd
	}
	if j < min {
		return 0, false
	}
	return j, true
}

// parseExtendedEmail parses an [extended email autolink]
// around the '@' at source[at].
// The local part may not begin before floor.
//
// [extended email autolink]: https://github.github.com/gfm/#extended-email-autolink
func parseExtendedEmail(source []byte, floor, limit, at int) (start, end int, ok bool) {
	j := at
	for j > floor && (isLDH(source[j-1]) || source[j-1] == '_' || source[j-1] == '+' || source[j-1] == '.') {
		j--
	}
	if at-j < 1 {
		return 0, 0, false
	}

	dots := 0
	k := at + 1
	for k < limit && (isLDH(source[k]) || source[k] == '_' || source[k] == '.') {
		if source[k] == '.' {
			if source[k-1] == '.' {
				break
			}
			dots++
		}
		k++
	}
	if k == at+1 {
		return 0, 0, false
	}
	if source[k-1] == '.' {
		dots--
		k--
	}
	if source[k-1] == '-' || source[k-1] == '_' || source[k-1] == '@' {
		return 0, 0, false
	}
	if k-(at+1)-dots < 2 || dots < 1 {
		return 0, 0, false
	}
	return j, k, true
}

// validDomainChecker parses [valid domains] starting at given offsets,
// amortizing failed scans so checking every offset stays linear.
//
// [valid domains]: https://github.github.com/gfm/#valid-domain
type validDomainChecker struct {
	source []byte
	limit  int
	cut    int // before this index, no valid domains
}

func (v *validDomainChecker) parseValidDomain(start int) (n int, found bool) {
	if start < v.cut {
		return 0, false
	}
	i := start
	dots := 0
	for ; i < v.limit; i++ {
		c := v.source[i]
		if c == '_' {
			dots = -2
			continue
		}
		if c == '.' {
			dots++
			continue
		}
		if !isLDH(c) {
			break
		}
	}
	if dots >= 0 && i > start {
		return i - start, true
	}
	v.cut = i
	return 0, false
}

func hasBytePrefix(b []byte, prefix string) bool {
	return bytes.HasPrefix(b, []byte(prefix))
}
