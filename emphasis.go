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
	"fmt"
	"unicode"
	"unicode/utf8"
)

// parseDelimiterRun scans the run of '*', '_', or '~' starting at pos,
// records it on the delimiter stack, and adds it to the tree as text.
// Whether the run survives as punctuation leaves or becomes emphasis
// delimiters is decided by processEmphasis.
func (s *parseState) parseDelimiterRun(pos int) (end int) {
	node := &Inline{kind: TextKind, span: Span{pos, pos + 1}}
	for node.span.End < len(s.source) && s.source[node.span.End] == s.source[pos] {
		node.span.End++
	}
	s.flush(pos)
	s.add(node)
	s.plainStart = node.span.End

	if s.source[pos] == '~' && node.span.Len() > 2 {
		// Runs of three or more tildes never pair.
		return node.span.End
	}

	elem := delimiterStackElement{
		flags: emphasisFlags(s.source, node.span, s.preceding),
		n:     node.span.Len(),
		node:  node,
	}
	switch s.source[pos] {
	case '*':
		elem.typ = inlineDelimiterStar
	case '_':
		elem.typ = inlineDelimiterUnderscore
	default:
		elem.typ = inlineDelimiterTilde
	}
	s.delims = append(s.delims, elem)
	return node.span.End
}

// emphasisFlags determines whether the given [delimiter run]
// [can open emphasis] and/or [can close emphasis].
// A run at the start of the input takes its preceding character class
// from the block parser's hint.
//
// [delimiter run]: https://spec.commonmark.org/0.30/#delimiter-run
// [can open emphasis]: https://spec.commonmark.org/0.30/#can-open-emphasis
// [can close emphasis]: https://spec.commonmark.org/0.30/#can-close-emphasis
func emphasisFlags(source []byte, span Span, pre Preceding) uint8 {
	var flags uint8
	prevChar := pre.contextRune()
	if span.Start > 0 {
		prevChar, _ = utf8.DecodeLastRune(source[:span.Start])
	}
	nextChar := ' '
	if span.End < len(source) {
		nextChar, _ = utf8.DecodeRune(source[span.End:])
	}
	leftFlanking := !isUnicodeWhitespace(nextChar) &&
		(!isUnicodePunctuation(nextChar) || isUnicodeWhitespace(prevChar) || isUnicodePunctuation(prevChar))
	rightFlanking := !isUnicodeWhitespace(prevChar) &&
		(!isUnicodePunctuation(prevChar) || isUnicodeWhitespace(nextChar) || isUnicodePunctuation(nextChar))
	if leftFlanking && (source[span.Start] != '_' || !rightFlanking || isUnicodePunctuation(prevChar)) {
		flags |= openerFlag
	}
	if rightFlanking && (source[span.Start] != '_' || !leftFlanking || isUnicodePunctuation(nextChar)) {
		flags |= closerFlag
	}
	return flags
}

// processEmphasis implements the [process emphasis procedure]
// to convert delimiter runs at or above stackBottom into
// emphasis, strong emphasis, and strikethrough spans.
//
// [process emphasis procedure]: https://spec.commonmark.org/0.30/#process-emphasis
func (s *parseState) processEmphasis(stackBottom int) {
	currentPosition := stackBottom
	var openersBottom [openersBottomCount]int
	for i := range openersBottom {
		openersBottom[i] = stackBottom
	}
closerLoop:
	for {
		// Move currentPosition forward in the delimiter stack (if needed)
		// until we find the first potential closer.
		for {
			if currentPosition >= len(s.delims) {
				break closerLoop
			}
			if s.delims[currentPosition].flags&closerFlag != 0 {
				break
			}
			currentPosition++
		}

		// Now, look back in the stack
		// (staying above stackBottom and the openersBottom for this delimiter type)
		// for the first matching potential opener.
		openerIndex := currentPosition - 1
		openersBottomIndex := s.delims[currentPosition].openersBottomIndex()
		for openerIndex >= openersBottom[openersBottomIndex] &&
			!isEmphasisDelimiterMatch(s.delims[openerIndex], s.delims[currentPosition]) {
			openerIndex--
		}
		if openerIndex >= openersBottom[openersBottomIndex] {
			opener := s.delims[openerIndex].node
			closer := s.delims[currentPosition].node
			var kind InlineKind
			var d int
			switch {
			case s.delims[openerIndex].typ == inlineDelimiterTilde:
				kind = StrikethroughKind
				d = opener.span.Len()
			case opener.span.Len() >= 2 && closer.span.Len() >= 2:
				kind = StrongEmphasisKind
				d = 2
			default:
				kind = EmphasisKind
				d = 1
			}
			opener.span.End -= d
			closer.span.Start += d
			s.wrapEmphasis(kind, opener, closer, d)

			// Remove any delimiters between the opener and closer from the stack.
			s.delims = deleteDelimiterStack(s.delims, openerIndex+1, currentPosition)
			currentPosition = openerIndex + 1

			// If either delimiter run was fully consumed,
			// remove its empty text node from the tree.
			if opener.span.Len() == 0 {
				s.removeNode(opener)
				s.delims = deleteDelimiterStack(s.delims, openerIndex, openerIndex+1)
				currentPosition--
			}
			if closer.span.Len() == 0 {
				s.removeNode(closer)
				s.delims = deleteDelimiterStack(s.delims, currentPosition, currentPosition+1)
			}
		} else {
			// There are no openers for this kind of closer up to and
			// including this point, so put a lower bound on future searches.
			openersBottom[openersBottomIndex] = currentPosition

			if s.delims[currentPosition].flags&openerFlag == 0 {
				// Remove the delimiter from the stack
				// since we know it can't be an opener either.
				s.delims = deleteDelimiterStack(s.delims, currentPosition, currentPosition+1)
			} else {
				currentPosition++
			}
		}
	}

	// Remove all delimiters above stackBottom from the stack.
	s.delims = deleteDelimiterStack(s.delims, stackBottom, len(s.delims))
}

// wrapEmphasis inserts a new node of the given kind
// wrapping the nodes between opener and closer,
// with the d consumed delimiter bytes as its first and last children.
// The opener and closer spans have already been shrunk by d.
func (s *parseState) wrapEmphasis(kind InlineKind, opener, closer *Inline, d int) {
	children := s.container.children
	startIndex := indexOfNode(children, opener)
	endIndex := indexOfNode(children, closer)
	if startIndex < 0 || endIndex <= startIndex {
		panic("mdinline: delimiter node missing from container")
	}

	newNode := &Inline{
		kind: kind,
		span: Span{opener.span.End, closer.span.Start},
	}
	newNode.children = append(newNode.children, &Inline{
		kind: TextKind,
		span: Span{opener.span.End, opener.span.End + d},
	})
	newNode.children = append(newNode.children, children[startIndex+1:endIndex]...)
	newNode.children = append(newNode.children, &Inline{
		kind: TextKind,
		span: Span{closer.span.Start - d, closer.span.Start},
	})

	tail := make([]*Inline, 0, 1+len(children)-endIndex)
	tail = append(tail, newNode)
	tail = append(tail, children[endIndex:]...)
	s.container.children = append(children[:startIndex+1], tail...)
}

// removeNode deletes an empty node from the container's children.
func (s *parseState) removeNode(node *Inline) {
	n := 0
	for _, c := range s.container.children {
		if c != node {
			s.container.children[n] = c
			n++
		}
	}
	s.container.children = deleteInlineNodes(s.container.children, n, len(s.container.children))
}

func indexOfNode(nodes []*Inline, node *Inline) int {
	for i, n := range nodes {
		if n == node {
			return i
		}
	}
	return -1
}

func deleteInlineNodes(slice []*Inline, i, j int) []*Inline {
	copy(slice[i:], slice[j:])
	newEnd := len(slice) - (j - i)
	clear := slice[newEnd:]
	for ci := range clear {
		clear[ci] = nil
	}
	return slice[:newEnd]
}

type delimiterStackElement struct {
	typ   inlineDelimiter
	flags uint8
	n     int // original run length, for the rule-9/10 check
	node  *Inline
}

const openersBottomCount = 9

func (elem delimiterStackElement) openersBottomIndex() int {
	switch elem.typ {
	case inlineDelimiterStar:
		if elem.flags&openerFlag == 0 {
			return elem.n % 3
		}
		return 3 + elem.n%3
	case inlineDelimiterUnderscore:
		return 6
	case inlineDelimiterTilde:
		if elem.n >= 2 {
			return 8
		}
		return 7
	default:
		panic("unreachable")
	}
}

func isEmphasisDelimiterMatch(open, close delimiterStackElement) bool {
	if open.typ != close.typ ||
		open.flags&openerFlag == 0 ||
		close.flags&closerFlag == 0 {
		return false
	}
	if open.typ == inlineDelimiterTilde {
		// Strikethrough runs pair only with runs of the same length.
		return open.node.span.Len() == close.node.span.Len()
	}
	// Rule 9 & 10 of https://spec.commonmark.org/0.30/#emphasis-and-strong-emphasis
	return open.flags&closerFlag == 0 && close.flags&openerFlag == 0 ||
		(open.n+close.n)%3 != 0 ||
		open.n%3 == 0 && close.n%3 == 0
}

func deleteDelimiterStack(stack []delimiterStackElement, i, j int) []delimiterStackElement {
	copy(stack[i:], stack[j:])
	newEnd := len(stack) - (j - i)
	clear := stack[newEnd:]
	for ci := range clear {
		clear[ci] = delimiterStackElement{}
	}
	return stack[:newEnd]
}

const (
	openerFlag = 1 << iota
	closerFlag
)

type inlineDelimiter int8

const (
	inlineDelimiterStar inlineDelimiter = 1 + iota
	inlineDelimiterUnderscore
	inlineDelimiterTilde
)

func (d inlineDelimiter) String() string {
	switch d {
	case inlineDelimiterStar:
		return "*"
	case inlineDelimiterUnderscore:
		return "_"
	case inlineDelimiterTilde:
		return "~"
	default:
		return fmt.Sprintf("inlineDelimiter(%d)", int8(d))
	}
}

// isUnicodeWhitespace reports whether r is a [Unicode whitespace character].
//
// [Unicode whitespace character]: https://spec.commonmark.org/0.30/#unicode-whitespace-character
func isUnicodeWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// isUnicodePunctuation reports whether r is a [Unicode punctuation character].
//
// [Unicode punctuation character]: https://spec.commonmark.org/0.30/#unicode-punctuation-character
func isUnicodePunctuation(r rune) bool {
	if r < 0x80 {
		return isASCIIPunctuation(byte(r))
	}
	return unicode.IsPunct(r)
}
