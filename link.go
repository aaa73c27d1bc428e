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

// A bracketStackElement records a pending '[' or '![' opener.
// Brackets live on their own stack: they pair innermost-first and
// snapshot the delimiter stack depth so emphasis inside the brackets
// is resolved against openers inside the brackets only.
type bracketStackElement struct {
	node        *Inline // the "[" or "![" text node in the container
	image       bool
	active      bool
	delimBottom int
}

func (s *parseState) openBracket(start, end int, image bool) {
	node := &Inline{kind: TextKind, span: Span{start, end}}
	s.add(node)
	s.plainStart = end
	s.brackets = append(s.brackets, bracketStackElement{
		node:        node,
		image:       image,
		active:      true,
		delimBottom: len(s.delims),
	})
}

// closeBracket handles ']' at pos.
// Every active bracket yields a link or image in one of the four
// shapes, except that empty brackets followed by neither an inline
// suffix nor a reference label stay literal; shape selection is by
// lookahead, longest match first
// (inline suffix, then reference label, then collapsed, then
// shortcut). Which definition a reference label names is resolved
// downstream; the label is emitted regardless.
func (s *parseState) closeBracket(pos int) (end int) {
	if len(s.brackets) == 0 {
		return pos + 1
	}
	br := s.brackets[len(s.brackets)-1]
	s.brackets = s.brackets[:len(s.brackets)-1]
	if !br.active {
		// A link was completed after this opener; links do not nest.
		// The opener stays literal text.
		return pos + 1
	}

	openerIndex := indexOfNode(s.container.children, br.node)
	if openerIndex < 0 {
		panic("mdinline: bracket node missing from container")
	}
	hasContent := openerIndex+1 < len(s.container.children) || s.plainStart < pos

	form := ShortcutForm
	var suffix inlineLinkSuffix
	var labelSpan Span
	suffixEnd := pos + 1
	switch {
	case pos+1 < len(s.source) && s.source[pos+1] == '(':
		if suf, ok := scanInlineLinkSuffix(s.source, pos+1); ok {
			form = InlineForm
			suffix = suf
			suffixEnd = suf.end
		}
	case pos+1 < len(s.source) && s.source[pos+1] == '[':
		if span, labelEnd, ok := scanLinkLabel(s.source, pos+1); ok {
			form = FullReferenceForm
			labelSpan = span
			suffixEnd = labelEnd
		} else if pos+2 < len(s.source) && s.source[pos+2] == ']' {
			form = CollapsedReferenceForm
			suffixEnd = pos + 3
		}
	}
	if !hasContent && (form == ShortcutForm || form == CollapsedReferenceForm) {
		// There is nothing a downstream resolver could match;
		// the brackets stay literal.
		return pos + 1
	}

	s.flush(pos)
	s.processEmphasis(br.delimBottom)

	// The opener's index may have shifted while emphasis was resolved.
	openerIndex = indexOfNode(s.container.children, br.node)
	inner := s.container.children[openerIndex+1:]
	closeBracketLeaf := &Inline{kind: TextKind, span: Span{pos, pos + 1}}

	var shape *Inline
	if br.image {
		bang := &Inline{kind: TextKind, span: Span{br.node.span.Start, br.node.span.Start + 1}}
		openBracketLeaf := &Inline{kind: TextKind, span: Span{br.node.span.Start + 1, br.node.span.End}}
		desc := &Inline{
			kind: ImageDescriptionKind,
			span: Span{openBracketLeaf.span.Start, pos + 1},
		}
		desc.children = append(desc.children, openBracketLeaf)
		desc.children = append(desc.children, inner...)
		desc.children = append(desc.children, closeBracketLeaf)
		shape = &Inline{
			kind:     ImageKind,
			span:     Span{br.node.span.Start, suffixEnd},
			form:     form,
			children: []*Inline{bang, desc},
		}
	} else {
		linkText := &Inline{
			kind: LinkTextKind,
			span: Span{br.node.span.Start, pos + 1},
		}
		linkText.children = append(linkText.children, br.node)
		linkText.children = append(linkText.children, inner...)
		linkText.children = append(linkText.children, closeBracketLeaf)
		shape = &Inline{
			kind:     linkShapeKind(form),
			span:     Span{br.node.span.Start, suffixEnd},
			children: []*Inline{linkText},
		}
	}

	switch form {
	case InlineForm:
		shape.children = appendInlineLinkSuffix(shape.children, pos+1, suffix)
	case FullReferenceForm:
		shape.children = append(shape.children, &Inline{kind: LinkLabelKind, span: labelSpan})
	case CollapsedReferenceForm:
		shape.children = append(shape.children,
			&Inline{kind: TextKind, span: Span{pos + 1, pos + 2}},
			&Inline{kind: TextKind, span: Span{pos + 2, pos + 3}})
	}

	s.container.children = append(s.container.children[:openerIndex], shape)
	s.plainStart = suffixEnd

	if !br.image {
		// Links may not contain links:
		// deactivate every remaining link opener.
		for i := range s.brackets {
			if !s.brackets[i].image {
				s.brackets[i].active = false
			}
		}
	}
	return suffixEnd
}

func linkShapeKind(form LinkForm) InlineKind {
	switch form {
	case InlineForm:
		return InlineLinkKind
	case FullReferenceForm:
		return FullReferenceLinkKind
	case CollapsedReferenceForm:
		return CollapsedReferenceLinkKind
	default:
		return ShortcutLinkKind
	}
}

// inlineLinkSuffix describes a parsed "( dest? title? )" suffix.
// Invalid spans mean the component is absent.
type inlineLinkSuffix struct {
	dest  Span
	title Span
	end   int
}

// appendInlineLinkSuffix adds the suffix's parentheses, destination,
// title, and separating whitespace to a link's children.
// open is the offset of the '(' byte.
func appendInlineLinkSuffix(out []*Inline, open int, suffix inlineLinkSuffix) []*Inline {
	addGap := func(from, to int) {
		if from < to {
			out = append(out, &Inline{kind: TextKind, span: Span{from, to}})
		}
	}
	out = append(out, &Inline{kind: TextKind, span: Span{open, open + 1}})
	cursor := open + 1
	if suffix.dest.IsValid() {
		addGap(cursor, suffix.dest.Start)
		out = append(out, &Inline{kind: LinkDestinationKind, span: suffix.dest})
		cursor = suffix.dest.End
	}
	if suffix.title.IsValid() {
		addGap(cursor, suffix.title.Start)
		out = append(out, &Inline{kind: LinkTitleKind, span: suffix.title})
		cursor = suffix.title.End
	}
	addGap(cursor, suffix.end-1)
	out = append(out, &Inline{kind: TextKind, span: Span{suffix.end - 1, suffix.end}})
	return out
}

// scanInlineLinkSuffix parses "( dest? title? )" with open at '('.
func scanInlineLinkSuffix(source []byte, open int) (inlineLinkSuffix, bool) {
	suffix := inlineLinkSuffix{dest: NullSpan(), title: NullSpan()}
	i, ok := skipLinkSpace(source, open+1)
	if !ok {
		return suffix, false
	}
	if i < len(source) && source[i] != ')' {
		destEnd, found := scanLinkDestination(source, i)
		if !found {
			return suffix, false
		}
		suffix.dest = Span{i, destEnd}
		i, ok = skipLinkSpace(source, destEnd)
		if !ok {
			return suffix, false
		}
		if i < len(source) && source[i] != ')' {
			if i == destEnd {
				// The title must be separated from the destination.
				return suffix, false
			}
			titleEnd, found := scanLinkTitle(source, i)
			if !found {
				return suffix, false
			}
			suffix.title = Span{i, titleEnd}
			i, ok = skipLinkSpace(source, titleEnd)
			if !ok {
				return suffix, false
			}
		}
	}
	if i >= len(source) || source[i] != ')' {
		return suffix, false
	}
	suffix.end = i + 1
	return suffix, true
}

// skipLinkSpace skips spaces, tabs, and line endings inside link
// syntax. A blank line (two consecutive line endings) is not allowed
// and reports false.
func skipLinkSpace(source []byte, i int) (int, bool) {
	sawLineEnding := false
	for i < len(source) {
		switch source[i] {
		case ' ', '\t':
			i++
		case '\r':
			if sawLineEnding {
				return i, false
			}
			sawLineEnding = true
			i++
			if i < len(source) && source[i] == '\n' {
				i++
			}
		case '\n':
			if sawLineEnding {
				return i, false
			}
			sawLineEnding = true
			i++
		default:
			return i, true
		}
	}
	return i, true
}

// scanLinkDestination parses a [link destination] at source[i:].
// The angle-bracketed form's span includes the brackets.
//
// [link destination]: https://spec.commonmark.org/0.30/#link-destination
func scanLinkDestination(source []byte, i int) (end int, found bool) {
	if i >= len(source) {
		return 0, false
	}
	if source[i] == '<' {
		for j := i + 1; j < len(source); j++ {
			switch source[j] {
			case '\n', '\r', '<':
				return 0, false
			case '>':
				return j + 1, true
			case '\\':
				if j+1 < len(source) {
					j++
				}
			}
		}
		return 0, false
	}

	depth := 0
	j := i
Loop:
	for ; j < len(source); j++ {
		switch source[j] {
		case '(':
			depth++
			if depth > 32 {
				// Bounded nesting, matching cmark-gfm.
				return 0, false
			}
		case ')':
			if depth == 0 {
				break Loop
			}
			depth--
		case '\\':
			if j+1 < len(source) {
				if source[j+1] == ' ' || source[j+1] == '\t' {
					return 0, false
				}
				j++
			}
		case ' ', '\t', '\n', '\r':
			break Loop
		}
	}
	if j == i {
		return 0, false
	}
	return j, true
}

// scanLinkTitle parses a [link title] at source[i:]: a string in
// double quotes, single quotes, or parentheses. At most one soft line
// break may appear in a row; a blank line ends the candidate parse.
//
// [link title]: https://spec.commonmark.org/0.30/#link-title
func scanLinkTitle(source []byte, i int) (end int, found bool) {
	if i >= len(source) {
		return 0, false
	}
	opener := source[i]
	var closer byte
	switch opener {
	case '"', '\'':
		closer = opener
	case '(':
		closer = ')'
	default:
		return 0, false
	}
	for j := i + 1; j < len(source); j++ {
		switch source[j] {
		case closer:
			return j + 1, true
		case '(':
			if closer == ')' {
				return 0, false
			}
		case '\\':
			if j+1 < len(source) {
				j++
			}
		case '\n', '\r':
			if source[j] == '\r' && j+1 < len(source) && source[j+1] == '\n' {
				j++
			}
			k := j + 1
			for k < len(source) && (source[k] == ' ' || source[k] == '\t') {
				k++
			}
			if k < len(source) && (source[k] == '\n' || source[k] == '\r') {
				// A blank line may not appear inside a title.
				return 0, false
			}
		}
	}
	return 0, false
}

// scanLinkLabel parses a [link label] at source[i:], returning the
// span including brackets and the offset past the label.
// The label must contain at least one non-whitespace character,
// no unescaped brackets, and at most 999 characters.
//
// [link label]: https://spec.commonmark.org/0.30/#link-label
func scanLinkLabel(source []byte, i int) (span Span, end int, found bool) {
	if i >= len(source) || source[i] != '[' {
		return NullSpan(), 0, false
	}
	hasContent := false
	for j := i + 1; j < len(source); j++ {
		switch source[j] {
		case ']':
			if j-(i+1) > 999 || !hasContent {
				return NullSpan(), 0, false
			}
			return Span{i, j + 1}, j + 1, true
		case '[':
			return NullSpan(), 0, false
		case '\\':
			hasContent = true
			if j+1 < len(source) {
				j++
			}
		case ' ', '\t', '\n', '\r':
		default:
			hasContent = true
		}
	}
	return NullSpan(), 0, false
}
