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

import "fmt"

// Span is a reference to a range of bytes in an inline run.
// The end of the span is exclusive.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{-1, -1}
}

// IsValid reports whether the span is valid.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the length of the span
// or zero if the span is invalid.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.IsValid() {
		return "[invalid]"
	}
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Inline is a node in the concrete syntax tree of an inline run.
// Nodes without children are leaves;
// concatenating the source spans of a tree's leaves in order
// reproduces the parsed run byte-for-byte.
type Inline struct {
	kind     InlineKind
	span     Span
	form     LinkForm
	children []*Inline
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Span returns the position of the node in the source
// or an invalid span if the node is nil.
func (inline *Inline) Span() Span {
	if inline == nil {
		return NullSpan()
	}
	return inline.span
}

// Start returns the offset in the source where the node starts,
// or -1 if the node is nil.
func (inline *Inline) Start() int {
	if inline == nil {
		return -1
	}
	return inline.span.Start
}

// End returns the offset in the source where the node ends (exclusive),
// or -1 if the node is nil.
func (inline *Inline) End() int {
	if inline == nil {
		return -1
	}
	return inline.span.End
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}

// Children returns the node's children.
// Callers must not modify the returned slice.
func (inline *Inline) Children() []*Inline {
	if inline == nil {
		return nil
	}
	return inline.children
}

// ImageForm returns the link shape of an [ImageKind] node,
// or zero if the node is nil or of a different kind.
func (inline *Inline) ImageForm() LinkForm {
	if inline.Kind() != ImageKind {
		return 0
	}
	return inline.form
}

// Text returns the verbatim source bytes of a leaf node as a string.
// Calling Text on an interior node or nil returns "".
func (inline *Inline) Text(source []byte) string {
	if inline == nil || len(inline.children) > 0 {
		return ""
	}
	if !inline.span.IsValid() || inline.span.End > len(source) {
		return ""
	}
	return string(source[inline.span.Start:inline.span.End])
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	// RootKind is the root node covering an entire inline run.
	RootKind InlineKind = 1 + iota

	// Leaf token kinds.
	WordKind
	DigitsKind
	WhitespaceKind
	PunctuationKind
	TextKind // verbatim text, used inside code spans
	SoftLineBreakKind
	HardLineBreakKind
	BackslashEscapeKind
	EntityReferenceKind
	NumericCharacterReferenceKind

	CodeSpanKind
	CodeSpanDelimiterKind

	EmphasisKind
	StrongEmphasisKind
	StrikethroughKind

	LinkTextKind
	ImageDescriptionKind
	InlineLinkKind
	FullReferenceLinkKind
	CollapsedReferenceLinkKind
	ShortcutLinkKind
	ImageKind
	LinkLabelKind
	LinkDestinationKind
	LinkTitleKind

	URIAutolinkKind
	EmailAutolinkKind
	HTMLTagKind
)

func (kind InlineKind) String() string {
	switch kind {
	case RootKind:
		return "inline"
	case WordKind:
		return "word"
	case DigitsKind:
		return "digits"
	case WhitespaceKind:
		return "whitespace"
	case PunctuationKind:
		return "punctuation"
	case TextKind:
		return "text"
	case SoftLineBreakKind:
		return "soft_line_break"
	case HardLineBreakKind:
		return "hard_line_break"
	case BackslashEscapeKind:
		return "backslash_escape"
	case EntityReferenceKind:
		return "entity_reference"
	case NumericCharacterReferenceKind:
		return "numeric_character_reference"
	case CodeSpanKind:
		return "code_span"
	case CodeSpanDelimiterKind:
		return "code_span_delimiter"
	case EmphasisKind:
		return "emphasis"
	case StrongEmphasisKind:
		return "strong_emphasis"
	case StrikethroughKind:
		return "strikethrough"
	case LinkTextKind:
		return "link_text"
	case ImageDescriptionKind:
		return "image_description"
	case InlineLinkKind:
		return "inline_link"
	case FullReferenceLinkKind:
		return "full_reference_link"
	case CollapsedReferenceLinkKind:
		return "collapsed_reference_link"
	case ShortcutLinkKind:
		return "shortcut_link"
	case ImageKind:
		return "image"
	case LinkLabelKind:
		return "link_label"
	case LinkDestinationKind:
		return "link_destination"
	case LinkTitleKind:
		return "link_title"
	case URIAutolinkKind:
		return "uri_autolink"
	case EmailAutolinkKind:
		return "email_autolink"
	case HTMLTagKind:
		return "html_tag"
	default:
		return fmt.Sprintf("InlineKind(%d)", uint16(kind))
	}
}

// IsLinkShape reports whether the kind is one of the four link shapes.
// Images are not link shapes; use [*Inline.ImageForm] for their variant.
func (kind InlineKind) IsLinkShape() bool {
	return kind == InlineLinkKind ||
		kind == FullReferenceLinkKind ||
		kind == CollapsedReferenceLinkKind ||
		kind == ShortcutLinkKind
}

// LinkForm is an enumeration of the four link shapes
// shared by links and images.
type LinkForm uint8

const (
	InlineForm LinkForm = 1 + iota
	FullReferenceForm
	CollapsedReferenceForm
	ShortcutForm
)

func (form LinkForm) String() string {
	switch form {
	case InlineForm:
		return "inline"
	case FullReferenceForm:
		return "full_reference"
	case CollapsedReferenceForm:
		return "collapsed_reference"
	case ShortcutForm:
		return "shortcut"
	default:
		return fmt.Sprintf("LinkForm(%d)", uint8(form))
	}
}

// Root is the result of parsing one inline run.
// It stores the source the tree's spans refer to,
// which may differ from the parsed input
// if insecure characters were replaced.
type Root struct {
	Source []byte
	Inline
}

// AsInline returns the root node of the tree.
func (root *Root) AsInline() *Inline {
	if root == nil {
		return nil
	}
	return &root.Inline
}
