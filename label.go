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

	"golang.org/x/text/cases"
)

// A type that implements ReferenceMatcher
// can be checked for the presence of link reference definitions.
type ReferenceMatcher interface {
	MatchReference(normalizedLabel string) bool
}

// LinkDefinition is the data of a [link reference definition].
// Definitions are collected by the block layer;
// this package only emits the labels that name them.
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.30/#matches
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// ReferenceLabel returns the normalized reference label of a
// reference-style link or image node: the explicit label of a full
// reference, or the text of a collapsed or shortcut reference.
// It returns ok=false for inline links and images and all other kinds.
func (inline *Inline) ReferenceLabel(source []byte) (label string, ok bool) {
	var want InlineKind
	switch inline.Kind() {
	case FullReferenceLinkKind:
		want = LinkLabelKind
	case CollapsedReferenceLinkKind, ShortcutLinkKind:
		want = LinkTextKind
	case ImageKind:
		switch inline.ImageForm() {
		case FullReferenceForm:
			want = LinkLabelKind
		case CollapsedReferenceForm, ShortcutForm:
			want = ImageDescriptionKind
		default:
			return "", false
		}
	default:
		return "", false
	}
	for _, child := range inline.Children() {
		if child.Kind() == want {
			span := child.Span()
			// Strip the surrounding brackets.
			return NormalizeLabel(string(source[span.Start+1 : span.End-1])), true
		}
	}
	return "", false
}

// NormalizeLabel returns the normalized form of a reference label,
// for uniquely identifying it in a definition table:
// case-folded, trimmed, with internal whitespace runs collapsed.
func NormalizeLabel(s string) string {
	if strings.ContainsAny(s, "[]") {
		// Labels cannot contain brackets, so avoid the work of
		// translating pathological nested-bracket inputs.
		return ""
	}
	s = strings.Trim(s, " \t\r\n")
	var b strings.Builder
	space := false
	hi := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\r', '\n':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 0x80 {
			hi = true
		}
		b.WriteByte(c)
	}
	s = b.String()
	if hi {
		s = cases.Fold().String(s)
	}
	return s
}
