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

import "github.com/spanwise/mdinline/internal/entity"

// parseCharacterReference handles '&' at pos:
// a named [entity reference] or a decimal or hexadecimal
// [numeric character reference].
// An ampersand that begins neither stays literal.
//
// [entity reference]: https://spec.commonmark.org/0.30/#entity-references
// [numeric character reference]: https://spec.commonmark.org/0.30/#decimal-numeric-character-references
func (s *parseState) parseCharacterReference(pos int) (end int) {
	if pos+1 < len(s.source) && s.source[pos+1] == '#' {
		if end, ok := scanNumericReference(s.source, pos); ok {
			s.flush(pos)
			s.add(&Inline{kind: NumericCharacterReferenceKind, span: Span{pos, end}})
			s.plainStart = end
			return end
		}
		return pos + 1
	}
	if end, ok := scanNamedReference(s.source, pos); ok {
		s.flush(pos)
		s.add(&Inline{kind: EntityReferenceKind, span: Span{pos, end}})
		s.plainStart = end
		return end
	}
	return pos + 1
}

// scanNamedReference matches "&name;" where name is in the HTML5
// named entity table.
func scanNamedReference(source []byte, pos int) (end int, ok bool) {
	i := pos + 1
	for i < len(source) && i-(pos+1) <= entity.MaxNameLen && isLetterDigit(source[i]) {
		i++
	}
	if i == pos+1 || i >= len(source) || source[i] != ';' {
		return 0, false
	}
	if _, defined := entity.Lookup(string(source[pos+1 : i])); !defined {
		return 0, false
	}
	return i + 1, true
}

// scanNumericReference matches "&#" followed by one to seven decimal
// digits, or "&#x"/"&#X" followed by one to six hexadecimal digits,
// and a terminating ';'.
func scanNumericReference(source []byte, pos int) (end int, ok bool) {
	i := pos + 2
	digits := 0
	if i < len(source) && (source[i] == 'x' || source[i] == 'X') {
		i++
		for i < len(source) && isHexDigit(source[i]) {
			digits++
			i++
		}
		if digits < 1 || digits > 6 {
			return 0, false
		}
	} else {
		for i < len(source) && isASCIIDigit(source[i]) {
			digits++
			i++
		}
		if digits < 1 || digits > 7 {
			return 0, false
		}
	}
	if i >= len(source) || source[i] != ';' {
		return 0, false
	}
	return i + 1, true
}
