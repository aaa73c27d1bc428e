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

// maxBackticks is the longest code span fence the parser will match.
// Tracking the last position of every run length caps the cost of
// unsuccessful scans; without it a string of ever-growing fences
// forces repeated suffix scans.
const maxBackticks = 80

// backtickScanner remembers, for each fence length,
// where the final run of exactly that length starts.
type backtickScanner struct {
	last    [maxBackticks]int
	scanned bool
}

// parseBackticks handles a backtick at pos.
// It scans the fence, then looks for a closing run of exactly the same
// length. On success it adds a code span node whose delimiters and
// verbatim content cover every byte of the span. On failure the fence
// stays in the pending text and the parse resumes after it.
func (s *parseState) parseBackticks(pos int) (end int) {
	n := 1
	for pos+n < len(s.source) && s.source[pos+n] == '`' {
		n++
	}

	if n > maxBackticks || s.backticks.scanned && s.backticks.last[n-1] < pos+n {
		return pos + n
	}

	closeStart := -1
	for i := pos + n; i < len(s.source); {
		if s.source[i] != '`' {
			i++
			continue
		}
		runStart := i
		for i < len(s.source) && s.source[i] == '`' {
			i++
		}
		m := i - runStart
		if !s.backticks.scanned && m <= maxBackticks {
			s.backticks.last[m-1] = runStart
		}
		if m == n {
			closeStart = runStart
			break
		}
	}
	if closeStart < 0 {
		s.backticks.scanned = true
		return pos + n
	}

	s.flush(pos)
	node := &Inline{kind: CodeSpanKind, span: Span{pos, closeStart + n}}
	node.children = append(node.children, &Inline{
		kind: CodeSpanDelimiterKind,
		span: Span{pos, pos + n},
	})
	node.children = appendCodeSpanContent(node.children, s.source, Span{pos + n, closeStart})
	node.children = append(node.children, &Inline{
		kind: CodeSpanDelimiterKind,
		span: Span{closeStart, closeStart + n},
	})
	s.add(node)
	s.plainStart = node.span.End
	return node.span.End
}

// appendCodeSpanContent splits code span content into verbatim text
// leaves separated by soft line breaks. No other recognition happens
// inside a code span.
func appendCodeSpanContent(out []*Inline, source []byte, span Span) []*Inline {
	textStart := span.Start
	for pos := span.Start; pos < span.End; {
		if c := source[pos]; c != '\n' && c != '\r' {
			pos++
			continue
		}
		nlEnd := pos + 1
		if source[pos] == '\r' && nlEnd < span.End && source[nlEnd] == '\n' {
			nlEnd++
		}
		if textStart < pos {
			out = append(out, &Inline{kind: TextKind, span: Span{textStart, pos}})
		}
		out = append(out, &Inline{kind: SoftLineBreakKind, span: Span{pos, nlEnd}})
		pos = nlEnd
		textStart = nlEnd
	}
	if textStart < span.End {
		out = append(out, &Inline{kind: TextKind, span: Span{textStart, span.End}})
	}
	return out
}
