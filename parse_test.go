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
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "Empty",
			source: "",
			want:   `(inline "")`,
		},
		{
			name:   "PlainWords",
			source: "hello world",
			want:   `(inline (word "hello") (whitespace " ") (word "world"))`,
		},
		{
			name:   "Digits",
			source: "v2 has 10 bugs",
			want:   `(inline (word "v") (digits "2") (whitespace " ") (word "has") (whitespace " ") (digits "10") (whitespace " ") (word "bugs"))`,
		},
		{
			name:   "NonASCIIWords",
			source: "héllo wörld",
			want:   `(inline (word "héllo") (whitespace " ") (word "wörld"))`,
		},
		{
			name:   "SoftLineBreak",
			source: "foo\nbar",
			want:   `(inline (word "foo") (soft_line_break "\n") (word "bar"))`,
		},
		{
			name:   "CRLFSoftLineBreak",
			source: "foo\r\nbar",
			want:   `(inline (word "foo") (soft_line_break "\r\n") (word "bar"))`,
		},
		{
			name:   "HardLineBreakSpaces",
			source: "foo  \nbar",
			want:   `(inline (word "foo") (hard_line_break "  \n") (word "bar"))`,
		},
		{
			name:   "HardLineBreakBackslash",
			source: "foo\\\nbar",
			want:   `(inline (word "foo") (hard_line_break "\\\n") (word "bar"))`,
		},
		{
			name:   "NoHardBreakAtEndOfBlock",
			source: "foo  ",
			want:   `(inline (word "foo") (whitespace "  "))`,
		},
		{
			name:   "OneTrailingSpaceIsSoft",
			source: "foo \nbar",
			want:   `(inline (word "foo") (whitespace " ") (soft_line_break "\n") (word "bar"))`,
		},
		{
			name:   "BackslashEscape",
			source: `\*not\*`,
			want:   `(inline (backslash_escape "\\*") (word "not") (backslash_escape "\\*"))`,
		},
		{
			name:   "BackslashBeforeLetter",
			source: `a\b`,
			want:   `(inline (word "a") (punctuation "\\") (word "b"))`,
		},
		{
			name:   "CodeSpan",
			source: "`foo`",
			want:   "(inline (code_span (code_span_delimiter \"`\") (text \"foo\") (code_span_delimiter \"`\")))",
		},
		{
			name:   "CodeSpanLongerFence",
			source: "``foo ` bar``",
			want:   "(inline (code_span (code_span_delimiter \"``\") (text \"foo ` bar\") (code_span_delimiter \"``\")))",
		},
		{
			name:   "CodeSpanSkipsShorterRun",
			source: "`a``b`",
			want:   "(inline (code_span (code_span_delimiter \"`\") (text \"a``b\") (code_span_delimiter \"`\")))",
		},
		{
			name:   "CodeSpanAcrossLine",
			source: "`a\nb`",
			want:   "(inline (code_span (code_span_delimiter \"`\") (text \"a\") (soft_line_break \"\\n\") (text \"b\") (code_span_delimiter \"`\")))",
		},
		{
			name:   "UnclosedFenceIsLiteral",
			source: "``x`",
			want:   "(inline (punctuation \"`\") (punctuation \"`\") (word \"x\") (punctuation \"`\"))",
		},
		{
			name:   "CodeSpanBeatsEmphasis",
			source: "*foo`bar*baz`",
			want:   "(inline (punctuation \"*\") (word \"foo\") (code_span (code_span_delimiter \"`\") (text \"bar*baz\") (code_span_delimiter \"`\")))",
		},
		{
			name:   "Emphasis",
			source: "*foo*",
			want:   `(inline (emphasis (punctuation "*") (word "foo") (punctuation "*")))`,
		},
		{
			name:   "StrongEmphasis",
			source: "**foo**",
			want:   `(inline (strong_emphasis (punctuation "*") (punctuation "*") (word "foo") (punctuation "*") (punctuation "*")))`,
		},
		{
			name:   "EmphasisAroundStrong",
			source: "***foo***",
			want:   `(inline (emphasis (punctuation "*") (strong_emphasis (punctuation "*") (punctuation "*") (word "foo") (punctuation "*") (punctuation "*")) (punctuation "*")))`,
		},
		{
			name:   "UnderscoreIntrawordInert",
			source: "_foo_bar",
			want:   `(inline (punctuation "_") (word "foo") (punctuation "_") (word "bar"))`,
		},
		{
			name:   "StarEmphasisSwallowsUnderscore",
			source: "*foo_bar*",
			want:   `(inline (emphasis (punctuation "*") (word "foo") (punctuation "_") (word "bar") (punctuation "*")))`,
		},
		{
			name:   "StarIntraword",
			source: "foo*bar*",
			want:   `(inline (word "foo") (emphasis (punctuation "*") (word "bar") (punctuation "*")))`,
		},
		{
			name:   "Rule9BlocksPartialMatch",
			source: "*foo**bar*",
			want:   `(inline (emphasis (punctuation "*") (word "foo") (punctuation "*") (punctuation "*") (word "bar") (punctuation "*")))`,
		},
		{
			name:   "DanglingCloser",
			source: "*a**",
			want:   `(inline (emphasis (punctuation "*") (word "a") (punctuation "*")) (punctuation "*"))`,
		},
		{
			name:   "UnmatchedDelimitersDegrade",
			source: "a * b",
			want:   `(inline (word "a") (whitespace " ") (punctuation "*") (whitespace " ") (word "b"))`,
		},
		{
			name:   "InlineLink",
			source: `[foo](bar "baz")`,
			want:   `(inline (inline_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "(") (link_destination "bar") (whitespace " ") (link_title "\"baz\"") (punctuation ")")))`,
		},
		{
			name:   "InlineLinkBareDest",
			source: "[foo](bar)",
			want:   `(inline (inline_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "(") (link_destination "bar") (punctuation ")")))`,
		},
		{
			name:   "InlineLinkAngleDest",
			source: "[foo](<bar baz>)",
			want:   `(inline (inline_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "(") (link_destination "<bar baz>") (punctuation ")")))`,
		},
		{
			name:   "InlineLinkEmptyDest",
			source: "[foo]()",
			want:   `(inline (inline_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "(") (punctuation ")")))`,
		},
		{
			name:   "FullReferenceLink",
			source: "[foo][bar]",
			want:   `(inline (full_reference_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (link_label "[bar]")))`,
		},
		{
			name:   "CollapsedReferenceLink",
			source: "[foo][]",
			want:   `(inline (collapsed_reference_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "[") (punctuation "]")))`,
		},
		{
			name:   "ShortcutLink",
			source: "[foo]",
			want:   `(inline (shortcut_link (link_text (punctuation "[") (word "foo") (punctuation "]"))))`,
		},
		{
			name:   "EmptyBracketsAreLiteral",
			source: "[]",
			want:   `(inline (punctuation "[") (punctuation "]"))`,
		},
		{
			name:   "MalformedSuffixFallsBackToShortcut",
			source: "[foo](bar",
			want:   `(inline (shortcut_link (link_text (punctuation "[") (word "foo") (punctuation "]"))) (punctuation "(") (word "bar"))`,
		},
		{
			name:   "NoLinkInsideLink",
			source: "[a [b] c]",
			want:   `(inline (punctuation "[") (word "a") (whitespace " ") (shortcut_link (link_text (punctuation "[") (word "b") (punctuation "]"))) (whitespace " ") (word "c") (punctuation "]"))`,
		},
		{
			name:   "LinkBeatsEmphasis",
			source: "*[foo](u)*",
			want:   `(inline (emphasis (punctuation "*") (inline_link (link_text (punctuation "[") (word "foo") (punctuation "]")) (punctuation "(") (link_destination "u") (punctuation ")")) (punctuation "*")))`,
		},
		{
			name:   "EmphasisCannotCrossLinkBoundary",
			source: "*a [b* c](d)",
			want:   `(inline (punctuation "*") (word "a") (whitespace " ") (inline_link (link_text (punctuation "[") (word "b") (punctuation "*") (whitespace " ") (word "c") (punctuation "]")) (punctuation "(") (link_destination "d") (punctuation ")")))`,
		},
		{
			name:   "InlineImage",
			source: "![alt](img.png)",
			want:   `(inline (image:inline (punctuation "!") (image_description (punctuation "[") (word "alt") (punctuation "]")) (punctuation "(") (link_destination "img.png") (punctuation ")")))`,
		},
		{
			name:   "ShortcutImage",
			source: "![alt]",
			want:   `(inline (image:shortcut (punctuation "!") (image_description (punctuation "[") (word "alt") (punctuation "]"))))`,
		},
		{
			name:   "FullReferenceImage",
			source: "![alt][ref]",
			want:   `(inline (image:full_reference (punctuation "!") (image_description (punctuation "[") (word "alt") (punctuation "]")) (link_label "[ref]")))`,
		},
		{
			name:   "ImageMayContainLink",
			source: "![a [b](u)](v)",
			want:   `(inline (image:inline (punctuation "!") (image_description (punctuation "[") (word "a") (whitespace " ") (inline_link (link_text (punctuation "[") (word "b") (punctuation "]")) (punctuation "(") (link_destination "u") (punctuation ")")) (punctuation "]")) (punctuation "(") (link_destination "v") (punctuation ")")))`,
		},
		{
			name:   "LinkMayContainImage",
			source: "[a ![b](u)](v)",
			want:   `(inline (inline_link (link_text (punctuation "[") (word "a") (whitespace " ") (image:inline (punctuation "!") (image_description (punctuation "[") (word "b") (punctuation "]")) (punctuation "(") (link_destination "u") (punctuation ")")) (punctuation "]")) (punctuation "(") (link_destination "v") (punctuation ")")))`,
		},
		{
			name:   "URIAutolink",
			source: "<http://x>",
			want:   `(inline (uri_autolink "<http://x>"))`,
		},
		{
			name:   "EmailAutolink",
			source: "<a@b.c>",
			want:   `(inline (email_autolink "<a@b.c>"))`,
		},
		{
			name:   "HTMLOpenTag",
			source: `<a href="u">`,
			want:   `(inline (html_tag "<a href=\"u\">"))`,
		},
		{
			name:   "HTMLComment",
			source: "x <!-- y -->",
			want:   `(inline (word "x") (whitespace " ") (html_tag "<!-- y -->"))`,
		},
		{
			name:   "UnmatchedAngleBracket",
			source: "a < b",
			want:   `(inline (word "a") (whitespace " ") (punctuation "<") (whitespace " ") (word "b"))`,
		},
		{
			name:   "EntityReference",
			source: "a &amp; b",
			want:   `(inline (word "a") (whitespace " ") (entity_reference "&amp;") (whitespace " ") (word "b"))`,
		},
		{
			name:   "UnknownEntityIsLiteral",
			source: "&madeup;",
			want:   `(inline (punctuation "&") (word "madeup") (punctuation ";"))`,
		},
		{
			name:   "DecimalCharacterReference",
			source: "&#955;",
			want:   `(inline (numeric_character_reference "&#955;"))`,
		},
		{
			name:   "HexCharacterReference",
			source: "&#xCAB;",
			want:   `(inline (numeric_character_reference "&#xCAB;"))`,
		},
		{
			name:   "TooManyDigitsIsLiteral",
			source: "&#12345678;",
			want:   `(inline (punctuation "&") (punctuation "#") (digits "12345678") (punctuation ";"))`,
		},
		{
			name:   "NulByteReplaced",
			source: "a\x00b",
			want:   "(inline (word \"a\ufffdb\"))",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			root := Parse([]byte(test.source))
			checkTreeInvariants(t, root)
			got := Dump(root.Source, root.AsInline())
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse(%q) tree (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

func TestParsePrecedingContext(t *testing.T) {
	tests := []struct {
		name      string
		preceding Preceding
		source    string
		want      string
	}{
		{
			name:      "UnderscoreAfterWordCannotOpen",
			preceding: PrecededByWord,
			source:    "_foo_",
			want:      `(inline (punctuation "_") (word "foo") (punctuation "_"))`,
		},
		{
			name:      "UnderscoreAtBlockStartOpens",
			preceding: PrecededByBlockStart,
			source:    "_foo_",
			want:      `(inline (emphasis (punctuation "_") (word "foo") (punctuation "_")))`,
		},
		{
			name:      "UnderscoreAfterPunctuationOpens",
			preceding: PrecededByPunctuation,
			source:    "_foo_",
			want:      `(inline (emphasis (punctuation "_") (word "foo") (punctuation "_")))`,
		},
		{
			name:      "StarAfterWordStillOpens",
			preceding: PrecededByWord,
			source:    "*foo*",
			want:      `(inline (emphasis (punctuation "*") (word "foo") (punctuation "*")))`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := &Parser{Preceding: test.preceding}
			root := p.Parse([]byte(test.source))
			checkTreeInvariants(t, root)
			got := Dump(root.Source, root.AsInline())
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("tree (-want +got):\n%s", diff)
			}
		})
	}
}

// invariantCorpus is a pile of tricky runs used by the invariant tests.
var invariantCorpus = []string{
	"",
	"plain text with several words",
	"*foo bar*",
	"**strong** and _em_ and `code`",
	"***a*** **b** *c*",
	"*foo**bar**baz*",
	"**foo *bar* baz**",
	"_foo_bar_baz_",
	"__foo, __bar__, baz__",
	"`` `inner` ``",
	"``` `` ` ```x",
	"*not closed",
	"not opened*",
	"[foo](bar \"baz\")",
	"[foo][bar] [foo][] [foo]",
	"![a ![b](u)](v)",
	"[a [b] c] [d](e)",
	"[link](</uri with space> '*title*')",
	"[](x) []() []",
	"<http://example.com/?q=1&r=2> <a@b.c>",
	"<div class=\"x\" disabled> </div> <!-- c --> <?php ?> <!DOCTYPE html> <![CDATA[>&<]]>",
	"\\*escaped\\* \\\\ \\<\\[",
	"&amp; &#35; &#xDEAD; &bogus; &#toolong1234;",
	"line one  \nline two\\\nline three\nline four",
	"a*\"foo\"*",
	"*(**foo**)*",
	"*foo [bar* baz](quux)",
	"[foo `bar]` baz](u)",
	"5*6*78",
	"foo-_(bar)_",
	"héllo *wörld* — em—dash",
	"\x00\x01\x02",
	"[][][][][]",
	"((((()))))",
	"<<<<>>>>",
	"`````````` ````````` ````````",
}

func TestLosslessCover(t *testing.T) {
	parsers := map[string]*Parser{
		"Default":           {},
		"Strikethrough":     {Strikethrough: true},
		"ExtendedAutolinks": {ExtendedAutolinks: true},
	}
	extra := []string{
		"~~del~~ and ~single~ and ~~~three~~~",
		"visit www.example.com or https://go.dev/x. now",
		"mail a.b@example.com! or mailto:x@y.zz",
	}
	for name, p := range parsers {
		t.Run(name, func(t *testing.T) {
			for _, source := range append(append([]string(nil), invariantCorpus...), extra...) {
				root := p.Parse([]byte(source))
				checkTreeInvariants(t, root)
			}
		})
	}
}

func TestReparseIsomorphic(t *testing.T) {
	for _, source := range invariantCorpus {
		first := Parse([]byte(source))
		checkTreeInvariants(t, first)
		// Serializing the tree is concatenating its leaves,
		// which is the source itself; reparsing it must yield
		// an isomorphic tree.
		second := Parse(first.Source)
		got := Dump(second.Source, second.AsInline())
		want := Dump(first.Source, first.AsInline())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("reparse of %q (-want +got):\n%s", source, diff)
		}
	}
}

// checkTreeInvariants verifies the structural guarantees every parse
// provides: the leaves cover the source exactly once in order, child
// spans nest inside parent spans, link text contains no link shapes,
// and delimiter nodes balance.
func checkTreeInvariants(t *testing.T, root *Root) {
	t.Helper()

	pos := 0
	sb := new(strings.Builder)
	Walk(root.AsInline(), &WalkOptions{Pre: func(c *Cursor) bool {
		node := c.Node()
		if parent := c.Parent(); parent != nil {
			if node.Start() < parent.Start() || node.End() > parent.End() {
				t.Errorf("%v node span %v exceeds parent %v span %v",
					node.Kind(), node.Span(), parent.Kind(), parent.Span())
			}
		}
		if node.ChildCount() > 0 || node.Kind() == RootKind {
			return true
		}
		if node.Start() != pos {
			t.Errorf("leaf %v starts at %d; want %d", node.Kind(), node.Start(), pos)
		}
		pos = node.End()
		sb.WriteString(node.Text(root.Source))
		return true
	}})
	if got := sb.String(); got != string(root.Source) {
		t.Errorf("concatenated leaves = %q; want %q", got, root.Source)
	}

	checkNoLinkInLinkText(t, root.AsInline(), false)
	checkDelimiterBalance(t, root)
}

func checkNoLinkInLinkText(t *testing.T, node *Inline, inLinkText bool) {
	t.Helper()
	if inLinkText && (node.Kind().IsLinkShape() || node.Kind() == LinkTextKind) {
		t.Errorf("%v node nested inside link text", node.Kind())
	}
	for _, child := range node.Children() {
		checkNoLinkInLinkText(t, child, inLinkText || node.Kind() == LinkTextKind)
	}
}

func checkDelimiterBalance(t *testing.T, root *Root) {
	t.Helper()
	Walk(root.AsInline(), &WalkOptions{Pre: func(c *Cursor) bool {
		node := c.Node()
		switch node.Kind() {
		case CodeSpanKind:
			first := node.Child(0)
			last := node.Child(node.ChildCount() - 1)
			if first.Kind() != CodeSpanDelimiterKind || last.Kind() != CodeSpanDelimiterKind {
				t.Errorf("code span %v missing delimiters", node.Span())
			} else if first.Span().Len() != last.Span().Len() {
				t.Errorf("code span %v delimiter lengths %d and %d differ",
					node.Span(), first.Span().Len(), last.Span().Len())
			}
		case EmphasisKind, StrongEmphasisKind, StrikethroughKind:
			open := root.Source[node.Start()]
			close := root.Source[node.End()-1]
			if open != close {
				t.Errorf("%v node %v delimiter characters %q and %q differ",
					node.Kind(), node.Span(), open, close)
			}
		}
		return true
	}})
}

func FuzzInlineParsing(f *testing.F) {
	for _, source := range invariantCorpus {
		f.Add(source)
	}

	f.Fuzz(func(t *testing.T, source string) {
		if !utf8.ValidString(source) {
			t.Skip("Invalid UTF-8")
		}
		p := &Parser{Strikethrough: true, ExtendedAutolinks: true}
		root := p.Parse([]byte(source))
		checkTreeInvariants(t, root)
	})
}
