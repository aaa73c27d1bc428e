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
	"strconv"
	"strings"
)

// Dump renders a tree as a single-line s-expression.
// Leaves carry their verbatim source text;
// image nodes carry their link shape.
// The format is stable and intended for tests and debugging.
func Dump(source []byte, node *Inline) string {
	sb := new(strings.Builder)
	appendDump(sb, source, node)
	return sb.String()
}

func appendDump(sb *strings.Builder, source []byte, node *Inline) {
	if node == nil {
		sb.WriteString("(nil)")
		return
	}
	sb.WriteByte('(')
	sb.WriteString(node.Kind().String())
	if node.Kind() == ImageKind {
		sb.WriteByte(':')
		sb.WriteString(node.ImageForm().String())
	}
	if len(node.children) == 0 {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(node.Text(source)))
	}
	for _, child := range node.children {
		sb.WriteByte(' ')
		appendDump(sb, source, child)
	}
	sb.WriteByte(')')
}
