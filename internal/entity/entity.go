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

// Package entity provides the HTML5 named character reference table.
//
// The table is embedded from entities.json, which uses the format of
// the upstream table published at
// https://html.spec.whatwg.org/entities.json; updating the data
// requires no source change beyond replacing that file.
package entity

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

//go:embed entities.json
var entityData []byte

// MaxNameLen is an upper bound on the length of a defined entity name,
// without the surrounding '&' and ';'.
const MaxNameLen = 48

type entry struct {
	name       string // without '&' and ';'
	characters string
}

var (
	table     []entry
	tableOnce sync.Once
)

func load() {
	var raw map[string]struct {
		Characters string `json:"characters"`
	}
	if err := json.Unmarshal(entityData, &raw); err != nil {
		panic("entity: malformed entities.json: " + err.Error())
	}
	table = make([]entry, 0, len(raw))
	for name, e := range raw {
		// The upstream table retains a handful of legacy names
		// without the terminating semicolon; references in
		// documents always carry one.
		if !strings.HasPrefix(name, "&") || !strings.HasSuffix(name, ";") {
			continue
		}
		table = append(table, entry{
			name:       name[1 : len(name)-1],
			characters: e.Characters,
		})
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].name < table[j].name
	})
}

// Lookup returns the replacement text for the named character
// reference and whether the name is defined.
// The name is the text between '&' and ';', case-sensitively.
func Lookup(name string) (string, bool) {
	tableOnce.Do(load)
	i := sort.Search(len(table), func(i int) bool {
		return table[i].name >= name
	})
	if i < len(table) && table[i].name == name {
		return table[i].characters, true
	}
	return "", false
}

// Count returns the number of defined names.
func Count() int {
	tableOnce.Do(load)
	return len(table)
}
