// Copyright 2025 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package rlpitem exposes an RLP value as a tree of typed items, so that
// callers can inspect the shape of an encoding (string vs. list, arity,
// payload length) before interpreting it.
//
// rlpitem 将 RLP 编码值解析为带类型标签的树形结构：空值、字节串或列表。
package rlpitem

import (
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// Kind is the content tag of an Item.
type Kind uint8

const (
	Absent Kind = iota // the empty string (0x80)
	Data               // a non-empty byte string
	List               // a list of items, possibly empty
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "Absent"
	case Data:
		return "Data"
	case List:
		return "List"
	default:
		return "Unknown"
	}
}

var (
	ErrNoItem = errors.New("rlpitem: no item in input")
)

// Item is a decoded RLP value. The zero Item is Absent.
//
// Item 是解码后的 RLP 值。零值表示空值（Absent）。
type Item struct {
	kind  Kind
	data  []byte
	items []Item
}

// NewData returns a byte-string item. An empty payload yields an Absent item,
// which is how the empty string is represented on the wire.
func NewData(b []byte) Item {
	if len(b) == 0 {
		return Item{}
	}
	return Item{kind: Data, data: b}
}

// NewList returns a list item holding the given elements.
func NewList(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{kind: List, items: items}
}

// Kind returns the content tag of the item.
func (it Item) Kind() Kind { return it.kind }

// Len returns the payload length in bytes for Data items, the number of
// elements for List items and zero for Absent items.
//
// Len 对字节串返回字节长度，对列表返回元素个数，对空值返回 0。
func (it Item) Len() int {
	switch it.kind {
	case Data:
		return len(it.data)
	case List:
		return len(it.items)
	}
	return 0
}

// Bytes returns the payload of a Data item, nil otherwise.
func (it Item) Bytes() []byte {
	if it.kind != Data {
		return nil
	}
	return it.data
}

// At returns the i'th element of a List item. The boolean is false if the
// item is not a list or the index is out of range.
func (it Item) At(i int) (Item, bool) {
	if it.kind != List || i < 0 || i >= len(it.items) {
		return Item{}, false
	}
	return it.items[i], true
}

// Items returns the elements of a List item, nil otherwise.
func (it Item) Items() []Item {
	if it.kind != List {
		return nil
	}
	return it.items
}

// EncodeRLP implements rlp.Encoder, re-encoding the item canonically.
func (it Item) EncodeRLP(w io.Writer) error {
	switch it.kind {
	case Data:
		return rlp.Encode(w, it.data)
	case List:
		return rlp.Encode(w, it.items)
	default:
		return rlp.Encode(w, []byte{})
	}
}

// Parse decodes exactly one RLP value from b. Input carrying bytes after
// the first value is rejected with rlp.ErrMoreThanOneValue.
//
// Parse 从 b 中解码恰好一个 RLP 值；若第一个值之后还有多余字节则报错。
func Parse(b []byte) (Item, error) {
	if len(b) == 0 {
		return Item{}, ErrNoItem
	}
	it, rest, err := split(b)
	if err != nil {
		return Item{}, err
	}
	if len(rest) > 0 {
		return Item{}, rlp.ErrMoreThanOneValue
	}
	return it, nil
}

func split(b []byte) (Item, []byte, error) {
	kind, content, rest, err := rlp.Split(b)
	if err != nil {
		return Item{}, b, err
	}
	switch kind {
	case rlp.Byte, rlp.String:
		// Single bytes below 0x80 are their own encoding, content is b[:1].
		return NewData(content), rest, nil
	default:
		items := []Item{}
		for len(content) > 0 {
			var elem Item
			if elem, content, err = split(content); err != nil {
				return Item{}, b, err
			}
			items = append(items, elem)
		}
		return Item{kind: List, items: items}, rest, nil
	}
}
